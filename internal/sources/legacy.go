// Package sources holds the typed rows of every legacy collection: the
// tables of the manuscripts schema and the project spreadsheets. Each
// collection keeps its own row type; only agent-describing rows convert to
// the uniform agents.CandidateRow.
package sources

// Person is a row of manuscripts.people.
type Person struct {
	PersonCode  string `db:"person_code"`
	Name        string `db:"person_name"`
	Sex         string `db:"sex"`
	Title       string `db:"title"`
	OtherNames  string `db:"other_names"`
	Designation string `db:"designation"`
	Status      string `db:"status"`
	BirthDate   string `db:"birth_date"`
	DeathDate   string `db:"death_date"`
	Notes       string `db:"notes"`
}

// Client is a row of manuscripts.clients, the STN's customer list.
type Client struct {
	Code        string `db:"client_code"`
	Name        string `db:"client_name"`
	Gender      string `db:"gender"`
	Partnership bool   `db:"partnership"`
	Documents   *int64 `db:"number_of_documents"`
	FirstDate   string `db:"first_date"`
	LastDate    string `db:"last_date"`
	Notes       string `db:"notes"`
}

type ClientPerson struct {
	ClientCode string `db:"client_code"`
	PersonCode string `db:"person_code"`
}

type Profession struct {
	Code   string `db:"profession_code"`
	Type   string `db:"profession_type"`
	Group  string `db:"profession_group"`
	Sector string `db:"economic_sector"`
}

type PersonProfession struct {
	PersonCode     string `db:"person_code"`
	ProfessionCode string `db:"profession_code"`
}

type ClientAddress struct {
	ClientCode string `db:"client_code"`
	PlaceCode  string `db:"place_code"`
	Address    string `db:"address"`
}

type Place struct {
	Code string `db:"place_code"`
	Name string `db:"name"`
	Town string `db:"town"`
}

// Author is a row of manuscripts.manuscript_authors. Author codes repeat
// across spellings of one name.
type Author struct {
	Code string `db:"author_code"`
	Name string `db:"author_name"`
}

type BookAuthor struct {
	BookCode   string `db:"book_code"`
	AuthorCode string `db:"author_code"`
	AuthorType string `db:"author_type"`
	Certain    bool   `db:"certain"`
}

// Dealer is a row of manuscripts.manuscript_dealers, the stock sales
// participants.
type Dealer struct {
	ClientCode     string `db:"client_code"`
	Name           string `db:"dealer_name"`
	AltName        string `db:"alternative_name"`
	ProfessionCode string `db:"profession_code"`
	PlaceCode      string `db:"place_code"`
	Notes          string `db:"notes"`
}

// Inspector is a row of manuscripts.manuscript_agents_inspectors, the
// officials of the 1788 stamping.
type Inspector struct {
	ClientCode string `db:"client_code"`
	Name       string `db:"agent_name"`
	PlaceCode  string `db:"place_code"`
	Notes      string `db:"notes"`
}

// Stamping is a row of manuscripts.manuscript_events.
type Stamping struct {
	ID        int64  `db:"id"`
	Edition   string `db:"id_edition"`
	Dealer    string `db:"id_dealer"`
	Inspector string `db:"id_agent_a"`
	Adjoint   string `db:"id_agent_b"`
	Place     string `db:"id_place"`
	Copies    string `db:"event_copies"`
	Volumes   string `db:"event_vols"`
	Date      string `db:"event_date"`
	Notes     string `db:"event_notes"`
}

// Auction is a row of manuscripts.manuscript_sales_events. Administrators
// holds comma separated "<client code> (<role>)" annotations.
type Auction struct {
	SalesNumber    string `db:"sales_number"`
	MSNumber       string `db:"ms_number"`
	ClientCode     string `db:"client_code"`
	Reason         string `db:"reason"`
	PlaceCode      string `db:"place_code"`
	Administrators string `db:"id_agent"`
}

// Sale is a row of manuscripts.manuscript_events_sales.
type Sale struct {
	ID         int64  `db:"id"`
	AuctionID  string `db:"id_sale_agent"`
	Dealer     string `db:"id_dealer"`
	Edition    string `db:"id_edition"`
	EventType  string `db:"event_type"`
	Copies     string `db:"event_copies"`
	CopiesType string `db:"event_copies_type"`
	Volumes    string `db:"event_vols"`
	LotPrice   string `db:"event_lot_price"`
	Date       string `db:"event_date"`
	Notes      string `db:"event_notes"`
}
