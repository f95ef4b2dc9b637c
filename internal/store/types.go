package store

// Row types of the target schema. Field tags name the columns; nullable
// columns are pointers.

type AgentRow struct {
	Code        string  `db:"agent_code"`
	Name        string  `db:"name"`
	OtherNames  *string `db:"other_names"`
	Sex         *string `db:"sex"`
	Title       *string `db:"title"`
	Designation *string `db:"designation"`
	Status      *string `db:"status"`
	StartDate   *string `db:"start_date"`
	EndDate     *string `db:"end_date"`
	Notes       *string `db:"notes"`
	Corporate   bool    `db:"corporate_entity"`
}

type KeyLinkRow struct {
	Namespace string `db:"namespace"`
	Key       string `db:"source_key"`
	AgentCode string `db:"agent_code"`
	Source    string `db:"source"`
}

type ClientAgentRow struct {
	ClientCode string `db:"client_code"`
	AgentCode  string `db:"agent_code"`
}

type MembershipRow struct {
	Member    string `db:"member"`
	Corporate string `db:"corporate_entity"`
}

type AddressRow struct {
	AgentCode string  `db:"agent_code"`
	PlaceCode string  `db:"place_code"`
	Address   *string `db:"address"`
}

type AgentProfessionRow struct {
	AgentCode      string `db:"agent_code"`
	ProfessionCode string `db:"profession_code"`
}

type ProfessionRow struct {
	Code   string  `db:"profession_code"`
	Type   *string `db:"profession_type"`
	Group  *string `db:"profession_group"`
	Sector *string `db:"economic_sector"`
}

type PlaceRow struct {
	Code string  `db:"place_code"`
	Name *string `db:"name"`
	Town *string `db:"town"`
}

type StnClientRow struct {
	Code        string  `db:"client_code"`
	Name        *string `db:"client_name"`
	Gender      *string `db:"gender"`
	Partnership bool    `db:"partnership"`
	Documents   *int64  `db:"number_of_documents"`
	FirstDate   *string `db:"first_date"`
	LastDate    *string `db:"last_date"`
	Notes       *string `db:"notes"`
}

type LookupRow struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type EditionAuthorRow struct {
	ID          int64   `db:"id"`
	EditionCode string  `db:"edition_code"`
	Author      *string `db:"author"`
	AuthorType  *int64  `db:"author_type"`
	Certain     bool    `db:"certain"`
}

type ConsignmentRow struct {
	ID                     int64   `db:"id"`
	UUID                   string  `db:"uuid"`
	ConfiscationRegisterMS *string `db:"confiscation_register_ms"`
	ConfiscationFolio      *string `db:"confiscation_register_folio"`
	CustomsRegisterMS      *string `db:"customs_register_ms"`
	CustomsFolio           *string `db:"customs_register_folio"`
	MS21935Folio           *string `db:"ms_21935_folio"`
	MS21935Entry           *string `db:"ms_21935_entry_no"`
	ShippingNumber         *string `db:"shipping_number"`
	Marque                 *string `db:"marque"`
	InspectionDate         *string `db:"inspection_date"`
	OriginText             *string `db:"origin_text"`
	OriginCode             *string `db:"origin_code"`
	OtherStakeholder       *string `db:"other_stakeholder"`
	AcquitACaution         *string `db:"acquit_a_caution"`
	ReturnedToName         *string `db:"returned_to_name"`
	ReturnedToAgent        *string `db:"returned_to_agent"`
	ReturnedToTown         *string `db:"returned_to_town"`
	ReturnedToPlace        *string `db:"returned_to_place"`
	Notes                  *string `db:"notes"`
	AllCollectors          *string `db:"all_collectors"`
	AllCensors             *string `db:"all_censors"`
}

// ConsignmentAgentRow is shared by the addressee, signatory and handling
// agent tables.
type ConsignmentAgentRow struct {
	ID          int64   `db:"id"`
	Consignment int64   `db:"consignment"`
	AgentCode   *string `db:"agent_code"`
	Text        *string `db:"text"`
}

type StampingRow struct {
	ID                 int64   `db:"id"`
	StampedEdition     *string `db:"stamped_edition"`
	PermittedDealer    *string `db:"permitted_dealer"`
	AttendingInspector *string `db:"attending_inspector"`
	AttendingAdjoint   *string `db:"attending_adjoint"`
	StampedAtPlace     *string `db:"stamped_at_place"`
	CopiesStamped      *int64  `db:"copies_stamped"`
	VolumesStamped     *int64  `db:"volumes_stamped"`
	Date               *string `db:"date"`
	EventNotes         *string `db:"event_notes"`
}

type StockAuctionRow struct {
	ID            int64   `db:"id"`
	AuctionID     string  `db:"auction_id"`
	MSNumber      *string `db:"ms_number"`
	PreviousOwner *string `db:"previous_owner"`
	AuctionReason *string `db:"auction_reason"`
	Place         *string `db:"place"`
}

type AuctionAdministratorRow struct {
	ID              int64   `db:"id"`
	AuctionID       string  `db:"auction_id"`
	AdministratorID *string `db:"administrator_id"`
	Role            *int64  `db:"administrator_role"`
}

type StockSaleRow struct {
	ID               int64   `db:"id"`
	AuctionID        *string `db:"auction_id"`
	Purchaser        *string `db:"purchaser"`
	PurchasedEdition *string `db:"purchased_edition"`
	SaleType         *string `db:"sale_type"`
	UnitsSold        *string `db:"units_sold"`
	Units            *int64  `db:"units"`
	VolumesTraded    *string `db:"volumes_traded"`
	LotPrice         *string `db:"lot_price"`
	Date             *string `db:"date"`
	SaleNotes        *string `db:"sale_notes"`
}

type PermissionGrantRow struct {
	ID                    int64   `db:"id"`
	DawsonWork            *string `db:"dawson_work"`
	DawsonEdition         *string `db:"dawson_edition"`
	DateGranted           *string `db:"date_granted"`
	EditionCode           *string `db:"edition_code"`
	Licensee              *string `db:"licensee"`
	LicensedCopies        *int64  `db:"licensed_copies"`
	PrintedCopiesEstimate *int64  `db:"printed_copies_estimate"`
	WorkConfirmed         *string `db:"work_confirmed"`
	EditionConfirmed      *string `db:"edition_confirmed"`
}

// ColumnValue is one cell of a column being rewritten, keyed by the row's
// integer id.
type ColumnValue struct {
	ID    int64   `db:"id"`
	Value *string `db:"value"`
}

// Column names a rewritable column.
type Column struct {
	Table    string
	IDColumn string
	Name     string
}

func (c Column) String() string { return c.Table + "." + c.Name }
