package sqlstore

import (
	"context"

	"github.com/cockroachdb/errors"

	"mpcereform/internal/sources"
	"mpcereform/internal/store"
)

// selectAll reads a legacy table in the given order. Read failures are
// source I/O errors.
func selectAll[T any](ctx context.Context, d *DB, table string, orderBy string, columns ...string) ([]T, error) {
	sb := d.flavor.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(store.Source(table))
	if orderBy != "" {
		sb.OrderBy(orderBy)
	}
	query, args := sb.Build()

	var rows []T
	if err := d.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "reading %s", store.Source(table)), sources.ErrSourceIO)
	}
	return rows, nil
}

func (d *DB) People(ctx context.Context) ([]sources.Person, error) {
	return selectAll[sources.Person](ctx, d, "people", "person_code", coalesced(
		"person_code", "person_name", "sex", "title", "other_names",
		"designation", "status", "birth_date", "death_date", "notes")...)
}

func (d *DB) Clients(ctx context.Context) ([]sources.Client, error) {
	cols := coalesced("client_code", "client_name", "gender", "first_date", "last_date", "notes")
	cols = append(cols, "COALESCE(partnership, FALSE) AS partnership", "number_of_documents")
	return selectAll[sources.Client](ctx, d, "clients", "client_code", cols...)
}

func (d *DB) ClientPeople(ctx context.Context) ([]sources.ClientPerson, error) {
	return selectAll[sources.ClientPerson](ctx, d, "clients_people", "client_code, person_code",
		coalesced("client_code", "person_code")...)
}

func (d *DB) Professions(ctx context.Context) ([]sources.Profession, error) {
	return selectAll[sources.Profession](ctx, d, "professions", "profession_code", coalesced(
		"profession_code", "profession_type", "profession_group", "economic_sector")...)
}

func (d *DB) PersonProfessions(ctx context.Context) ([]sources.PersonProfession, error) {
	return selectAll[sources.PersonProfession](ctx, d, "people_professions", "person_code, profession_code",
		coalesced("person_code", "profession_code")...)
}

func (d *DB) ClientAddresses(ctx context.Context) ([]sources.ClientAddress, error) {
	return selectAll[sources.ClientAddress](ctx, d, "clients_addresses", "client_code, place_code",
		coalesced("client_code", "place_code", "address")...)
}

func (d *DB) Places(ctx context.Context) ([]sources.Place, error) {
	return selectAll[sources.Place](ctx, d, "places", "place_code",
		coalesced("place_code", "name", "town")...)
}

func (d *DB) Authors(ctx context.Context) ([]sources.Author, error) {
	return selectAll[sources.Author](ctx, d, "manuscript_authors", "author_code",
		coalesced("author_code", "author_name")...)
}

func (d *DB) BookAuthors(ctx context.Context) ([]sources.BookAuthor, error) {
	cols := coalesced("book_code", "author_code", "author_type")
	cols = append(cols, "COALESCE(certain, FALSE) AS certain")
	return selectAll[sources.BookAuthor](ctx, d, "manuscript_books_authors", "book_code, author_code", cols...)
}

// Dealers, inspectors and the event tables keep their storage order: it
// decides which source first describes a client.

func (d *DB) Dealers(ctx context.Context) ([]sources.Dealer, error) {
	return selectAll[sources.Dealer](ctx, d, "manuscript_dealers", "", coalesced(
		"client_code", "dealer_name", "alternative_name", "profession_code", "place_code", "notes")...)
}

func (d *DB) Inspectors(ctx context.Context) ([]sources.Inspector, error) {
	return selectAll[sources.Inspector](ctx, d, "manuscript_agents_inspectors", "", coalesced(
		"client_code", "agent_name", "place_code", "notes")...)
}

func (d *DB) Stampings(ctx context.Context) ([]sources.Stamping, error) {
	cols := append([]string{"id"}, coalesced(
		"id_edition", "id_dealer", "id_agent_a", "id_agent_b", "id_place",
		"event_copies", "event_vols", "event_date", "event_notes")...)
	return selectAll[sources.Stamping](ctx, d, "manuscript_events", "id", cols...)
}

func (d *DB) Auctions(ctx context.Context) ([]sources.Auction, error) {
	return selectAll[sources.Auction](ctx, d, "manuscript_sales_events", "", coalesced(
		"sales_number", "ms_number", "client_code", "reason", "place_code", "id_agent")...)
}

func (d *DB) Sales(ctx context.Context) ([]sources.Sale, error) {
	cols := append([]string{"id"}, coalesced(
		"id_sale_agent", "id_dealer", "id_edition", "event_type", "event_copies",
		"event_copies_type", "event_vols", "event_lot_price", "event_date", "event_notes")...)
	return selectAll[sources.Sale](ctx, d, "manuscript_events_sales", "id", cols...)
}
