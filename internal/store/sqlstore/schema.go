package sqlstore

import (
	"context"

	"github.com/cockroachdb/errors"

	"mpcereform/internal/store"
)

type table struct {
	name string
	defs [][]string
}

func text(name string) []string { return []string{name, "TEXT"} }

func integer(name string) []string { return []string{name, "INTEGER"} }

func idColumn() []string { return []string{"id", "INTEGER", "PRIMARY KEY"} }

func primaryKey(columns string) []string { return []string{"PRIMARY KEY", "(" + columns + ")"} }

var targetTables = []table{
	{"agent", [][]string{
		{"agent_code", "TEXT", "PRIMARY KEY"},
		{"name", "TEXT", "NOT NULL"},
		text("other_names"), text("sex"), text("title"), text("designation"), text("status"),
		text("start_date"), text("end_date"), text("notes"),
		{"corporate_entity", "BOOLEAN", "NOT NULL", "DEFAULT FALSE"},
	}},
	{"agent_key", [][]string{
		{"namespace", "TEXT", "NOT NULL"},
		{"source_key", "TEXT", "NOT NULL"},
		{"agent_code", "TEXT", "NOT NULL"},
		text("source"),
		primaryKey("namespace, source_key"),
	}},
	{"stn_client_agent", [][]string{
		{"client_code", "TEXT", "NOT NULL"},
		{"agent_code", "TEXT", "NOT NULL"},
		primaryKey("client_code, agent_code"),
	}},
	{"is_member_of", [][]string{
		{"member", "TEXT", "NOT NULL"},
		{"corporate_entity", "TEXT", "NOT NULL"},
		primaryKey("member, corporate_entity"),
	}},
	{"place", [][]string{
		{"place_code", "TEXT", "PRIMARY KEY"},
		text("name"), text("town"),
	}},
	{"profession", [][]string{
		{"profession_code", "TEXT", "PRIMARY KEY"},
		text("profession_type"), text("profession_group"), text("economic_sector"),
	}},
	{"agent_profession", [][]string{
		{"agent_code", "TEXT", "NOT NULL"},
		{"profession_code", "TEXT", "NOT NULL"},
		primaryKey("agent_code, profession_code"),
	}},
	{"agent_address", [][]string{
		{"agent_code", "TEXT", "NOT NULL"},
		{"place_code", "TEXT", "NOT NULL"},
		text("address"),
		primaryKey("agent_code, place_code"),
	}},
	{"stn_client", [][]string{
		{"client_code", "TEXT", "PRIMARY KEY"},
		text("client_name"), text("gender"),
		{"partnership", "BOOLEAN", "NOT NULL", "DEFAULT FALSE"},
		integer("number_of_documents"),
		text("first_date"), text("last_date"), text("notes"),
	}},
	{"author_type", [][]string{idColumn(), {"name", "TEXT", "NOT NULL"}}},
	{"auction_role", [][]string{idColumn(), {"name", "TEXT", "NOT NULL"}}},
	{"edition_author", [][]string{
		idColumn(),
		{"edition_code", "TEXT", "NOT NULL"},
		text("author"), integer("author_type"),
		{"certain", "BOOLEAN", "NOT NULL", "DEFAULT FALSE"},
	}},
	{"consignment", [][]string{
		idColumn(),
		{"uuid", "TEXT", "NOT NULL", "UNIQUE"},
		text("confiscation_register_ms"), text("confiscation_register_folio"),
		text("customs_register_ms"), text("customs_register_folio"),
		text("ms_21935_folio"), text("ms_21935_entry_no"),
		text("shipping_number"), text("marque"), text("inspection_date"),
		text("origin_text"), text("origin_code"), text("other_stakeholder"),
		text("acquit_a_caution"), text("returned_to_name"), text("returned_to_agent"),
		text("returned_to_town"), text("returned_to_place"), text("notes"),
		text("all_collectors"), text("all_censors"),
	}},
	consignmentAgents("consignment_addressee"),
	consignmentAgents("consignment_signatory"),
	consignmentAgents("consignment_handling_agent"),
	{"stamping", [][]string{
		idColumn(),
		text("stamped_edition"), text("permitted_dealer"),
		text("attending_inspector"), text("attending_adjoint"), text("stamped_at_place"),
		integer("copies_stamped"), integer("volumes_stamped"),
		text("date"), text("event_notes"),
	}},
	{"parisian_stock_auction", [][]string{
		idColumn(),
		{"auction_id", "TEXT", "NOT NULL"},
		text("ms_number"), text("previous_owner"), text("auction_reason"), text("place"),
	}},
	{"auction_administrator", [][]string{
		idColumn(),
		{"auction_id", "TEXT", "NOT NULL"},
		text("administrator_id"), integer("administrator_role"),
	}},
	{"parisian_stock_sale", [][]string{
		idColumn(),
		text("auction_id"), text("purchaser"), text("purchased_edition"), text("sale_type"),
		text("units_sold"), integer("units"), text("volumes_traded"), text("lot_price"),
		text("date"), text("sale_notes"),
	}},
	{"permission_simple_grant", [][]string{
		idColumn(),
		text("dawson_work"), text("dawson_edition"), text("date_granted"), text("edition_code"),
		text("licensee"), integer("licensed_copies"), integer("printed_copies_estimate"),
		text("work_confirmed"), text("edition_confirmed"),
	}},
}

func consignmentAgents(name string) table {
	return table{name, [][]string{
		idColumn(),
		{"consignment", "INTEGER", "NOT NULL"},
		text("agent_code"), text("text"),
	}}
}

// sourceTables is the part of the legacy schema the migration reads.
var sourceTables = []table{
	{"people", [][]string{
		{"person_code", "TEXT", "PRIMARY KEY"},
		text("person_name"), text("sex"), text("title"), text("other_names"),
		text("designation"), text("status"), text("birth_date"), text("death_date"), text("notes"),
	}},
	{"clients", [][]string{
		{"client_code", "TEXT", "PRIMARY KEY"},
		text("client_name"), text("gender"), {"partnership", "BOOLEAN"},
		integer("number_of_documents"), text("first_date"), text("last_date"), text("notes"),
	}},
	{"clients_people", [][]string{text("client_code"), text("person_code")}},
	{"professions", [][]string{
		{"profession_code", "TEXT", "PRIMARY KEY"},
		text("profession_type"), text("profession_group"), text("economic_sector"),
	}},
	{"people_professions", [][]string{text("person_code"), text("profession_code")}},
	{"clients_addresses", [][]string{text("client_code"), text("place_code"), text("address")}},
	{"places", [][]string{{"place_code", "TEXT", "PRIMARY KEY"}, text("name"), text("town")}},
	{"manuscript_authors", [][]string{text("author_code"), text("author_name")}},
	{"manuscript_books_authors", [][]string{
		text("book_code"), text("author_code"), text("author_type"), {"certain", "BOOLEAN"},
	}},
	{"manuscript_dealers", [][]string{
		text("client_code"), text("dealer_name"), text("alternative_name"),
		text("profession_code"), text("place_code"), text("notes"),
	}},
	{"manuscript_agents_inspectors", [][]string{
		text("client_code"), text("agent_name"), text("place_code"), text("notes"),
	}},
	{"manuscript_events", [][]string{
		idColumn(),
		text("id_edition"), text("id_dealer"), text("id_agent_a"), text("id_agent_b"), text("id_place"),
		text("event_copies"), text("event_vols"), text("event_date"), text("event_notes"),
	}},
	{"manuscript_sales_events", [][]string{
		text("sales_number"), text("ms_number"), text("client_code"), text("reason"),
		text("place_code"), text("id_agent"),
	}},
	{"manuscript_events_sales", [][]string{
		idColumn(),
		text("id_sale_agent"), text("id_dealer"), text("id_edition"), text("event_type"),
		text("event_copies"), text("event_copies_type"), text("event_vols"),
		text("event_lot_price"), text("event_date"), text("event_notes"),
	}},
}

// TargetTables lists the target tables in creation order.
func TargetTables() []string {
	names := make([]string, len(targetTables))
	for i, t := range targetTables {
		names[i] = t.name
	}
	return names
}

// CreateTargetTables creates every table of the target schema. The schema
// itself must already exist.
func (d *DB) CreateTargetTables(ctx context.Context) error {
	return d.createTables(ctx, store.TargetSchema, targetTables)
}

// CreateSourceTables creates the legacy tables the migration reads. Used to
// build fixtures and scratch databases.
func (d *DB) CreateSourceTables(ctx context.Context) error {
	return d.createTables(ctx, store.SourceSchema, sourceTables)
}

func (d *DB) createTables(ctx context.Context, schema string, tables []table) error {
	for _, t := range tables {
		ctb := d.flavor.NewCreateTableBuilder()
		ctb.CreateTable(schema + "." + t.name).IfNotExists()
		for _, def := range t.defs {
			ctb.Define(def...)
		}
		query, args := ctb.Build()
		if _, err := d.db.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrapf(err, "creating %s.%s", schema, t.name)
		}
	}
	return nil
}
