// Package store is the session object over the relational database holding
// the legacy "manuscripts" schema and the target "mpce" schema. One Store is
// opened per run and closed when the run ends.
package store

import (
	"context"

	"github.com/cockroachdb/errors"

	"mpcereform/internal/sources"
)

const (
	SourceSchema = "manuscripts"
	TargetSchema = "mpce"
)

var ErrNotFound = errors.New("not found")

// Target returns the schema-qualified name of a target table.
func Target(table string) string { return TargetSchema + "." + table }

// Source returns the schema-qualified name of a legacy table.
func Source(table string) string { return SourceSchema + "." + table }

type Schema interface {
	SourceExists(ctx context.Context) (bool, error)
	TargetExists(ctx context.Context) (bool, error)
	DropTarget(ctx context.Context) error
	CreateTarget(ctx context.Context) error
}

// Legacy reads the tables of the source schema.
type Legacy interface {
	People(ctx context.Context) ([]sources.Person, error)
	Clients(ctx context.Context) ([]sources.Client, error)
	ClientPeople(ctx context.Context) ([]sources.ClientPerson, error)
	Professions(ctx context.Context) ([]sources.Profession, error)
	PersonProfessions(ctx context.Context) ([]sources.PersonProfession, error)
	ClientAddresses(ctx context.Context) ([]sources.ClientAddress, error)
	Places(ctx context.Context) ([]sources.Place, error)
	Authors(ctx context.Context) ([]sources.Author, error)
	BookAuthors(ctx context.Context) ([]sources.BookAuthor, error)
	Dealers(ctx context.Context) ([]sources.Dealer, error)
	Inspectors(ctx context.Context) ([]sources.Inspector, error)
	Stampings(ctx context.Context) ([]sources.Stamping, error)
	Auctions(ctx context.Context) ([]sources.Auction, error)
	Sales(ctx context.Context) ([]sources.Sale, error)
}

// Writer inserts rows into the target schema. Every method is a no-op for
// an empty slice.
type Writer interface {
	InsertAgents(ctx context.Context, rows []AgentRow) error
	InsertKeyLinks(ctx context.Context, rows []KeyLinkRow) error
	InsertClientAgents(ctx context.Context, rows []ClientAgentRow) error
	InsertMemberships(ctx context.Context, rows []MembershipRow) error
	InsertAddresses(ctx context.Context, rows []AddressRow) error
	InsertAgentProfessions(ctx context.Context, rows []AgentProfessionRow) error
	// InsertProfessions skips codes already present when ignoreDuplicates
	// is set and reports how many rows were written.
	InsertProfessions(ctx context.Context, rows []ProfessionRow, ignoreDuplicates bool) (int64, error)
	InsertPlaces(ctx context.Context, rows []PlaceRow) error
	InsertStnClients(ctx context.Context, rows []StnClientRow) error
	InsertLookup(ctx context.Context, table string, rows []LookupRow) error
	InsertEditionAuthors(ctx context.Context, rows []EditionAuthorRow) error
	InsertConsignments(ctx context.Context, rows []ConsignmentRow) error
	InsertConsignmentAgents(ctx context.Context, table string, rows []ConsignmentAgentRow) error
	InsertStampings(ctx context.Context, rows []StampingRow) error
	InsertStockAuctions(ctx context.Context, rows []StockAuctionRow) error
	InsertAuctionAdministrators(ctx context.Context, rows []AuctionAdministratorRow) error
	InsertStockSales(ctx context.Context, rows []StockSaleRow) error
	InsertPermissionGrants(ctx context.Context, rows []PermissionGrantRow) error
}

// Columns reads and rewrites one column at a time.
type Columns interface {
	ReadColumn(ctx context.Context, col Column) ([]ColumnValue, error)
	UpdateColumn(ctx context.Context, col Column, values []ColumnValue) error
}

// Reader answers the read-only queries of reporting, validation, the graph
// export and the lookup server.
type Reader interface {
	Count(ctx context.Context, table string) (int64, error)
	CountCorporateAgents(ctx context.Context) (int64, error)
	CountKeysByNamespace(ctx context.Context) (map[string]int64, error)
	GetAgent(ctx context.Context, code string) (*AgentRow, error)
	ResolveKey(ctx context.Context, namespace, key string) (*KeyLinkRow, error)
	KeysForAgent(ctx context.Context, code string) ([]KeyLinkRow, error)
	SearchAgents(ctx context.Context, query string, limit int) ([]AgentRow, error)
	ListAgents(ctx context.Context) ([]AgentRow, error)
	ListKeyLinks(ctx context.Context) ([]KeyLinkRow, error)
	ListMemberships(ctx context.Context) ([]MembershipRow, error)
}

type Store interface {
	Close(ctx context.Context) error
	Schema
	Legacy
	Writer
	Columns
	Reader
}
