// Package report counts what a migration left in the target schema.
package report

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/cockroachdb/errors"

	"mpcereform/internal/store"
)

// EventTables are counted in this order.
var EventTables = []string{
	"consignment",
	"consignment_addressee",
	"consignment_signatory",
	"consignment_handling_agent",
	"stamping",
	"parisian_stock_auction",
	"auction_administrator",
	"parisian_stock_sale",
	"permission_simple_grant",
}

type Summary struct {
	Agents      int64            `json:"agents"`
	Persons     int64            `json:"persons"`
	Corporate   int64            `json:"corporate"`
	StnClients  int64            `json:"stn_clients"`
	ClientLinks int64            `json:"stn_client_links"`
	Keys        map[string]int64 `json:"keys"`
	Memberships int64            `json:"memberships"`
	Places      int64            `json:"places"`
	Professions int64            `json:"professions_assigned"`
	Addresses   int64            `json:"addresses"`
	Authorships int64            `json:"edition_authors"`
	Events      map[string]int64 `json:"events"`
}

// Counter is the part of store.Reader the summary needs.
type Counter interface {
	Count(ctx context.Context, table string) (int64, error)
	CountCorporateAgents(ctx context.Context) (int64, error)
	CountKeysByNamespace(ctx context.Context) (map[string]int64, error)
}

// Collect reads the counts. It must run after every write has committed.
func Collect(ctx context.Context, db Counter) (*Summary, error) {
	s := &Summary{Events: make(map[string]int64, len(EventTables))}

	counts := []struct {
		table string
		dst   *int64
	}{
		{"agent", &s.Agents},
		{"stn_client", &s.StnClients},
		{"stn_client_agent", &s.ClientLinks},
		{"is_member_of", &s.Memberships},
		{"place", &s.Places},
		{"agent_profession", &s.Professions},
		{"agent_address", &s.Addresses},
		{"edition_author", &s.Authorships},
	}
	for _, c := range counts {
		n, err := db.Count(ctx, store.Target(c.table))
		if err != nil {
			return nil, errors.Wrapf(err, "counting %s", c.table)
		}
		*c.dst = n
	}

	corporate, err := db.CountCorporateAgents(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "counting corporate agents")
	}
	s.Corporate = corporate
	s.Persons = s.Agents - corporate

	keys, err := db.CountKeysByNamespace(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "counting keys")
	}
	s.Keys = keys

	for _, table := range EventTables {
		n, err := db.Count(ctx, store.Target(table))
		if err != nil {
			return nil, errors.Wrapf(err, "counting %s", table)
		}
		s.Events[table] = n
	}
	return s, nil
}

// Write prints the summary as an indented listing.
func (s *Summary) Write(w io.Writer) error {
	lines := []struct {
		label string
		value int64
	}{
		{"Agents", s.Agents},
		{"  persons", s.Persons},
		{"  corporate entities", s.Corporate},
		{"STN clients", s.StnClients},
		{"STN client links", s.ClientLinks},
		{"Memberships", s.Memberships},
		{"Places", s.Places},
		{"Professions assigned", s.Professions},
		{"Addresses", s.Addresses},
		{"Edition authors", s.Authorships},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%-24s %d\n", l.label, l.value); err != nil {
			return err
		}
	}

	namespaces := make([]string, 0, len(s.Keys))
	for ns := range s.Keys {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)
	if _, err := fmt.Fprintln(w, "Legacy keys mapped"); err != nil {
		return err
	}
	for _, ns := range namespaces {
		if _, err := fmt.Fprintf(w, "  %-22s %d\n", ns, s.Keys[ns]); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, "Events"); err != nil {
		return err
	}
	for _, table := range EventTables {
		if _, err := fmt.Fprintf(w, "  %-22s %d\n", table, s.Events[table]); err != nil {
			return err
		}
	}
	return nil
}
