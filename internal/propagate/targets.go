package propagate

import (
	"mpcereform/internal/agents"
	"mpcereform/internal/store"
)

var (
	AllCollectors = store.Column{Table: store.Target("consignment"), IDColumn: "id", Name: "all_collectors"}
	AllCensors    = store.Column{Table: store.Target("consignment"), IDColumn: "id", Name: "all_censors"}
)

// Targets lists the key columns of the event tables in the order they are
// rewritten.
func Targets() []Target {
	client := func(table, column string) Target {
		return Target{
			Column:    store.Column{Table: store.Target(table), IDColumn: "id", Name: column},
			Namespace: agents.NamespaceClient,
		}
	}
	return []Target{
		client("consignment", "other_stakeholder"),
		client("consignment", "returned_to_agent"),
		client("consignment_addressee", "agent_code"),
		client("consignment_signatory", "agent_code"),
		client("consignment_handling_agent", "agent_code"),
		client("stamping", "permitted_dealer"),
		client("stamping", "attending_inspector"),
		client("stamping", "attending_adjoint"),
		client("parisian_stock_auction", "previous_owner"),
		client("auction_administrator", "administrator_id"),
		client("parisian_stock_sale", "purchaser"),
		client("permission_simple_grant", "licensee"),
		{
			Column:    store.Column{Table: store.Target("edition_author"), IDColumn: "id", Name: "author"},
			Namespace: agents.NamespaceAuthor,
		},
	}
}
