// Package mcp serves read-only lookups over the migrated agents to MCP
// clients: legacy key resolution, agent records, name search and the run
// summary.
package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"mpcereform/internal/report"
	"mpcereform/internal/store"
)

// Lookup is the read side of the store the tools query.
type Lookup interface {
	report.Counter
	GetAgent(ctx context.Context, code string) (*store.AgentRow, error)
	ResolveKey(ctx context.Context, namespace, key string) (*store.KeyLinkRow, error)
	KeysForAgent(ctx context.Context, code string) ([]store.KeyLinkRow, error)
	SearchAgents(ctx context.Context, query string, limit int) ([]store.AgentRow, error)
}

type Server struct {
	db  Lookup
	mcp *sdk.Server
}

func NewServer(db Lookup, version string) *Server {
	s := &Server{
		db: db,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "mpcereform",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
