package mcp

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"mpcereform/internal/agents"
	"mpcereform/internal/report"
	"mpcereform/internal/store"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 200
)

type ResolveKeyInput struct {
	Namespace string `json:"namespace" jsonschema:"legacy key space: client or author"`
	Key       string `json:"key" jsonschema:"legacy code, e.g. cl0335"`
}

type GetAgentInput struct {
	Code string `json:"code" jsonschema:"agent code, e.g. id000045"`
}

type SearchAgentsInput struct {
	Query string `json:"query" jsonschema:"part of the agent's name or other names"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results"`
}

type SummaryInput struct{}

type KeyOutput struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	AgentCode string `json:"agent_code"`
	Source    string `json:"source,omitempty"`
}

type AgentOutput struct {
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	OtherNames  string      `json:"other_names,omitempty"`
	Sex         string      `json:"sex,omitempty"`
	Title       string      `json:"title,omitempty"`
	Designation string      `json:"designation,omitempty"`
	Status      string      `json:"status,omitempty"`
	StartDate   string      `json:"start_date,omitempty"`
	EndDate     string      `json:"end_date,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	Corporate   bool        `json:"corporate"`
	Keys        []KeyOutput `json:"keys,omitempty"`
}

type ResolveKeyOutput struct {
	Key   KeyOutput   `json:"key"`
	Agent AgentOutput `json:"agent"`
}

type SearchAgentsOutput struct {
	Agents []AgentOutput `json:"agents"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "resolve_key",
		Description: "Find the agent a legacy client or author code was resolved to",
	}, s.handleResolveKey)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_agent",
		Description: "Retrieve an agent and the legacy keys mapped to it",
	}, s.handleGetAgent)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "search_agents",
		Description: "Search agents by name",
	}, s.handleSearchAgents)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "summary",
		Description: "Counts of agents, mapped keys and events in the migrated schema",
	}, s.handleSummary)
}

func (s *Server) handleResolveKey(ctx context.Context, req *sdk.CallToolRequest, input ResolveKeyInput) (*sdk.CallToolResult, ResolveKeyOutput, error) {
	key := strings.TrimSpace(input.Key)
	if key == "" {
		return nil, ResolveKeyOutput{}, errors.New("key is required")
	}
	ns := agents.Namespace(strings.TrimSpace(input.Namespace))
	if ns == "" {
		ns = agents.NamespaceClient
	}
	if ns != agents.NamespaceClient && ns != agents.NamespaceAuthor {
		return nil, ResolveKeyOutput{}, errors.Newf("unknown namespace %q", ns)
	}

	link, err := s.db.ResolveKey(ctx, string(ns), key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ResolveKeyOutput{}, errors.Newf("no agent for %s key %s", ns, key)
		}
		return nil, ResolveKeyOutput{}, err
	}
	agent, err := s.db.GetAgent(ctx, link.AgentCode)
	if err != nil {
		return nil, ResolveKeyOutput{}, err
	}
	return nil, ResolveKeyOutput{Key: keyOutput(*link), Agent: agentOutput(agent)}, nil
}

func (s *Server) handleGetAgent(ctx context.Context, req *sdk.CallToolRequest, input GetAgentInput) (*sdk.CallToolResult, AgentOutput, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, AgentOutput{}, errors.New("code is required")
	}
	agent, err := s.db.GetAgent(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, AgentOutput{}, errors.Newf("agent %s not found", code)
		}
		return nil, AgentOutput{}, err
	}
	keys, err := s.db.KeysForAgent(ctx, code)
	if err != nil {
		return nil, AgentOutput{}, err
	}

	out := agentOutput(agent)
	for _, k := range keys {
		out.Keys = append(out.Keys, keyOutput(k))
	}
	return nil, out, nil
}

func (s *Server) handleSearchAgents(ctx context.Context, req *sdk.CallToolRequest, input SearchAgentsInput) (*sdk.CallToolResult, SearchAgentsOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, SearchAgentsOutput{}, errors.New("query is required")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)

	rows, err := s.db.SearchAgents(ctx, query, limit)
	if err != nil {
		return nil, SearchAgentsOutput{}, err
	}
	out := make([]AgentOutput, 0, len(rows))
	for i := range rows {
		out = append(out, agentOutput(&rows[i]))
	}
	return nil, SearchAgentsOutput{Agents: out}, nil
}

func (s *Server) handleSummary(ctx context.Context, req *sdk.CallToolRequest, input SummaryInput) (*sdk.CallToolResult, report.Summary, error) {
	summary, err := report.Collect(ctx, s.db)
	if err != nil {
		return nil, report.Summary{}, err
	}
	return nil, *summary, nil
}

func agentOutput(a *store.AgentRow) AgentOutput {
	if a == nil {
		return AgentOutput{}
	}
	return AgentOutput{
		Code:        a.Code,
		Name:        a.Name,
		OtherNames:  store.Deref(a.OtherNames),
		Sex:         store.Deref(a.Sex),
		Title:       store.Deref(a.Title),
		Designation: store.Deref(a.Designation),
		Status:      store.Deref(a.Status),
		StartDate:   store.Deref(a.StartDate),
		EndDate:     store.Deref(a.EndDate),
		Notes:       store.Deref(a.Notes),
		Corporate:   a.Corporate,
	}
}

func keyOutput(k store.KeyLinkRow) KeyOutput {
	return KeyOutput{
		Namespace: k.Namespace,
		Key:       k.Key,
		AgentCode: k.AgentCode,
		Source:    k.Source,
	}
}
