package mcp

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"

	"mpcereform/internal/store"
)

type mockLookup struct {
	agents map[string]*store.AgentRow
	keys   []store.KeyLinkRow
	search []store.AgentRow
	err    error

	lastResolveNamespace string
	lastResolveKey       string
	lastSearchQuery      string
	lastSearchLimit      int
}

func (m *mockLookup) Count(ctx context.Context, table string) (int64, error) {
	if table == "mpce.agent" {
		return int64(len(m.agents)), nil
	}
	return 0, nil
}

func (m *mockLookup) CountCorporateAgents(ctx context.Context) (int64, error) {
	var n int64
	for _, a := range m.agents {
		if a.Corporate {
			n++
		}
	}
	return n, nil
}

func (m *mockLookup) CountKeysByNamespace(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, k := range m.keys {
		counts[k.Namespace]++
	}
	return counts, nil
}

func (m *mockLookup) GetAgent(ctx context.Context, code string) (*store.AgentRow, error) {
	if m.err != nil {
		return nil, m.err
	}
	a, ok := m.agents[code]
	if !ok {
		return nil, store.ErrNotFound
	}
	return a, nil
}

func (m *mockLookup) ResolveKey(ctx context.Context, namespace, key string) (*store.KeyLinkRow, error) {
	m.lastResolveNamespace = namespace
	m.lastResolveKey = key
	for i, k := range m.keys {
		if k.Namespace == namespace && k.Key == key {
			return &m.keys[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockLookup) KeysForAgent(ctx context.Context, code string) ([]store.KeyLinkRow, error) {
	var out []store.KeyLinkRow
	for _, k := range m.keys {
		if k.AgentCode == code {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *mockLookup) SearchAgents(ctx context.Context, query string, limit int) ([]store.AgentRow, error) {
	m.lastSearchQuery = query
	m.lastSearchLimit = limit
	return m.search, nil
}

func strp(s string) *string { return &s }

func newLookup() *mockLookup {
	return &mockLookup{
		agents: map[string]*store.AgentRow{
			"id000045": {Code: "id000045", Name: "Jean Dupont", Sex: strp("Male")},
			"id000049": {Code: "id000049", Name: "Dupont et Cie", Corporate: true},
		},
		keys: []store.KeyLinkRow{
			{Namespace: "client", Key: "cl0001", AgentCode: "id000045", Source: "clients_people"},
			{Namespace: "author", Key: "au0007", AgentCode: "id000045", Source: "author_person"},
			{Namespace: "client", Key: "cl0400", AgentCode: "id000049", Source: "synthesized"},
		},
	}
}

func TestResolveKey(t *testing.T) {
	lookup := newLookup()
	server := NewServer(lookup, "test")

	_, output, err := server.handleResolveKey(context.Background(), nil, ResolveKeyInput{Key: " cl0400 "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Agent.Code != "id000049" || !output.Agent.Corporate {
		t.Fatalf("unexpected agent: %+v", output.Agent)
	}
	if lookup.lastResolveNamespace != "client" || lookup.lastResolveKey != "cl0400" {
		t.Fatalf("unexpected resolve params")
	}
}

func TestResolveKey_Errors(t *testing.T) {
	server := NewServer(newLookup(), "test")
	ctx := context.Background()

	if _, _, err := server.handleResolveKey(ctx, nil, ResolveKeyInput{}); err == nil {
		t.Fatalf("expected error for empty key")
	}
	if _, _, err := server.handleResolveKey(ctx, nil, ResolveKeyInput{Namespace: "person", Key: "pe0001"}); err == nil {
		t.Fatalf("expected error for unknown namespace")
	}
	if _, _, err := server.handleResolveKey(ctx, nil, ResolveKeyInput{Namespace: "author", Key: "au9999"}); err == nil {
		t.Fatalf("expected error for unmapped key")
	}
}

func TestGetAgent(t *testing.T) {
	server := NewServer(newLookup(), "test")

	_, output, err := server.handleGetAgent(context.Background(), nil, GetAgentInput{Code: "id000045"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Name != "Jean Dupont" || output.Sex != "Male" {
		t.Fatalf("unexpected agent: %+v", output)
	}
	if len(output.Keys) != 2 {
		t.Fatalf("expected 2 keys, got %+v", output.Keys)
	}
}

func TestGetAgent_NotFound(t *testing.T) {
	server := NewServer(newLookup(), "test")

	_, _, err := server.handleGetAgent(context.Background(), nil, GetAgentInput{Code: "id009999"})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestGetAgent_StoreError(t *testing.T) {
	lookup := newLookup()
	lookup.err = errors.New("connection reset")
	server := NewServer(lookup, "test")

	_, _, err := server.handleGetAgent(context.Background(), nil, GetAgentInput{Code: "id000045"})
	if err == nil || errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestSearchAgents(t *testing.T) {
	lookup := newLookup()
	lookup.search = []store.AgentRow{{Code: "id000045", Name: "Jean Dupont"}}
	server := NewServer(lookup, "test")

	_, output, err := server.handleSearchAgents(context.Background(), nil, SearchAgentsInput{Query: "dupont"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Agents) != 1 || output.Agents[0].Code != "id000045" {
		t.Fatalf("unexpected search output: %+v", output)
	}
	if lookup.lastSearchQuery != "dupont" || lookup.lastSearchLimit != defaultSearchLimit {
		t.Fatalf("unexpected search params")
	}

	if _, _, err := server.handleSearchAgents(context.Background(), nil, SearchAgentsInput{Query: "x", Limit: 5000}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lookup.lastSearchLimit != maxSearchLimit {
		t.Fatalf("expected limit capped at %d, got %d", maxSearchLimit, lookup.lastSearchLimit)
	}
	if _, _, err := server.handleSearchAgents(context.Background(), nil, SearchAgentsInput{}); err == nil {
		t.Fatalf("expected error for empty query")
	}
}

func TestSummary(t *testing.T) {
	server := NewServer(newLookup(), "test")

	_, output, err := server.handleSummary(context.Background(), nil, SummaryInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Agents != 2 || output.Corporate != 1 || output.Persons != 1 {
		t.Fatalf("unexpected summary: %+v", output)
	}
	if output.Keys["client"] != 2 || output.Keys["author"] != 1 {
		t.Fatalf("unexpected key counts: %+v", output.Keys)
	}
}
