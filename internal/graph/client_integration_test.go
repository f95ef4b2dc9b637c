//go:build integration

package graph

import (
	"context"
	"os"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"mpcereform/internal/store"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()
	uri := os.Getenv("MPCE_TEST_NEO4J_URI")
	if uri == "" {
		uri = "bolt://localhost:7687"
	}
	client, err := NewClient(ctx, uri, "neo4j", "changeme", "neo4j")
	if err != nil {
		t.Fatalf("connecting to test neo4j: %v", err)
	}
	t.Cleanup(func() { _ = client.Close(ctx) })
	return client
}

func clearDatabase(t *testing.T, client *Client) {
	t.Helper()
	if err := client.write(context.Background(), "MATCH (n) DETACH DELETE n", nil); err != nil {
		t.Fatalf("clear database: %v", err)
	}
}

func TestNewClient_BadCredentials(t *testing.T) {
	ctx := context.Background()
	client, err := NewClient(ctx, "bolt://localhost:7687", "neo4j", "wrong", "neo4j")
	if err == nil {
		_ = client.Close(ctx)
		t.Fatalf("expected error")
	}
}

func TestEnsureIndexes(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	if err := client.EnsureIndexes(ctx); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	if err := client.EnsureIndexes(ctx); err != nil {
		t.Fatalf("ensure indexes (idempotent): %v", err)
	}

	session := client.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: client.database})
	defer session.Close(ctx)

	names, err := listNames(ctx, session, "SHOW CONSTRAINTS YIELD name RETURN name")
	if err != nil {
		t.Fatalf("list constraints: %v", err)
	}
	for _, name := range []string{"agent_unique_code", "legacy_key_unique"} {
		if !contains(names, name) {
			t.Fatalf("expected constraint %s", name)
		}
	}
}

func TestExport_Idempotent(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)
	clearDatabase(t, client)

	src := &fakeSource{
		agents: []store.AgentRow{
			{Code: "id000045", Name: "Jean Dupont"},
			{Code: "id000049", Name: "Dupont et Cie", Corporate: true},
		},
		keys: []store.KeyLinkRow{
			{Namespace: "client", Key: "cl0001", AgentCode: "id000045", Source: "clients_people"},
			{Namespace: "client", Key: "cl0400", AgentCode: "id000049", Source: "synthesized"},
		},
		memberships: []store.MembershipRow{{Member: "id000045", Corporate: "id000049"}},
	}

	for i := 0; i < 2; i++ {
		if _, err := Export(ctx, client, src); err != nil {
			t.Fatalf("export %d: %v", i, err)
		}
	}

	agents, err := client.CountNodes(ctx, "Agent")
	if err != nil {
		t.Fatalf("count agents: %v", err)
	}
	if agents != 2 {
		t.Fatalf("expected 2 agents, got %d", agents)
	}

	rows, err := client.RunCypher(ctx,
		`MATCH (k:LegacyKey {namespace: "client", key: "cl0001"})-[:RESOLVES_TO]->(a:Agent) RETURN a.code AS code`, nil)
	if err != nil {
		t.Fatalf("query key: %v", err)
	}
	if len(rows) != 1 || rows[0]["code"] != "id000045" {
		t.Fatalf("unexpected key resolution: %v", rows)
	}

	rows, err = client.RunCypher(ctx, `MATCH (:Agent)-[r:MEMBER_OF]->(:Agent) RETURN count(r) AS n`, nil)
	if err != nil {
		t.Fatalf("query memberships: %v", err)
	}
	if rows[0]["n"] != int64(1) {
		t.Fatalf("expected 1 membership, got %v", rows[0]["n"])
	}
}

func TestExport_RemovesStaleAgents(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)
	clearDatabase(t, client)

	src := &fakeSource{
		agents: []store.AgentRow{{Code: "id000001", Name: "A"}, {Code: "id000002", Name: "B"}},
		keys:   []store.KeyLinkRow{{Namespace: "author", Key: "au0002", AgentCode: "id000002"}},
	}
	if _, err := Export(ctx, client, src); err != nil {
		t.Fatalf("export: %v", err)
	}

	src.agents = src.agents[:1]
	src.keys = nil
	res, err := Export(ctx, client, src)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if res.Removed != 1 {
		t.Fatalf("expected 1 removed, got %d", res.Removed)
	}
	keys, err := client.CountNodes(ctx, "LegacyKey")
	if err != nil {
		t.Fatalf("count keys: %v", err)
	}
	if keys != 0 {
		t.Fatalf("expected orphaned key removed, got %d", keys)
	}
}

func listNames(ctx context.Context, session neo4j.SessionWithContext, query string) ([]string, error) {
	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		var names []string
		for res.Next(ctx) {
			value, _ := res.Record().Get("name")
			if name, ok := value.(string); ok {
				names = append(names, name)
			}
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return names, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
