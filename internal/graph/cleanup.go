package graph

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// RemoveStaleAgents deletes the agents, and the legacy keys left pointing
// nowhere, that are absent from the current export.
func (c *Client) RemoveStaleAgents(ctx context.Context, currentCodes []string) (int64, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
	defer session.Close(ctx)

	query := `
MATCH (a:Agent)
WHERE NOT a.code IN $current_codes
DETACH DELETE a
RETURN count(a) AS deleted
`
	params := map[string]any{"current_codes": currentCodes}

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		var deleted int64
		if res.Next(ctx) {
			value, _ := res.Record().Get("deleted")
			if count, ok := value.(int64); ok {
				deleted = count
			}
		}
		if err := res.Err(); err != nil {
			return nil, err
		}

		if _, err := tx.Run(ctx, `MATCH (k:LegacyKey) WHERE NOT (k)-[:RESOLVES_TO]->() DELETE k`, nil); err != nil {
			return nil, err
		}
		return deleted, nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "removing stale agents")
	}

	return result.(int64), nil
}
