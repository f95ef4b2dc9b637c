package graph

import (
	"context"
	"regexp"

	"github.com/cockroachdb/errors"

	"mpcereform/internal/store"
)

var labelPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

func (c *Client) UpsertAgents(ctx context.Context, rows []store.AgentRow) error {
	if len(rows) == 0 {
		return nil
	}
	batch := make([]map[string]any, len(rows))
	for i, r := range rows {
		batch[i] = map[string]any{
			"code":        r.Code,
			"name":        r.Name,
			"other_names": store.Deref(r.OtherNames),
			"sex":         store.Deref(r.Sex),
			"title":       store.Deref(r.Title),
			"start_date":  store.Deref(r.StartDate),
			"end_date":    store.Deref(r.EndDate),
			"corporate":   r.Corporate,
		}
	}

	query := `
UNWIND $rows AS row
MERGE (a:Agent {code: row.code})
SET a.name = row.name,
    a.other_names = row.other_names,
    a.sex = row.sex,
    a.title = row.title,
    a.start_date = row.start_date,
    a.end_date = row.end_date,
    a.corporate = row.corporate,
    a.last_exported = datetime()
`
	if err := c.write(ctx, query, map[string]any{"rows": batch}); err != nil {
		return errors.Wrap(err, "upserting agents")
	}
	return nil
}

// UpsertKeys links each legacy key to its agent. A key that moved to
// another agent loses its old edge.
func (c *Client) UpsertKeys(ctx context.Context, rows []store.KeyLinkRow) error {
	if len(rows) == 0 {
		return nil
	}
	batch := make([]map[string]any, len(rows))
	for i, r := range rows {
		batch[i] = map[string]any{
			"namespace": r.Namespace,
			"key":       r.Key,
			"code":      r.AgentCode,
			"source":    r.Source,
		}
	}

	query := `
UNWIND $rows AS row
MATCH (a:Agent {code: row.code})
MERGE (k:LegacyKey {namespace: row.namespace, key: row.key})
SET k.source = row.source
WITH k, a
OPTIONAL MATCH (k)-[old:RESOLVES_TO]->(other:Agent)
WHERE other <> a
DELETE old
MERGE (k)-[:RESOLVES_TO]->(a)
`
	if err := c.write(ctx, query, map[string]any{"rows": batch}); err != nil {
		return errors.Wrap(err, "upserting legacy keys")
	}
	return nil
}

func (c *Client) UpsertMemberships(ctx context.Context, rows []store.MembershipRow) error {
	if len(rows) == 0 {
		return nil
	}
	batch := make([]map[string]any, len(rows))
	for i, r := range rows {
		batch[i] = map[string]any{"member": r.Member, "corporate": r.Corporate}
	}

	query := `
UNWIND $rows AS row
MATCH (m:Agent {code: row.member})
MATCH (c:Agent {code: row.corporate})
MERGE (m)-[:MEMBER_OF]->(c)
`
	if err := c.write(ctx, query, map[string]any{"rows": batch}); err != nil {
		return errors.Wrap(err, "upserting memberships")
	}
	return nil
}
