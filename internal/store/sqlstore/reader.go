package sqlstore

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"

	"mpcereform/internal/store"
)

var agentColumns = []string{
	"agent_code", "name", "other_names", "sex", "title", "designation", "status",
	"start_date", "end_date", "notes", "corporate_entity",
}

var keyColumns = []string{"namespace", "source_key", "agent_code", "source"}

func (d *DB) Count(ctx context.Context, table string) (int64, error) {
	sb := d.flavor.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From(table)
	query, args := sb.Build()

	var n int64
	if err := d.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, errors.Wrapf(err, "counting %s", table)
	}
	return n, nil
}

func (d *DB) CountCorporateAgents(ctx context.Context) (int64, error) {
	sb := d.flavor.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From(store.Target("agent"))
	sb.Where(sb.Equal("corporate_entity", true))
	query, args := sb.Build()

	var n int64
	if err := d.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, errors.Wrap(err, "counting corporate agents")
	}
	return n, nil
}

func (d *DB) CountKeysByNamespace(ctx context.Context) (map[string]int64, error) {
	sb := d.flavor.NewSelectBuilder()
	sb.Select("namespace", "COUNT(*) AS n")
	sb.From(store.Target("agent_key"))
	sb.GroupBy("namespace")
	query, args := sb.Build()

	var rows []struct {
		Namespace string `db:"namespace"`
		N         int64  `db:"n"`
	}
	if err := d.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "counting mapped keys")
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Namespace] = r.N
	}
	return counts, nil
}

func (d *DB) GetAgent(ctx context.Context, code string) (*store.AgentRow, error) {
	sb := d.flavor.NewSelectBuilder()
	sb.Select(agentColumns...)
	sb.From(store.Target("agent"))
	sb.Where(sb.Equal("agent_code", code))
	query, args := sb.Build()

	var agent store.AgentRow
	if err := d.db.GetContext(ctx, &agent, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(store.ErrNotFound, "agent %s", code)
		}
		return nil, errors.Wrapf(err, "getting agent %s", code)
	}
	return &agent, nil
}

func (d *DB) ResolveKey(ctx context.Context, namespace, key string) (*store.KeyLinkRow, error) {
	sb := d.flavor.NewSelectBuilder()
	sb.Select(keyColumns...)
	sb.From(store.Target("agent_key"))
	sb.Where(sb.Equal("namespace", namespace), sb.Equal("source_key", key))
	query, args := sb.Build()

	var link store.KeyLinkRow
	if err := d.db.GetContext(ctx, &link, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(store.ErrNotFound, "%s key %s", namespace, key)
		}
		return nil, errors.Wrapf(err, "resolving %s key %s", namespace, key)
	}
	return &link, nil
}

func (d *DB) KeysForAgent(ctx context.Context, code string) ([]store.KeyLinkRow, error) {
	sb := d.flavor.NewSelectBuilder()
	sb.Select(keyColumns...)
	sb.From(store.Target("agent_key"))
	sb.Where(sb.Equal("agent_code", code))
	sb.OrderBy("namespace", "source_key")
	query, args := sb.Build()

	var links []store.KeyLinkRow
	if err := d.db.SelectContext(ctx, &links, query, args...); err != nil {
		return nil, errors.Wrapf(err, "listing keys of %s", code)
	}
	return links, nil
}

// SearchAgents matches query case-insensitively against names and other
// names.
func (d *DB) SearchAgents(ctx context.Context, query string, limit int) ([]store.AgentRow, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"

	sb := d.flavor.NewSelectBuilder()
	sb.Select(agentColumns...)
	sb.From(store.Target("agent"))
	sb.Where(sb.Or(
		sb.Like("LOWER(name)", pattern),
		sb.Like("LOWER(other_names)", pattern),
	))
	sb.OrderBy("agent_code")
	sb.Limit(limit)
	q, args := sb.Build()

	var agents []store.AgentRow
	if err := d.db.SelectContext(ctx, &agents, q, args...); err != nil {
		return nil, errors.Wrapf(err, "searching agents for %q", query)
	}
	return agents, nil
}

func (d *DB) ListAgents(ctx context.Context) ([]store.AgentRow, error) {
	sb := d.flavor.NewSelectBuilder()
	sb.Select(agentColumns...)
	sb.From(store.Target("agent"))
	sb.OrderBy("agent_code")
	query, args := sb.Build()

	var agents []store.AgentRow
	if err := d.db.SelectContext(ctx, &agents, query, args...); err != nil {
		return nil, errors.Wrap(err, "listing agents")
	}
	return agents, nil
}

func (d *DB) ListKeyLinks(ctx context.Context) ([]store.KeyLinkRow, error) {
	sb := d.flavor.NewSelectBuilder()
	sb.Select(keyColumns...)
	sb.From(store.Target("agent_key"))
	sb.OrderBy("namespace", "source_key")
	query, args := sb.Build()

	var links []store.KeyLinkRow
	if err := d.db.SelectContext(ctx, &links, query, args...); err != nil {
		return nil, errors.Wrap(err, "listing key mapping")
	}
	return links, nil
}

func (d *DB) ListMemberships(ctx context.Context) ([]store.MembershipRow, error) {
	sb := d.flavor.NewSelectBuilder()
	sb.Select("member", "corporate_entity")
	sb.From(store.Target("is_member_of"))
	sb.OrderBy("member", "corporate_entity")
	query, args := sb.Build()

	var rows []store.MembershipRow
	if err := d.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "listing memberships")
	}
	return rows, nil
}
