package graph

import (
	"context"

	"github.com/cockroachdb/errors"

	"mpcereform/internal/store"
)

const exportBatchSize = 500

// Writer is the graph side of an export.
type Writer interface {
	EnsureIndexes(ctx context.Context) error
	UpsertAgents(ctx context.Context, rows []store.AgentRow) error
	UpsertKeys(ctx context.Context, rows []store.KeyLinkRow) error
	UpsertMemberships(ctx context.Context, rows []store.MembershipRow) error
	RemoveStaleAgents(ctx context.Context, currentCodes []string) (int64, error)
}

// Source is the target schema side of an export.
type Source interface {
	ListAgents(ctx context.Context) ([]store.AgentRow, error)
	ListKeyLinks(ctx context.Context) ([]store.KeyLinkRow, error)
	ListMemberships(ctx context.Context) ([]store.MembershipRow, error)
}

type ExportResult struct {
	Agents      int
	Keys        int
	Memberships int
	Removed     int64
}

// Export writes the agents, their legacy keys and memberships, then removes
// agents that no longer exist in the target schema.
func Export(ctx context.Context, client Writer, db Source) (*ExportResult, error) {
	agents, err := db.ListAgents(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing agents")
	}
	keys, err := db.ListKeyLinks(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing key links")
	}
	memberships, err := db.ListMemberships(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing memberships")
	}

	if err := client.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	if err := inBatches(agents, func(batch []store.AgentRow) error { return client.UpsertAgents(ctx, batch) }); err != nil {
		return nil, err
	}
	if err := inBatches(keys, func(batch []store.KeyLinkRow) error { return client.UpsertKeys(ctx, batch) }); err != nil {
		return nil, err
	}
	if err := inBatches(memberships, func(batch []store.MembershipRow) error { return client.UpsertMemberships(ctx, batch) }); err != nil {
		return nil, err
	}

	codes := make([]string, len(agents))
	for i, a := range agents {
		codes[i] = a.Code
	}
	removed, err := client.RemoveStaleAgents(ctx, codes)
	if err != nil {
		return nil, err
	}

	return &ExportResult{
		Agents:      len(agents),
		Keys:        len(keys),
		Memberships: len(memberships),
		Removed:     removed,
	}, nil
}

func inBatches[T any](rows []T, write func([]T) error) error {
	for start := 0; start < len(rows); start += exportBatchSize {
		end := min(start+exportBatchSize, len(rows))
		if err := write(rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}
