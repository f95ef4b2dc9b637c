// Package propagate rewrites the legacy keys left in the imported event
// tables with the canonical agent codes of the key mapping.
package propagate

import (
	"context"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"mpcereform/internal/agents"
	"mpcereform/internal/store"
)

type UnresolvedReference = agents.UnresolvedReference

// Target is a column holding one legacy key per row.
type Target struct {
	Column    store.Column
	Namespace agents.Namespace
}

// Entry is one (role text, key) pair attached to a parent row.
type Entry struct {
	ParentID int64
	Text     string
	Key      string
}

// FanIn is a text column summarising many agents per parent row as
// "<text> (<code>); <text> (<code>)".
type FanIn struct {
	Column    store.Column
	Namespace agents.Namespace
	Entries   []Entry
}

type Report struct {
	Column     string
	Updated    int
	Unresolved int
}

type Result struct {
	Reports    []Report
	Unresolved []UnresolvedReference
}

// Engine applies a frozen mapping. It never changes the mapping.
type Engine struct {
	lookup agents.Lookup
	log    *zap.SugaredLogger
}

func New(lookup agents.Lookup, log *zap.SugaredLogger) *Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Engine{lookup: lookup, log: log}
}

// Rewrite maps every non-empty value to its agent code. Values with no
// mapping are reported and set to NULL. Empty values are left alone.
func (e *Engine) Rewrite(t Target, values []store.ColumnValue) ([]store.ColumnValue, []UnresolvedReference) {
	var updates []store.ColumnValue
	var unresolved []UnresolvedReference

	for _, v := range values {
		if v.Value == nil {
			continue
		}
		key := strings.TrimSpace(*v.Value)
		if key == "" {
			continue
		}
		code, ok := e.lookup.Resolve(t.Namespace, key)
		if !ok {
			ref := e.unresolved(t.Column, t.Namespace, v.ID, key)
			unresolved = append(unresolved, ref)
			updates = append(updates, store.ColumnValue{ID: v.ID})
			continue
		}
		updates = append(updates, store.ColumnValue{ID: v.ID, Value: &code})
	}

	return updates, unresolved
}

// Collect builds the fan-in text per parent in first-seen parent order.
// Unresolved entries are reported and omitted; a repeated key within one
// parent keeps its first entry. A parent with nothing resolved gets NULL.
func (e *Engine) Collect(f FanIn) ([]store.ColumnValue, []UnresolvedReference) {
	var parents []int64
	parts := make(map[int64][]string)
	seen := make(map[int64]map[string]struct{})
	var unresolved []UnresolvedReference

	for _, entry := range f.Entries {
		key := strings.TrimSpace(entry.Key)
		if key == "" {
			continue
		}
		if _, known := seen[entry.ParentID]; !known {
			seen[entry.ParentID] = make(map[string]struct{})
			parents = append(parents, entry.ParentID)
		}
		if _, dup := seen[entry.ParentID][key]; dup {
			continue
		}
		seen[entry.ParentID][key] = struct{}{}

		code, ok := e.lookup.Resolve(f.Namespace, key)
		if !ok {
			unresolved = append(unresolved, e.unresolved(f.Column, f.Namespace, entry.ParentID, key))
			continue
		}
		parts[entry.ParentID] = append(parts[entry.ParentID], strings.TrimSpace(entry.Text)+" ("+code+")")
	}

	updates := make([]store.ColumnValue, 0, len(parents))
	for _, id := range parents {
		if len(parts[id]) == 0 {
			updates = append(updates, store.ColumnValue{ID: id})
			continue
		}
		text := strings.Join(parts[id], "; ")
		updates = append(updates, store.ColumnValue{ID: id, Value: &text})
	}
	return updates, unresolved
}

// Run rewrites the targets in order, then writes the fan-in columns.
func (e *Engine) Run(ctx context.Context, db store.Columns, targets []Target, fanIns []FanIn) (*Result, error) {
	result := &Result{}

	for _, t := range targets {
		values, err := db.ReadColumn(ctx, t.Column)
		if err != nil {
			return result, errors.Wrapf(err, "reading %s", t.Column)
		}
		updates, unresolved := e.Rewrite(t, values)
		if err := db.UpdateColumn(ctx, t.Column, updates); err != nil {
			return result, errors.Wrapf(err, "updating %s", t.Column)
		}
		result.add(t.Column, updates, unresolved)
		e.log.Infow("column propagated", "column", t.Column.String(),
			"resolved", len(updates)-len(unresolved), "unresolved", len(unresolved))
	}

	for _, f := range fanIns {
		updates, unresolved := e.Collect(f)
		if err := db.UpdateColumn(ctx, f.Column, updates); err != nil {
			return result, errors.Wrapf(err, "updating %s", f.Column)
		}
		result.add(f.Column, updates, unresolved)
		e.log.Infow("fan-in column written", "column", f.Column.String(),
			"parents", len(updates), "unresolved", len(unresolved))
	}

	return result, nil
}

func (r *Result) add(col store.Column, updates []store.ColumnValue, unresolved []UnresolvedReference) {
	r.Reports = append(r.Reports, Report{Column: col.String(), Updated: len(updates), Unresolved: len(unresolved)})
	r.Unresolved = append(r.Unresolved, unresolved...)
}

func (e *Engine) unresolved(col store.Column, ns agents.Namespace, id int64, key string) UnresolvedReference {
	ref := UnresolvedReference{
		Table:     col.Table,
		Column:    col.Name,
		Row:       strconv.FormatInt(id, 10),
		Namespace: ns,
		Key:       key,
	}
	e.log.Warnw("unresolved reference",
		"table", ref.Table, "column", ref.Column, "row", ref.Row,
		"namespace", string(ns), "key", key)
	return ref
}
