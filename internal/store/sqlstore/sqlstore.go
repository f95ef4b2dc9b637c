// Package sqlstore implements the SQL shared by the store backends. Queries
// are built with go-sqlbuilder in the backend's flavor and scanned with sqlx.
package sqlstore

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
)

const insertBatch = 200

type DB struct {
	db     *sqlx.DB
	flavor sqlbuilder.Flavor
}

func New(db *sqlx.DB, flavor sqlbuilder.Flavor) *DB {
	return &DB{db: db, flavor: flavor}
}

func (d *DB) SQL() *sqlx.DB { return d.db }

func (d *DB) Flavor() sqlbuilder.Flavor { return d.flavor }

func (d *DB) Close(ctx context.Context) error {
	return d.db.Close()
}

// inTx runs fn in a transaction, rolling back when fn fails.
func (d *DB) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}

// insertRows writes rows of a db-tagged struct type in batches inside one
// transaction and returns the number of rows written.
func insertRows[T any](ctx context.Context, d *DB, table string, rows []T, ignoreDuplicates bool) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	s := sqlbuilder.NewStruct(new(T)).For(d.flavor)

	var written int64
	err := d.inTx(ctx, func(tx *sqlx.Tx) error {
		for start := 0; start < len(rows); start += insertBatch {
			end := min(start+insertBatch, len(rows))
			values := make([]any, 0, end-start)
			for i := start; i < end; i++ {
				values = append(values, &rows[i])
			}

			var ib *sqlbuilder.InsertBuilder
			if ignoreDuplicates {
				ib = s.InsertIgnoreInto(table, values...)
			} else {
				ib = s.InsertInto(table, values...)
			}
			query, args := ib.Build()
			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return errors.Wrapf(err, "inserting into %s", table)
			}
			if n, err := res.RowsAffected(); err == nil {
				written += n
			}
		}
		return nil
	})
	return written, err
}

// coalesced selects text columns with NULL read as the empty string.
func coalesced(columns ...string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = "COALESCE(" + c + ", '') AS " + c
	}
	return out
}
