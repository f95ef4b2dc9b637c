package sqlstore

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"mpcereform/internal/store"
)

func (d *DB) ReadColumn(ctx context.Context, col store.Column) ([]store.ColumnValue, error) {
	sb := d.flavor.NewSelectBuilder()
	sb.Select(col.IDColumn+" AS id", col.Name+" AS value")
	sb.From(col.Table)
	sb.OrderBy(col.IDColumn)
	query, args := sb.Build()

	var values []store.ColumnValue
	if err := d.db.SelectContext(ctx, &values, query, args...); err != nil {
		return nil, errors.Wrapf(err, "reading %s", col)
	}
	return values, nil
}

// UpdateColumn writes every value in one transaction. A nil value sets the
// cell to NULL.
func (d *DB) UpdateColumn(ctx context.Context, col store.Column, values []store.ColumnValue) error {
	if len(values) == 0 {
		return nil
	}
	return d.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, v := range values {
			ub := d.flavor.NewUpdateBuilder()
			ub.Update(col.Table)
			ub.Set(ub.Assign(col.Name, v.Value))
			ub.Where(ub.Equal(col.IDColumn, v.ID))
			query, args := ub.Build()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return errors.Wrapf(err, "updating %s row %d", col, v.ID)
			}
		}
		return nil
	})
}
