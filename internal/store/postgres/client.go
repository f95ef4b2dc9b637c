package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"mpcereform/internal/store"
	"mpcereform/internal/store/sqlstore"
)

var _ store.Store = (*Client)(nil)

// Client talks to a PostgreSQL database where the legacy and target
// databases are schemas of one catalog.
type Client struct {
	*sqlstore.DB
	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Client, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "creating postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "pinging postgres")
	}
	db := sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx")
	return &Client{DB: sqlstore.New(db, sqlbuilder.PostgreSQL), pool: pool}, nil
}

func (c *Client) Close(ctx context.Context) error {
	err := c.DB.Close(ctx)
	c.pool.Close()
	return err
}

func (c *Client) SourceExists(ctx context.Context) (bool, error) {
	return c.schemaExists(ctx, store.SourceSchema)
}

func (c *Client) TargetExists(ctx context.Context) (bool, error) {
	return c.schemaExists(ctx, store.TargetSchema)
}

func (c *Client) DropTarget(ctx context.Context) error {
	if _, err := c.SQL().ExecContext(ctx, "DROP SCHEMA IF EXISTS "+store.TargetSchema+" CASCADE"); err != nil {
		return errors.Wrap(err, "dropping target schema")
	}
	return nil
}

func (c *Client) CreateTarget(ctx context.Context) error {
	if _, err := c.SQL().ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+store.TargetSchema); err != nil {
		return errors.Wrap(err, "creating target schema")
	}
	return c.CreateTargetTables(ctx)
}

// CreateSource creates an empty legacy schema.
func (c *Client) CreateSource(ctx context.Context) error {
	if _, err := c.SQL().ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+store.SourceSchema); err != nil {
		return errors.Wrap(err, "creating source schema")
	}
	return c.CreateSourceTables(ctx)
}

func (c *Client) schemaExists(ctx context.Context, schema string) (bool, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From("information_schema.schemata")
	sb.Where(sb.Equal("schema_name", schema))
	query, args := sb.Build()

	var n int64
	if err := c.SQL().GetContext(ctx, &n, query, args...); err != nil {
		return false, errors.Wrapf(err, "inspecting schema %s", schema)
	}
	return n > 0, nil
}
