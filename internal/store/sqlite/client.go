package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"

	"mpcereform/internal/store"
	"mpcereform/internal/store/sqlstore"

	_ "modernc.org/sqlite"
)

var _ store.Store = (*Client)(nil)

// Attach names the database files mounted as the legacy and target
// schemas. An empty path mounts an in-memory database.
type Attach struct {
	Source string
	Target string
}

// Client keeps a single connection so that the attached schemas stay
// visible to every statement.
type Client struct {
	*sqlstore.DB
}

func New(ctx context.Context, dsn string, attach Attach) (*Client, error) {
	driverDSN, err := parseDSN(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "parsing sqlite DSN")
	}

	db, err := sql.Open("sqlite", driverDSN)
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite database")
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "pinging sqlite")
	}

	pragmas := []string{
		"PRAGMA busy_timeout = 30000;",
		"PRAGMA foreign_keys = ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "setting pragma %q", pragma)
		}
	}

	mounts := []struct{ path, schema string }{
		{attach.Source, store.SourceSchema},
		{attach.Target, store.TargetSchema},
	}
	for _, m := range mounts {
		path := m.path
		if path == "" {
			path = ":memory:"
		}
		if _, err := db.ExecContext(ctx, "ATTACH DATABASE ? AS "+m.schema, path); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "attaching %s as %s", path, m.schema)
		}
	}

	return &Client{DB: sqlstore.New(sqlx.NewDb(db, "sqlite"), sqlbuilder.SQLite)}, nil
}

func (c *Client) SourceExists(ctx context.Context) (bool, error) {
	n, err := c.tableCount(ctx, store.SourceSchema)
	return n > 0, err
}

func (c *Client) TargetExists(ctx context.Context) (bool, error) {
	n, err := c.tableCount(ctx, store.TargetSchema)
	return n > 0, err
}

func (c *Client) DropTarget(ctx context.Context) error {
	var tables []string
	query := "SELECT name FROM " + store.TargetSchema + ".sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'"
	if err := c.SQL().SelectContext(ctx, &tables, query); err != nil {
		return errors.Wrap(err, "listing target tables")
	}
	for _, table := range tables {
		if _, err := c.SQL().ExecContext(ctx, `DROP TABLE IF EXISTS `+store.TargetSchema+`."`+table+`"`); err != nil {
			return errors.Wrapf(err, "dropping %s", table)
		}
	}
	return nil
}

func (c *Client) CreateTarget(ctx context.Context) error {
	return c.CreateTargetTables(ctx)
}

// CreateSource creates empty legacy tables in the source schema.
func (c *Client) CreateSource(ctx context.Context) error {
	return c.CreateSourceTables(ctx)
}

func (c *Client) tableCount(ctx context.Context, schema string) (int64, error) {
	var n int64
	query := "SELECT COUNT(*) FROM " + schema + ".sqlite_master WHERE type = 'table'"
	if err := c.SQL().GetContext(ctx, &n, query); err != nil {
		return 0, errors.Wrapf(err, "inspecting schema %s", schema)
	}
	return n, nil
}
