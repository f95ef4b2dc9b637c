// Package graph mirrors the resolved agents into Neo4j: one node per agent,
// one node per legacy key pointing at its agent, and the memberships of
// partnership clients. Every write is a MERGE, so exports can be repeated.
package graph

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type Client struct {
	driver   neo4j.DriverWithContext
	database string
}

func NewClient(ctx context.Context, uri, username, password, database string) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, errors.Wrap(err, "creating neo4j driver")
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, errors.Wrap(err, "verifying neo4j connectivity")
	}

	return &Client{driver: driver, database: database}, nil
}

func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.driver == nil {
		return nil
	}
	return c.driver.Close(ctx)
}

func (c *Client) EnsureIndexes(ctx context.Context) error {
	statements := []string{
		`CREATE CONSTRAINT agent_unique_code IF NOT EXISTS
FOR (a:Agent) REQUIRE a.code IS UNIQUE`,
		`CREATE CONSTRAINT legacy_key_unique IF NOT EXISTS
FOR (k:LegacyKey) REQUIRE (k.namespace, k.key) IS UNIQUE`,
		`CREATE INDEX agent_name IF NOT EXISTS FOR (a:Agent) ON (a.name)`,
	}

	for _, stmt := range statements {
		if err := c.write(ctx, stmt, nil); err != nil {
			return errors.Wrap(err, "ensuring indexes")
		}
	}

	return nil
}
