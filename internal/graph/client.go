package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Statement is one parameterized Cypher query
type Statement struct {
	Query  string
	Params map[string]any
}

// Runner executes statements in a single write transaction
type Runner interface {
	ExecuteWrite(ctx context.Context, stmts ...Statement) error
}

// Config holds the Neo4j connection parameters
type Config struct {
	URI               string
	Username          string
	Password          string
	Database          string
	MaxConnectionPool int
	ConnectTimeout    time.Duration
}

// Client wraps a Neo4j driver with write access
type Client struct {
	driver   neo4j.DriverWithContext
	database string
}

var _ Runner = (*Client)(nil)

// NewClient creates the driver and verifies connectivity
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("neo4j uri is required")
	}
	auth := neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(conf *neo4j.Config) {
		if cfg.MaxConnectionPool > 0 {
			conf.MaxConnectionPoolSize = cfg.MaxConnectionPool
		}
		if cfg.ConnectTimeout > 0 {
			conf.SocketConnectTimeout = cfg.ConnectTimeout
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j unreachable: %w", err)
	}
	return &Client{driver: driver, database: cfg.Database}, nil
}

// Close closes the driver
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.driver == nil {
		return nil
	}
	return c.driver.Close(ctx)
}

// ExecuteWrite runs all statements in one managed write transaction
func (c *Client) ExecuteWrite(ctx context.Context, stmts ...Statement) error {
	sess := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database, AccessMode: neo4j.AccessModeWrite})
	defer sess.Close(ctx)

	_, err := sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, st := range stmts {
			res, err := tx.Run(ctx, st.Query, st.Params)
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to execute write: %w", err)
	}
	return nil
}
