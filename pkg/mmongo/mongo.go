// Package mmongo provides the connection hub backing the append-only
// report_runs audit collection: one document per report generation
// attempt, independent of the relational experiment/result tables.
package mmongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ecoci/ecoci/pkg/mlog"
)

// Connection is a lazily-initialized singleton mongo client.
type Connection struct {
	ConnectionStringSource string
	Database               string
	Logger                 mlog.Logger

	client    *mongo.Client
	connected bool
}

// Connect dials mongo and pings it once to fail fast on bad config.
func (c *Connection) Connect(ctx context.Context) error {
	c.logger().Info("connecting to mongodb...")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.ConnectionStringSource))
	if err != nil {
		c.logger().Errorf("failed to connect to mongodb: %v", err)
		return err
	}

	if err := client.Ping(ctx, nil); err != nil {
		c.logger().Errorf("mongodb ping failed: %v", err)
		return err
	}

	c.logger().Info("connected to mongodb")

	c.client = client
	c.connected = true

	return nil
}

// GetDatabase returns the configured database handle, connecting on
// first use.
func (c *Connection) GetDatabase(ctx context.Context) (*mongo.Database, error) {
	if !c.connected {
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
	}

	return c.client.Database(c.Database), nil
}

func (c *Connection) logger() mlog.Logger {
	if c.Logger == nil {
		return &mlog.NoneLogger{}
	}

	return c.Logger
}
