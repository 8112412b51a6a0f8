// Package mredis provides the connection hub C4's agent liveness
// cache and C7's disk-pressure broadcast sit on top of.
package mredis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/ecoci/ecoci/pkg/mlog"
)

// Connection is a lazily-initialized singleton redis client.
type Connection struct {
	ConnectionStringSource string
	Logger                 mlog.Logger

	client    *redis.Client
	connected bool
}

// Connect dials redis and pings it once to fail fast on bad config.
func (c *Connection) Connect(ctx context.Context) error {
	c.logger().Info("connecting to redis...")

	opts, err := redis.ParseURL(c.ConnectionStringSource)
	if err != nil {
		return err
	}

	client := redis.NewClient(opts)

	if _, err := client.Ping(ctx).Result(); err != nil {
		c.logger().Errorf("redis ping failed: %v", err)
		return err
	}

	c.logger().Info("connected to redis")

	c.client = client
	c.connected = true

	return nil
}

// GetClient returns the redis client, connecting on first use.
func (c *Connection) GetClient(ctx context.Context) (*redis.Client, error) {
	if !c.connected {
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
	}

	return c.client, nil
}

func (c *Connection) logger() mlog.Logger {
	if c.Logger == nil {
		return &mlog.NoneLogger{}
	}

	return c.Logger
}
