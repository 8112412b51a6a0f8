// Package mrabbitmq provides the connection hub backing the
// needs-report wake channel that the report worker consumes alongside
// its poll timer.
package mrabbitmq

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ecoci/ecoci/pkg/mlog"
)

// Connection is a lazily-initialized singleton rabbitmq channel.
type Connection struct {
	ConnectionStringSource string
	Logger                 mlog.Logger

	conn      *amqp.Connection
	channel   *amqp.Channel
	connected bool
}

// Connect dials rabbitmq and opens a single channel.
func (c *Connection) Connect(ctx context.Context) error {
	c.logger().Info("connecting to rabbitmq...")

	conn, err := amqp.Dial(c.ConnectionStringSource)
	if err != nil {
		c.logger().Errorf("failed to connect to rabbitmq: %v", err)
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		c.logger().Errorf("failed to open rabbitmq channel: %v", err)
		return err
	}

	c.logger().Info("connected to rabbitmq")

	c.conn = conn
	c.channel = ch
	c.connected = true

	return nil
}

// GetChannel returns the rabbitmq channel, connecting on first use.
func (c *Connection) GetChannel(ctx context.Context) (*amqp.Channel, error) {
	if !c.connected {
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
	}

	return c.channel, nil
}

// Close tears down the channel and connection.
func (c *Connection) Close() error {
	if c.channel != nil {
		_ = c.channel.Close()
	}

	if c.conn != nil {
		return c.conn.Close()
	}

	return nil
}

func (c *Connection) logger() mlog.Logger {
	if c.Logger == nil {
		return &mlog.NoneLogger{}
	}

	return c.Logger
}
