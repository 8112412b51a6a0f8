package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/ecoci/ecoci/pkg/mredis"
)

const cleanupChannel = "crater:diskwatch:cleanup"

// CleanupBroadcaster publishes and subscribes to the disk watchdog's
// "cleanup requested" signal so every worker goroutine across every
// agent process observes the same tick, not just the one that sampled
// free space.
type CleanupBroadcaster struct {
	conn *mredis.Connection
}

func NewCleanupBroadcaster(conn *mredis.Connection) *CleanupBroadcaster {
	return &CleanupBroadcaster{conn: conn}
}

// Broadcast announces a cleanup tick to every subscriber.
func (b *CleanupBroadcaster) Broadcast(ctx context.Context) error {
	client, err := b.conn.GetClient(ctx)
	if err != nil {
		return err
	}

	return client.Publish(ctx, cleanupChannel, "1").Err()
}

// Subscribe returns a channel of cleanup signals; the caller's worker
// loop selects on it alongside its own ticker.
func (b *CleanupBroadcaster) Subscribe(ctx context.Context) (<-chan *redis.Message, func() error, error) {
	client, err := b.conn.GetClient(ctx)
	if err != nil {
		return nil, nil, err
	}

	sub := client.Subscribe(ctx, cleanupChannel)

	return sub.Channel(), sub.Close, nil
}
