// Package redis backs the agent liveness cache and the
// disk-pressure cleanup broadcast with a shared redis
// connection, keeping both off the postgres hot path.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ecoci/ecoci/pkg/mredis"
)

const livenessKeyPrefix = "crater:agent:heartbeat:"

// LivenessCache records agent heartbeats with a TTL equal to the
// staleness threshold, so a missed heartbeat expires the key on its
// own instead of requiring a sweep.
type LivenessCache struct {
	conn *mredis.Connection
	ttl  time.Duration
}

func NewLivenessCache(conn *mredis.Connection, ttl time.Duration) *LivenessCache {
	return &LivenessCache{conn: conn, ttl: ttl}
}

// Touch marks name alive for ttl.
func (l *LivenessCache) Touch(ctx context.Context, name string) error {
	client, err := l.conn.GetClient(ctx)
	if err != nil {
		return err
	}

	return client.Set(ctx, livenessKeyPrefix+name, time.Now().UTC().Format(time.RFC3339), l.ttl).Err()
}

// Alive reports whether name has a live heartbeat key.
func (l *LivenessCache) Alive(ctx context.Context, name string) (bool, error) {
	client, err := l.conn.GetClient(ctx)
	if err != nil {
		return false, err
	}

	_, err = client.Get(ctx, livenessKeyPrefix+name).Result()
	if err == redis.Nil {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}
