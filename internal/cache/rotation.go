// internal/cache/rotation.go
package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jguerrero45/dashboard-insights/internal/config"
)

// MemoryRotation is a process-local rotation counter. Each call to Next
// returns the previous value plus one.
type MemoryRotation struct {
	n atomic.Uint64
}

func NewMemoryRotation() *MemoryRotation {
	return &MemoryRotation{}
}

func (m *MemoryRotation) Next(ctx context.Context) (uint64, error) {
	return m.n.Add(1), nil
}

// RedisRotation keeps the counter in Redis so every replica rotates through
// the same sequence.
type RedisRotation struct {
	client *redis.Client
	key    string
}

func NewRedisRotation(client *redis.Client, key string) *RedisRotation {
	return &RedisRotation{client: client, key: key}
}

func (r *RedisRotation) Next(ctx context.Context) (uint64, error) {
	n, err := r.client.Incr(ctx, r.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to advance rotation counter: %w", err)
	}
	return uint64(n), nil
}

// Connect opens a Redis client and checks it with PING.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}
