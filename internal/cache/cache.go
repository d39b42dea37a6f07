// Package cache holds the Redis-backed caches. Every cache tolerates a nil client
// and then behaves as a permanent miss, so Redis stays optional.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores JSON-encoded values of type T under a key prefix.
type Cache[T any] struct {
	rc     *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a Cache. rc may be nil.
func New[T any](rc *redis.Client, prefix string, ttl time.Duration, logger *slog.Logger) *Cache[T] {
	return &Cache[T]{rc: rc, prefix: prefix, ttl: ttl, logger: logger}
}

// Key joins the prefix and parts with ':'
func (c *Cache[T]) Key(parts ...string) string {
	key := c.prefix
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// Enabled reports whether a Redis client is configured.
func (c *Cache[T]) Enabled() bool {
	return c != nil && c.rc != nil
}

// Get returns nil, nil on a miss.
func (c *Cache[T]) Get(ctx context.Context, key string) (*T, error) {
	if !c.Enabled() {
		return nil, nil
	}

	raw, err := c.rc.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	var row T
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}
	return &row, nil
}

func (c *Cache[T]) Set(ctx context.Context, key string, value *T) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}
	if err := c.rc.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Delete removes keys. Failures are logged and swallowed; stale entries expire with the TTL.
func (c *Cache[T]) Delete(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	if err := c.rc.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache delete failed", "keys", keys, "error", err)
	}
}

// NewRedisClient parses a redis:// URL and pings the server.
// An empty URL returns a nil client.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rc := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("redis connect error: %w", err)
	}
	return rc, nil
}
