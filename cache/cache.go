package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is applied when no TTL is configured.
const DefaultTTL = 300 * time.Second

// Cache stores JSON-serialized values in Redis with a fixed default TTL.
//
// All errors from Redis and from serialization are swallowed and logged:
// Get reports a miss, Set and Del return nothing. Callers must always be
// prepared to fall through to the system of record.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a Cache over client. ttl <= 0 falls back to [DefaultTTL];
// a nil logger falls back to [slog.Default].
func New(client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// TTL returns the default entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Set serializes value and stores it under key with the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache set: marshal failed", "key", key, "err", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", "key", key, "err", err)
	}
}

// Get loads key into dest. It returns false on a miss, on any Redis
// error, or when the stored blob does not unmarshal into dest.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache get failed", "key", key, "err", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("cache get: unmarshal failed", "key", key, "err", err)
		return false
	}
	return true
}

// Del removes key. Deleting an absent key is a no-op.
func (c *Cache) Del(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("cache del failed", "key", key, "err", err)
	}
}
