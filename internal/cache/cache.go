package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is a thin gateway over Redis. It is always an optimization and
// never a correctness dependency: every failure degrades to a miss or a
// no-op and is only logged.
type Cache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// New builds the cache gateway with a default entry TTL.
func New(client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// Key builds a deterministic cache key from an operation tag and its
// literal inputs.
func Key(op string, parts ...string) string {
	return op + ":" + strings.Join(parts, "|")
}

// Get returns the cached value and whether it was present. Failures
// degrade to a miss.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return val, true
}

// Set stores a value under the default TTL. Failures degrade to a no-op.
func (c *Cache) Set(ctx context.Context, key, value string) {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete removes a key. Failures degrade to a no-op.
func (c *Cache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
	}
}

// Clear flushes the entire underlying store, not just this
// application's keys. Used by the data-loading scripts only.
func (c *Cache) Clear(ctx context.Context) {
	if err := c.client.FlushAll(ctx).Err(); err != nil {
		c.logger.Warn("cache clear failed", zap.Error(err))
	}
}
