package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a Redis-backed TTL cache for catalog lookups. It replaces the
// process-global lookup maps the surrounding layers used to keep: an explicit
// object with invalidation hooks, injected where needed.
type Cache struct {
	Rdb *redis.Client
	TTL time.Duration
}

const (
	commodityKeyPrefix = "catalog:commodity:"
	locationKeyPrefix  = "catalog:location:"
)

// DefaultTTL bounds staleness of catalog rows, which change rarely.
const DefaultTTL = 15 * time.Minute

func (c *Cache) ttl() time.Duration {
	if c.TTL > 0 {
		return c.TTL
	}
	return DefaultTTL
}

// get unmarshals the cached value into out; ok is false on miss or decode error.
func (c *Cache) get(ctx context.Context, key string, out interface{}) bool {
	if c == nil || c.Rdb == nil {
		return false
	}
	b, err := c.Rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(b, out) == nil
}

// set stores the value with TTL. Failures are ignored; the cache is advisory.
func (c *Cache) set(ctx context.Context, key string, v interface{}) {
	if c == nil || c.Rdb == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.Rdb.Set(ctx, key, b, c.ttl()).Err()
}

func (c *Cache) invalidate(ctx context.Context, key string) {
	if c == nil || c.Rdb == nil {
		return
	}
	_ = c.Rdb.Del(ctx, key).Err()
}

// InvalidateCommodity drops the cached row for ticker.
func (c *Cache) InvalidateCommodity(ctx context.Context, ticker string) {
	c.invalidate(ctx, commodityKeyPrefix+ticker)
}

// InvalidateLocation drops the cached row for locationID.
func (c *Cache) InvalidateLocation(ctx context.Context, locationID string) {
	c.invalidate(ctx, locationKeyPrefix+locationID)
}
