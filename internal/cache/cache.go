// Package cache implements the read-through cache (C11) and cache
// invalidator (C7) over Redis. Every operation is fail-soft: a cache error
// is logged (invalidation) or simply ignored (request path) rather than
// failing the caller.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/postal-converter-ja/internal/pkg/logger"
)

// invalidationScanCount is the batch size used while scanning for keys to
// invalidate after a successful ingestion run.
const invalidationScanCount = 500

// keyPrefix namespaces every cached key so invalidation can target the
// whole family with one scan.
const keyPrefix = "postal:"

// Cache wraps an optional Redis client; a nil client means the cache is not
// configured, and every method becomes a no-op.
type Cache struct {
	client *redis.Client
}

// New wraps client. Pass nil to represent an unconfigured cache.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// NewFromURL parses a redis:// URL and wraps the resulting client. An empty
// url returns an unconfigured (disabled) Cache.
func NewFromURL(url string) (*Cache, error) {
	if url == "" {
		return New(nil), nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return New(redis.NewClient(opts)), nil
}

// Enabled reports whether a backing client was configured.
func (c *Cache) Enabled() bool { return c != nil && c.client != nil }

// Get deserializes the value stored at key into dest, returning false on a
// miss or any cache error.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if !c.Enabled() {
		return false
	}
	payload, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		return false
	}
	return true
}

// SetWithTTL serializes value and stores it at key with the given TTL,
// ignoring any error.
func (c *Cache) SetWithTTL(ctx context.Context, key string, value interface{}, ttlSeconds int64) {
	if !c.Enabled() {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, payload, time.Duration(ttlSeconds)*time.Second).Err()
}

// Ping issues a PING against the backend, used by the readiness handler.
func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// InvalidateAll scans for every key under the postal: prefix in batches and
// deletes them, continuing until the cursor wraps to zero. Errors are
// logged but never returned: the next ingestion run will simply try again.
func (c *Cache) InvalidateAll(ctx context.Context) {
	if !c.Enabled() {
		return
	}

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, keyPrefix+"*", invalidationScanCount).Result()
		if err != nil {
			logger.Warn("cache: scan failed during invalidation", "error", err.Error())
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				logger.Warn("cache: delete failed during invalidation", "error", err.Error(), "batch_size", len(keys))
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

// ResolveState maps the cache's readiness into the `/ready` response's
// `cache` field: disabled when unconfigured, ok when reachable, error when
// unreachable but not required, or a failure when unreachable and required.
func ResolveState(enabled, pingOK, readyRequireCache bool) (state string, ready bool) {
	if !enabled {
		return "disabled", true
	}
	if pingOK {
		return "ok", true
	}
	if readyRequireCache {
		return "error", false
	}
	return "error", true
}
