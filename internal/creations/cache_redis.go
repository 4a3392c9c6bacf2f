package creations

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"quickai-backend/internal/shared/telemetry"
)

const (
	feedCacheKey = "feed:published"
	feedCacheTTL = 60 * time.Second
)

// FeedCache caches the published-images feed in Redis. It is a read-through
// cache: misses and Redis failures fall back to the repo, and any mutation
// of publish state or likes invalidates the key.
type FeedCache struct {
	RDB *redis.Client
	TTL time.Duration
}

// NewFeedCache constructs a FeedCache with the default TTL.
func NewFeedCache(rdb *redis.Client) *FeedCache {
	return &FeedCache{RDB: rdb, TTL: feedCacheTTL}
}

// Get returns the cached feed, or ok=false on miss or error.
func (c *FeedCache) Get(ctx context.Context) ([]Creation, bool) {
	if c == nil || c.RDB == nil {
		return nil, false
	}
	raw, err := c.RDB.Get(ctx, feedCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			telemetry.Warn("feed_cache.get_failed", map[string]any{"error": err.Error()})
		}
		return nil, false
	}
	var list []Creation
	if err := json.Unmarshal(raw, &list); err != nil {
		telemetry.Warn("feed_cache.decode_failed", map[string]any{"error": err.Error()})
		return nil, false
	}
	return list, true
}

// Set stores the feed with the configured TTL; failures are logged only.
func (c *FeedCache) Set(ctx context.Context, list []Creation) {
	if c == nil || c.RDB == nil {
		return
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return
	}
	ttl := c.TTL
	if ttl <= 0 {
		ttl = feedCacheTTL
	}
	if err := c.RDB.Set(ctx, feedCacheKey, raw, ttl).Err(); err != nil {
		telemetry.Warn("feed_cache.set_failed", map[string]any{"error": err.Error()})
	}
}

// Invalidate drops the cached feed.
func (c *FeedCache) Invalidate(ctx context.Context) {
	if c == nil || c.RDB == nil {
		return
	}
	if err := c.RDB.Del(ctx, feedCacheKey).Err(); err != nil {
		telemetry.Warn("feed_cache.del_failed", map[string]any{"error": err.Error()})
	}
}
