package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedFeed wraps a Feed with a Redis read-through cache. Cache
// failures fall through to the underlying feed.
type CachedFeed struct {
	inner Feed
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCachedFeed creates a caching decorator around the given feed.
func NewCachedFeed(inner Feed, rdb *redis.Client, ttl time.Duration) *CachedFeed {
	return &CachedFeed{inner: inner, rdb: rdb, ttl: ttl}
}

func cacheKey(symbol string) string {
	return fmt.Sprintf("pricefeed:quote:%s", strings.ToUpper(symbol))
}

func (c *CachedFeed) Quote(ctx context.Context, symbol string) (*Quote, error) {
	key := cacheKey(symbol)

	raw, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		var q Quote
		if err := json.Unmarshal([]byte(raw), &q); err == nil {
			return &q, nil
		}
	} else if err != redis.Nil {
		slog.Warn("price cache read failed", "symbol", symbol, "error", err)
	}

	q, err := c.inner.Quote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(q); err == nil {
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			slog.Warn("price cache write failed", "symbol", symbol, "error", err)
		}
	}
	return q, nil
}
