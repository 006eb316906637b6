package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keeps geocoding answers in Redis. A nil *Cache caches nothing.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func cacheKey(address string) string {
	return "geocode:" + strings.ToLower(address)
}

// get never fails the lookup; Redis trouble only costs a geocoder call.
func (c *Cache) get(ctx context.Context, address string) (*Result, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, cacheKey(address)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("geocode cache read", "error", err)
		}
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, false
	}
	return &res, true
}

func (c *Cache) put(ctx context.Context, address string, res *Result) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(address), raw, c.ttl).Err(); err != nil {
		slog.Warn("geocode cache write", "error", err)
	}
}
