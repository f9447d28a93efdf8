package utils

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultCacheTTL = 10 * time.Minute

// JSONCache stores JSON documents in Redis. With a nil client every call is a miss or no-op.
type JSONCache struct {
	rc     *redis.Client
	logger *zap.Logger
}

func NewJSONCache(rc *redis.Client, logger *zap.Logger) *JSONCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSONCache{rc: rc, logger: logger}
}

// GetJSON decodes the cached value for key into dst and reports whether it was found.
func (c *JSONCache) GetJSON(ctx context.Context, key string, dst interface{}) bool {
	if c == nil || c.rc == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	b, err := c.rc.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		c.logger.Warn("cache decode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// SetJSON marshals v and stores it; ttl <= 0 uses the default.
func (c *JSONCache) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if c == nil || c.rc == nil {
		return
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.rc.Set(ctx, key, b, ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidatePrefix deletes keys that match the given prefix using SCAN.
func (c *JSONCache) InvalidatePrefix(ctx context.Context, prefix string) {
	if c == nil || c.rc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var cursor uint64
	for i := 0; i < 10; i++ { // bounded rounds
		keys, cur, err := c.rc.Scan(ctx, cursor, prefix+"*", 1000).Result()
		if err != nil {
			c.logger.Warn("cache scan failed", zap.String("prefix", prefix), zap.Error(err))
			return
		}
		cursor = cur
		if len(keys) > 0 {
			pipe := c.rc.Pipeline()
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			_, _ = pipe.Exec(ctx)
		}
		if cursor == 0 {
			return
		}
	}
}
