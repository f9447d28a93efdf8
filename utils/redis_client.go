package utils

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cppla/vitalog/config"
)

// NewRedis returns a client for the configured Redis, or nil when Redis is not configured.
// A failed ping is returned so the caller can decide whether to continue without it.
func NewRedis(cfg config.AppConfig) (*redis.Client, error) {
	if cfg.RedisHost == "" {
		return nil, nil
	}
	rc := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		return rc, err
	}
	return rc, nil
}
