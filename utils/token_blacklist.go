package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist remembers revoked tokens until they would have expired anyway.
// Redis is used when available; otherwise entries live in process memory.
type TokenBlacklist struct {
	rc      *redis.Client
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewTokenBlacklist(rc *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{
		rc:      rc,
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "jwt:blacklist:" + hex.EncodeToString(sum[:])
}

// Revoke blacklists token until expiresAt.
func (b *TokenBlacklist) Revoke(ctx context.Context, token string, expiresAt time.Time) {
	ttl := expiresAt.Sub(b.now())
	if ttl <= 0 {
		return
	}
	key := blacklistKey(token)
	if b.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := b.rc.Set(ctx, key, "1", ttl).Err(); err == nil {
			return
		}
	}
	b.mu.Lock()
	b.entries[key] = expiresAt
	b.mu.Unlock()
}

// IsRevoked reports whether token was revoked. Redis errors fail open.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, token string) bool {
	key := blacklistKey(token)
	if b.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if n, err := b.rc.Exists(ctx, key).Result(); err == nil && n > 0 {
			return true
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	expiresAt, ok := b.entries[key]
	if !ok {
		return false
	}
	if !b.now().Before(expiresAt) {
		delete(b.entries, key)
		return false
	}
	return true
}
