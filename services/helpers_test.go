package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cppla/vitalog/models"
	"github.com/cppla/vitalog/store/storetest"
	"github.com/cppla/vitalog/utils"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }

// memoryCache is an in-process JSONCacher and CacheInvalidator.
type memoryCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidated []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) GetJSON(ctx context.Context, key string, dst interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[key]
	if !ok {
		return false
	}
	return json.Unmarshal(b, dst) == nil
}

func (c *memoryCache) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.entries[key] = b
	c.mu.Unlock()
}

func (c *memoryCache) InvalidatePrefix(ctx context.Context, prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, prefix)
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

func (c *memoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// countingCheckins records how often the list query runs.
type countingCheckins struct {
	*storetest.CheckinStore
	mu    sync.Mutex
	lists int
}

func (c *countingCheckins) ListSince(ctx context.Context, userID uint, since time.Time) ([]models.CheckinRecord, error) {
	c.mu.Lock()
	c.lists++
	c.mu.Unlock()
	return c.CheckinStore.ListSince(ctx, userID, since)
}

func newAuthService() (*AuthService, *storetest.UserStore, *utils.JWTManager, *utils.TokenBlacklist) {
	users := storetest.NewUserStore()
	jwtm := utils.NewJWTManager("test-secret", "vitalog-api", "vitalog-client", 7*24*time.Hour, clock)
	blacklist := utils.NewTokenBlacklist(nil)
	return NewAuthService(users, utils.NewBcryptHasher(bcrypt.MinCost), jwtm, blacklist), users, jwtm, blacklist
}

func newCheckinService() (*CheckinService, *storetest.CheckinStore, *memoryCache) {
	repo := storetest.NewCheckinStore()
	cache := newMemoryCache()
	return NewCheckinService(repo, time.UTC, clock, cache), repo, cache
}
