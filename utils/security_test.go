package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	hash, err := h.Hash("Passw0rd")
	require.NoError(t, err)
	assert.NotEqual(t, "Passw0rd", hash)
	assert.True(t, h.Verify(hash, "Passw0rd"))
	assert.False(t, h.Verify(hash, "passw0rd"))
	assert.False(t, h.Verify("not-a-hash", "Passw0rd"))

	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).Cost)
}

func TestSanitizeText(t *testing.T) {
	tests := map[string]string{
		"plain":                           "plain",
		"  padded  ":                      "padded",
		"<b>bold</b> & co":                "bold & co",
		`<a href="javascript:x()">hi</a>`: "hi",
		"<script>alert(1)</script>":       "",
		`say "hi" it's fine`:              `say "hi" it's fine`,

		"&lt;script&gt;alert(1)&lt;/script&gt;":          "",
		"&lt;img src=x onerror=alert(1)&gt;":             "",
		"&amp;lt;script&amp;gt;x&amp;lt;/script&amp;gt;": "",
		"<<b>img src=x onerror=alert(1)>":                "&lt;img src=x onerror=alert(1)&gt;",
		"3 < 5":                                          "3 &lt; 5",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeText(in), in)
	}
}

func TestTokenBlacklistInMemory(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	b := NewTokenBlacklist(nil)
	b.now = func() time.Time { return now }

	b.Revoke(ctx, "live", now.Add(time.Minute))
	b.Revoke(ctx, "already-expired", now.Add(-time.Minute))
	assert.True(t, b.IsRevoked(ctx, "live"))
	assert.False(t, b.IsRevoked(ctx, "already-expired"))
	assert.False(t, b.IsRevoked(ctx, "never-seen"))

	now = now.Add(2 * time.Minute)
	assert.False(t, b.IsRevoked(ctx, "live"))
}

func TestJSONCacheWithoutRedis(t *testing.T) {
	ctx := context.Background()
	c := NewJSONCache(nil, nil)
	c.SetJSON(ctx, "k", map[string]int{"a": 1}, 0)

	var out map[string]int
	assert.False(t, c.GetJSON(ctx, "k", &out))
	c.InvalidatePrefix(ctx, "k")

	var nilCache *JSONCache
	assert.False(t, nilCache.GetJSON(ctx, "k", &out))
}
