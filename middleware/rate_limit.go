package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/cppla/vitalog/utils"
)

const limiterIdleTTL = 5 * time.Minute

type rateLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rateLimiter
}

// NewRateLimiter allows perMinute requests per IP with a burst of half that.
func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{
		limit:    rate.Every(time.Minute / time.Duration(max(perMinute, 1))),
		burst:    max(perMinute/2, 1),
		limiters: make(map[string]*rateLimiter),
	}
}

// Handler applies a simple IP based rate limiter using a token bucket.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !rl.allow(ctx.ClientIP()) {
			utils.Error(ctx, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		ctx.Next()
	}
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for k, l := range rl.limiters {
		if now.After(l.expires) {
			delete(rl.limiters, k)
		}
	}

	l, ok := rl.limiters[key]
	if !ok {
		l = &rateLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = l
	}
	l.expires = now.Add(limiterIdleTTL)
	return l.limiter.Allow()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
