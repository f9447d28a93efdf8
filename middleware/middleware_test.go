package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/vitalog/models"
	"github.com/cppla/vitalog/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWT() *utils.JWTManager {
	return utils.NewJWTManager("secret", "vitalog-api", "vitalog-client", time.Hour, nil)
}

func protectedRouter(jwtm *utils.JWTManager, blacklist *utils.TokenBlacklist) *gin.Engine {
	r := gin.New()
	r.Use(Trace())
	r.GET("/private", AuthRequired(jwtm, blacklist), func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"uid": ctx.GetUint(ContextUserIDKey)})
	})
	return r
}

func TestAuthRequired(t *testing.T) {
	jwtm := newJWT()
	blacklist := utils.NewTokenBlacklist(nil)
	r := protectedRouter(jwtm, blacklist)

	token, expiresAt, err := jwtm.Issue(models.User{ID: 4, Email: "a@example.com", SubscriptionTier: "free"})
	require.NoError(t, err)
	revoked, _, err := jwtm.Issue(models.User{ID: 5, Email: "b@example.com"})
	require.NoError(t, err)
	blacklist.Revoke(context.Background(), revoked, expiresAt)

	other := utils.NewJWTManager("other-secret", "vitalog-api", "vitalog-client", time.Hour, nil)
	forged, _, err := other.Issue(models.User{ID: 4})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing", "", http.StatusUnauthorized, "authorization header missing"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "invalid authorization header format"},
		{"empty token", "Bearer  ", http.StatusUnauthorized, "empty bearer token"},
		{"garbage", "Bearer not.a.jwt", http.StatusUnauthorized, "invalid or expired token"},
		{"wrong secret", "Bearer " + forged, http.StatusUnauthorized, "invalid or expired token"},
		{"revoked", "Bearer " + revoked, http.StatusUnauthorized, "token revoked"},
		{"valid", "Bearer " + token, http.StatusOK, `"uid":4`},
		{"lower-case scheme", "bearer " + token, http.StatusOK, `"uid":4`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
			if tt.status != http.StatusOK {
				assert.Contains(t, w.Body.String(), `"traceId":"`+w.Header().Get(RequestIDHeader)+`"`)
			}
		})
	}
}

func TestTrace(t *testing.T) {
	r := gin.New()
	r.Use(Trace())
	r.GET("/", func(ctx *gin.Context) { ctx.String(http.StatusOK, utils.TraceID(ctx)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 200))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiter(4).Handler())
	r.GET("/", func(ctx *gin.Context) { ctx.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	r := gin.New()
	r.Use(m.Handler())
	r.GET("/ping/:id", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Exporter()))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping/1", nil))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `vitalog_http_requests_total{method="GET",path="/ping/:id",status="200"} 1`)
}
