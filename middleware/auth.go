package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/vitalog/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextTokenKey stores the raw bearer token.
	ContextTokenKey = "token"
	// ContextTokenExpiryKey stores the token's expiry as time.Time.
	ContextTokenExpiryKey = "token_expires_at"
)

// TokenValidator checks a bearer token and returns its claims.
type TokenValidator interface {
	Validate(token string) (*utils.Claims, error)
}

// RevocationChecker reports whether a token was revoked by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) bool
}

// AuthRequired ensures the request is authenticated via JWT.
func AuthRequired(tokens TokenValidator, revoked RevocationChecker) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, "authorization header missing")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, "empty bearer token")
			return
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		if revoked != nil && revoked.IsRevoked(ctx.Request.Context(), tokenString) {
			utils.Error(ctx, http.StatusUnauthorized, "token revoked")
			return
		}

		var expiresAt time.Time
		if claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextTokenKey, tokenString)
		ctx.Set(ContextTokenExpiryKey, expiresAt)
		ctx.Next()
	}
}
