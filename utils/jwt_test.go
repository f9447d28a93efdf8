package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/vitalog/models"
)

func TestJWTIssueAndValidate(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	m := NewJWTManager("secret", "vitalog-api", "vitalog-client", 10080*time.Minute, func() time.Time { return now })

	token, expiresAt, err := m.Issue(models.User{ID: 7, Email: "a@example.com", FirstName: "Ann", SubscriptionTier: "free"})
	require.NoError(t, err)
	assert.Equal(t, now.Add(7*24*time.Hour), expiresAt)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, "Ann", claims.Name)
	assert.Equal(t, "free", claims.Tier)
	assert.Equal(t, "vitalog-api", claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{"vitalog-client"}, claims.Audience)
}

func TestJWTRejects(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	m := NewJWTManager("secret", "vitalog-api", "vitalog-client", time.Hour, clock)
	user := models.User{ID: 1, Email: "a@example.com"}

	otherSecret, _, _ := NewJWTManager("other", "vitalog-api", "vitalog-client", time.Hour, clock).Issue(user)
	otherIssuer, _, _ := NewJWTManager("secret", "someone-else", "vitalog-client", time.Hour, clock).Issue(user)
	otherAudience, _, _ := NewJWTManager("secret", "vitalog-api", "other-client", time.Hour, clock).Issue(user)
	expired, _, _ := NewJWTManager("secret", "vitalog-api", "vitalog-client", time.Hour,
		func() time.Time { return now.Add(-time.Hour) }).Issue(user)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID:           1,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1", Issuer: "vitalog-api"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	mismatched, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "2",
			Issuer:    "vitalog-api",
			Audience:  jwt.ClaimStrings{"vitalog-client"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":         "not-a-token",
		"wrong secret":    otherSecret,
		"wrong issuer":    otherIssuer,
		"wrong audience":  otherAudience,
		"expired":         expired,
		"alg none":        noneAlg,
		"subject differs": mismatched,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Validate(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
