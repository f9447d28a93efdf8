package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cppla/vitalog/models"
)

// ErrInvalidToken covers every reason a token is rejected: bad signature,
// wrong issuer or audience, expiry, or malformed claims.
var ErrInvalidToken = errors.New("invalid token")

// Claims defines JWT claims used in the application.
type Claims struct {
	UserID uint   `json:"uid"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Tier   string `json:"tier"`
	jwt.RegisteredClaims
}

// JWTManager issues and validates HS256 bearer tokens.
type JWTManager struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewJWTManager builds a manager; now may be nil to use the wall clock.
func NewJWTManager(secret, issuer, audience string, ttl time.Duration, now func() time.Time) *JWTManager {
	if now == nil {
		now = time.Now
	}
	return &JWTManager{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      now,
	}
}

// TTL is the lifetime given to newly issued tokens.
func (m *JWTManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for user and returns it with its expiry.
func (m *JWTManager) Issue(user models.User) (string, time.Time, error) {
	now := m.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(m.ttl)

	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.FullName(),
		Tier:   user.SubscriptionTier,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate verifies signature, issuer, audience and expiry (no leeway) and returns the claims.
func (m *JWTManager) Validate(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(0),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == 0 || claims.Subject != strconv.FormatUint(uint64(claims.UserID), 10) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
