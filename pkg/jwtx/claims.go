package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. These provide sensible security defaults but can be
// overridden per-service via configuration.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	// Short-lived for security - typical range is 15m to 1h.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	// Longer-lived for user convenience - typical range is 7d to 30d.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Token use discriminators. Access and refresh tokens share the signing
// secret, so the use claim is what stops one being replayed as the other.
const (
	TokenUseAccess  = "access"
	TokenUseRefresh = "refresh"
)

// Claims are the token claims used across the service. We keep changes
// additive to preserve compatibility with already-issued tokens.
type Claims struct {
	jwt.RegisteredClaims

	// TokenUse discriminates access tokens from refresh tokens.
	TokenUse string `json:"token_use"`

	// Roles held by the authenticated account, e.g. ["user"].
	// Only present on access tokens.
	Roles []string `json:"roles,omitempty"`
}

// NewAccessClaims builds claims for a short-lived access token.
func NewAccessClaims(
	subject string,
	roles []string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		TokenUse: TokenUseAccess,
		Roles:    roles,
	}
}

// NewRefreshClaims builds claims for a longer-lived refresh token bound to a
// single account. Refresh tokens carry no roles; they are only exchangeable
// for a new pair.
func NewRefreshClaims(
	subject string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		TokenUse: TokenUseRefresh,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim. Two
// refresh tokens minted in the same second for the same account must still
// differ, and the jti is what guarantees that.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it is valid (nbf).
func (c *Claims) ValidateExpiry(now time.Time) error {
	now = now.UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}
