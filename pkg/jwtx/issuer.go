package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrWrongUse    = errors.New("jwtx: wrong token use")
)

// MinSecretLength is the smallest HS256 secret we accept. Anything shorter
// than the hash output weakens the HMAC.
const MinSecretLength = 32

// Issuer mints and verifies HS256-signed access and refresh tokens with a
// single process-wide secret loaded once at startup. There is no key
// rotation; replacing the secret invalidates all outstanding tokens.
type Issuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewIssuer validates the secret and returns an Issuer. Zero TTLs fall back
// to the package defaults.
func NewIssuer(secret []byte, issuer string, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	if len(secret) < MinSecretLength {
		return nil, errors.New("jwtx: signing secret must be at least 32 bytes")
	}
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	return &Issuer{
		secret:     secret,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// AccessTTL reports the configured access-token lifetime, for surfacing
// expires_in to clients.
func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

// RefreshTTL reports the configured refresh-token lifetime.
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

// IssueAccess signs a short-lived access token for the given subject.
func (i *Issuer) IssueAccess(subject string, roles []string, now time.Time) (string, error) {
	claims := NewAccessClaims(subject, roles, i.accessTTL, i.issuer, now)
	return i.sign(claims)
}

// IssueRefresh signs a refresh token bound to the given subject.
func (i *Issuer) IssueRefresh(subject string, now time.Time) (string, error) {
	claims := NewRefreshClaims(subject, i.refreshTTL, i.issuer, now)
	return i.sign(claims)
}

// VerifyAccess checks signature, issuer, expiry and token use, returning the
// embedded claims. It never consults storage.
func (i *Issuer) VerifyAccess(raw string, now time.Time) (Claims, error) {
	return i.verify(raw, TokenUseAccess, now)
}

// VerifyRefresh checks signature, issuer, expiry and token use for a refresh
// token. Whether the token is still the account's live one is the
// orchestrator's problem, not ours; that keeps this component storage-agnostic.
func (i *Issuer) VerifyRefresh(raw string, now time.Time) (Claims, error) {
	return i.verify(raw, TokenUseRefresh, now)
}

func (i *Issuer) sign(claims Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(i.secret)
}

func (i *Issuer) verify(raw, use string, now time.Time) (Claims, error) {
	claims := Claims{}
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrAlgMismatch
		}
		return i.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		switch {
		case errors.Is(err, ErrAlgMismatch):
			return Claims{}, ErrAlgMismatch
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrInvalidSig
		default:
			return Claims{}, ErrMalformed
		}
	}
	if !tok.Valid {
		return Claims{}, ErrInvalidSig
	}

	// Expiry and nbf are validated against the caller's clock so services
	// with an injected clock stay testable.
	if err := claims.ValidateExpiry(now); err != nil {
		return Claims{}, err
	}
	if i.issuer != "" && claims.Issuer != i.issuer {
		return Claims{}, ErrIssuer
	}
	if claims.TokenUse != use {
		return Claims{}, ErrWrongUse
	}

	return claims, nil
}
