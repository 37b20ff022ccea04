package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/wayplanhq/wayplan/internal/wayplan/domain"
	"github.com/wayplanhq/wayplan/internal/wayplan/store"
	"github.com/wayplanhq/wayplan/pkg/cryptox"
	"github.com/wayplanhq/wayplan/pkg/idx"
	"github.com/wayplanhq/wayplan/pkg/jwtx"
	"github.com/wayplanhq/wayplan/pkg/slogx"
)

// DefaultResetTokenTTL bounds how long a password-reset link stays usable.
const DefaultResetTokenTTL = time.Hour

var (
	ErrEmailTaken         = errors.New("email_already_exists")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrResetTokenNotFound = errors.New("token_not_found")
	ErrResetTokenExpired  = errors.New("token_expired")
	ErrSamePassword       = errors.New("same_password")
	ErrPasswordMismatch   = errors.New("current_password_mismatch")
)

// AuthService coordinates hashing, token issuance and the credential store
// across the register / login / refresh / logout / password flows. Expected
// business failures come back as the sentinel errors above, never as panics.
type AuthService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
	Tokens *jwtx.Issuer
	Mailer Mailer

	// ResetTokenTTL defaults to DefaultResetTokenTTL when zero.
	ResetTokenTTL time.Duration

	// Now is the injectable clock used for all expiry math. Defaults to
	// time.Now; tests pin it.
	Now func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AuthService) resetTTL() time.Duration {
	if s.ResetTokenTTL > 0 {
		return s.ResetTokenTTL
	}
	return DefaultResetTokenTTL
}

// NormalizeEmail lowercases and trims an address so lookups and uniqueness
// are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account with the default role and its credential row.
// It does not issue tokens; a fresh account still logs in explicitly.
func (s *AuthService) Register(ctx context.Context, userName, email, password string) (domain.Profile, error) {
	email = NormalizeEmail(email)

	// Hash before opening a store session so the expensive part never
	// holds a connection.
	hash, err := s.Hasher.Hash(ctx, password)
	if err != nil {
		return domain.Profile{}, err
	}

	now := s.now()
	account := domain.Account{
		ID:        idx.New().String(),
		UserName:  userName,
		Email:     email,
		Roles:     []string{domain.DefaultRole},
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.Store.WithSession(ctx, nil, func(sess store.Session) error {
		return sess.WithTx(ctx, func(tx store.Session) error {
			if err := tx.Accounts().CreateAccount(ctx, account); err != nil {
				if errors.Is(err, store.ErrAlreadyExists) {
					return ErrEmailTaken
				}
				return err
			}
			return tx.Credentials().CreateCredential(ctx, domain.Credential{
				AccountID:    account.ID,
				PasswordHash: hash,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
		})
	})
	if err != nil {
		return domain.Profile{}, err
	}

	return account.Profile(), nil
}

// Login verifies the password and issues a fresh access+refresh pair,
// superseding any previously stored refresh token. An unknown email and a
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, domain.Profile, error) {
	email = NormalizeEmail(email)
	now := s.now()

	var (
		account domain.Account
		cred    domain.Credential
	)
	err := s.Store.WithSession(ctx, nil, func(sess store.Session) error {
		a, err := sess.Accounts().GetAccountByEmail(ctx, email)
		if err != nil {
			return err
		}
		c, err := sess.Credentials().GetCredentialByAccount(ctx, a.ID)
		if err != nil {
			return err
		}
		account, cred = a, c
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		// Burn the same hashing cost as the wrong-password path so the
		// two failures are indistinguishable by timing as well.
		_ = s.Hasher.Verify(ctx, password, decoyHash())
		return nil, domain.Profile{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, domain.Profile{}, err
	}

	if err := s.Hasher.Verify(ctx, password, cred.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return nil, domain.Profile{}, ErrInvalidCredentials
		}
		return nil, domain.Profile{}, err
	}

	pair, err := s.issuePair(ctx, account, now)
	if err != nil {
		return nil, domain.Profile{}, err
	}

	return pair, account.Profile(), nil
}

// Refresh exchanges a refresh token for a brand-new pair. The stored
// fingerprint is swapped with an atomic compare-and-replace, so presenting a
// rotated, revoked or concurrently-used token fails. A mismatch for a known
// account also clears the stored token: reuse of a superseded token is
// treated as a sign of compromise and forces a fresh login.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*domain.TokenPair, error) {
	now := s.now()

	claims, err := s.Tokens.VerifyRefresh(rawToken, now)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	accountID := claims.Subject
	oldFP := cryptox.FingerprintToken(rawToken)

	newRefresh, err := s.Tokens.IssueRefresh(accountID, now)
	if err != nil {
		return nil, err
	}
	newFP := cryptox.FingerprintToken(newRefresh)

	var pair *domain.TokenPair
	err = s.Store.WithSession(ctx, nil, func(sess store.Session) error {
		creds := sess.Credentials()

		err := creds.RotateRefreshToken(ctx, accountID, oldFP, newFP, now.Add(s.Tokens.RefreshTTL()))
		if errors.Is(err, store.ErrNotFound) {
			// The token was valid but is no longer the live one.
			if clearErr := creds.ClearRefreshToken(ctx, accountID, ""); clearErr != nil && !errors.Is(clearErr, store.ErrNotFound) {
				slogx.FromContext(ctx).Error("failed to revoke refresh token after reuse", "err", clearErr)
			}
			slogx.FromContext(ctx).Warn("refresh token reuse detected", "account_id", accountID)
			return ErrInvalidRefresh
		}
		if err != nil {
			return err
		}

		account, err := sess.Accounts().GetAccountByID(ctx, accountID)
		if err != nil {
			return err
		}

		access, err := s.Tokens.IssueAccess(accountID, account.Roles, now)
		if err != nil {
			return err
		}

		pair = &domain.TokenPair{
			AccessToken:  access,
			RefreshToken: newRefresh,
			TokenType:    "Bearer",
			ExpiresIn:    s.Tokens.AccessTTL(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}

// Logout clears the stored refresh token when the presented one is still
// live. It is idempotent: an expired, malformed or already-superseded token
// simply means there is nothing left to revoke.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	claims, err := s.Tokens.VerifyRefresh(rawToken, s.now())
	if err != nil {
		return nil
	}
	fp := cryptox.FingerprintToken(rawToken)

	return s.Store.WithSession(ctx, nil, func(sess store.Session) error {
		err := sess.Credentials().ClearRefreshToken(ctx, claims.Subject, fp)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	})
}

// issuePair mints an access+refresh pair and stores the refresh fingerprint,
// unconditionally superseding whatever session existed before.
func (s *AuthService) issuePair(ctx context.Context, account domain.Account, now time.Time) (*domain.TokenPair, error) {
	access, err := s.Tokens.IssueAccess(account.ID, account.Roles, now)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Tokens.IssueRefresh(account.ID, now)
	if err != nil {
		return nil, err
	}
	fp := cryptox.FingerprintToken(refresh)

	err = s.Store.WithSession(ctx, nil, func(sess store.Session) error {
		return sess.Credentials().ReplaceRefreshToken(ctx, account.ID, fp, now.Add(s.Tokens.RefreshTTL()))
	})
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    s.Tokens.AccessTTL(),
	}, nil
}

var (
	decoyOnce sync.Once
	decoy     string
)

// decoyHash is a throwaway argon2 hash verified against when the account
// does not exist, equalizing the cost of the two login failure paths.
func decoyHash() string {
	decoyOnce.Do(func() {
		decoy, _ = cryptox.HashPassword("wayplan-decoy-credential")
	})
	return decoy
}
