package service

import (
	"context"
	"errors"

	"github.com/wayplanhq/wayplan/internal/wayplan/domain"
	"github.com/wayplanhq/wayplan/internal/wayplan/store"
	"github.com/wayplanhq/wayplan/pkg/cryptox"
	"github.com/wayplanhq/wayplan/pkg/slogx"
)

// ForgotPassword mints a single-use reset token and hands it to the mailer.
// The outcome is success-shaped whether or not the address maps to an
// account, so the endpoint cannot be used to enumerate members.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	now := s.now()

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return err
	}

	var account domain.Account
	err = s.Store.WithSession(ctx, nil, func(sess store.Session) error {
		a, err := sess.Accounts().GetAccountByEmail(ctx, email)
		if err != nil {
			return err
		}
		account = a
		return sess.Credentials().SetResetToken(ctx, a.ID, cryptox.FingerprintToken(token), now.Add(s.resetTTL()))
	})
	if errors.Is(err, store.ErrNotFound) {
		slogx.FromContext(ctx).Info("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	return s.Mailer.SendPasswordReset(ctx, account.Email, token)
}

// ResetPassword swaps the password for the account the token was minted for,
// consuming the token and revoking any live refresh session in the same
// transaction. Expiry is checked with the service clock, not the store.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	fp := cryptox.FingerprintToken(token)
	now := s.now()

	var cred domain.Credential
	err := s.Store.WithSession(ctx, nil, func(sess store.Session) error {
		c, err := sess.Credentials().GetCredentialByResetToken(ctx, fp)
		if err != nil {
			return err
		}
		cred = c
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrResetTokenNotFound
	}
	if err != nil {
		return err
	}

	if cred.ResetTokenExpiresAt == nil || now.After(*cred.ResetTokenExpiresAt) {
		return ErrResetTokenExpired
	}

	// Expensive checks happen off the store session.
	switch err := s.Hasher.Verify(ctx, newPassword, cred.PasswordHash); {
	case err == nil:
		return ErrSamePassword
	case errors.Is(err, cryptox.ErrPasswordMismatch):
		// The new password genuinely differs; proceed.
	default:
		return err
	}

	newHash, err := s.Hasher.Hash(ctx, newPassword)
	if err != nil {
		return err
	}

	return s.Store.WithSession(ctx, nil, func(sess store.Session) error {
		return sess.WithTx(ctx, func(tx store.Session) error {
			if err := tx.Credentials().ConsumeResetToken(ctx, cred.AccountID, fp); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					// Raced with another reset using the same link.
					return ErrResetTokenNotFound
				}
				return err
			}
			if err := tx.Credentials().UpdatePasswordHash(ctx, cred.AccountID, newHash); err != nil {
				return err
			}
			// Stolen sessions die with the password.
			err := tx.Credentials().ClearRefreshToken(ctx, cred.AccountID, "")
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		})
	})
}

// ChangePassword swaps the password for an authenticated account after
// re-proving the current one. The refresh session survives: the caller is
// already holding valid tokens.
func (s *AuthService) ChangePassword(ctx context.Context, principal *domain.Principal, currentPassword, newPassword string) error {
	var cred domain.Credential
	err := s.Store.WithSession(ctx, principal, func(sess store.Session) error {
		c, err := sess.Credentials().GetCredentialByAccount(ctx, principal.AccountID)
		if err != nil {
			return err
		}
		cred = c
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.Hasher.Verify(ctx, currentPassword, cred.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return ErrPasswordMismatch
		}
		return err
	}

	if newPassword == currentPassword {
		return ErrSamePassword
	}

	newHash, err := s.Hasher.Hash(ctx, newPassword)
	if err != nil {
		return err
	}

	return s.Store.WithSession(ctx, principal, func(sess store.Session) error {
		return sess.Credentials().UpdatePasswordHash(ctx, principal.AccountID, newHash)
	})
}
