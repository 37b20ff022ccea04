package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wayplanhq/wayplan/internal/wayplan/domain"
)

func TestForgotPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers a token for a known address", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "ivy@example.com", "ivy-password-1")

		require.NoError(t, env.auth.ForgotPassword(ctx, "ivy@example.com"))
		require.Equal(t, 1, env.mailer.calls)
		require.Equal(t, "ivy@example.com", env.mailer.email)
		require.NotEmpty(t, env.mailer.token)
	})

	t.Run("unknown address succeeds without mail", func(t *testing.T) {
		env := newTestEnv(t)

		require.NoError(t, env.auth.ForgotPassword(ctx, "ghost@example.com"))
		require.Zero(t, env.mailer.calls, "no mail must be sent for unknown addresses")
	})

	t.Run("a later request supersedes the earlier token", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "judy@example.com", "judy-password-1")

		require.NoError(t, env.auth.ForgotPassword(ctx, "judy@example.com"))
		first := env.mailer.token
		require.NoError(t, env.auth.ForgotPassword(ctx, "judy@example.com"))
		second := env.mailer.token
		require.NotEqual(t, first, second)

		err := env.auth.ResetPassword(ctx, first, "brand-new-password")
		require.ErrorIs(t, err, ErrResetTokenNotFound)

		require.NoError(t, env.auth.ResetPassword(ctx, second, "brand-new-password"))
	})
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("swaps the password and revokes the session", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "kate@example.com", "kate-password-1")
		pair, _, err := env.auth.Login(ctx, "kate@example.com", "kate-password-1")
		require.NoError(t, err)

		require.NoError(t, env.auth.ForgotPassword(ctx, "kate@example.com"))
		require.NoError(t, env.auth.ResetPassword(ctx, env.mailer.token, "kate-password-2"))

		// Old password no longer works, new one does.
		_, _, err = env.auth.Login(ctx, "kate@example.com", "kate-password-1")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		_, _, err = env.auth.Login(ctx, "kate@example.com", "kate-password-2")
		require.NoError(t, err)

		// The refresh session from before the reset is dead.
		_, err = env.auth.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("token is single use", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "liam@example.com", "liam-password-1")

		require.NoError(t, env.auth.ForgotPassword(ctx, "liam@example.com"))
		token := env.mailer.token

		require.NoError(t, env.auth.ResetPassword(ctx, token, "liam-password-2"))
		err := env.auth.ResetPassword(ctx, token, "liam-password-3")
		require.ErrorIs(t, err, ErrResetTokenNotFound)
	})

	t.Run("unknown token", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.auth.ResetPassword(ctx, "no-such-token", "whatever-password")
		require.ErrorIs(t, err, ErrResetTokenNotFound)
	})

	t.Run("expired token", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "mia@example.com", "mia-password-1")

		require.NoError(t, env.auth.ForgotPassword(ctx, "mia@example.com"))
		env.clock.Advance(2 * time.Hour)

		err := env.auth.ResetPassword(ctx, env.mailer.token, "mia-password-2")
		require.ErrorIs(t, err, ErrResetTokenExpired)
	})

	t.Run("rejects reusing the current password", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "nina@example.com", "nina-password-1")

		require.NoError(t, env.auth.ForgotPassword(ctx, "nina@example.com"))

		err := env.auth.ResetPassword(ctx, env.mailer.token, "nina-password-1")
		require.ErrorIs(t, err, ErrSamePassword)

		// The rejection did not consume the token.
		require.NoError(t, env.auth.ResetPassword(ctx, env.mailer.token, "nina-password-2"))
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*testEnv, *domain.Principal) {
		env := newTestEnv(t)
		id := env.register(t, "olga@example.com", "olga-password-1")
		return env, &domain.Principal{AccountID: id, Roles: []string{"user"}}
	}

	t.Run("swaps the password", func(t *testing.T) {
		env, principal := setup(t)
		pair, _, err := env.auth.Login(ctx, "olga@example.com", "olga-password-1")
		require.NoError(t, err)

		require.NoError(t, env.auth.ChangePassword(ctx, principal, "olga-password-1", "olga-password-2"))

		_, _, err = env.auth.Login(ctx, "olga@example.com", "olga-password-1")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		_, _, err = env.auth.Login(ctx, "olga@example.com", "olga-password-2")
		require.NoError(t, err)

		// Unlike a reset, changing the password keeps the session alive.
		_, err = env.auth.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("wrong current password", func(t *testing.T) {
		env, principal := setup(t)
		err := env.auth.ChangePassword(ctx, principal, "not-the-password", "olga-password-2")
		require.ErrorIs(t, err, ErrPasswordMismatch)
	})

	t.Run("same password", func(t *testing.T) {
		env, principal := setup(t)
		err := env.auth.ChangePassword(ctx, principal, "olga-password-1", "olga-password-1")
		require.ErrorIs(t, err, ErrSamePassword)
	})
}
