package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wayplanhq/wayplan/internal/wayplan/store/drivers/memory"
	"github.com/wayplanhq/wayplan/pkg/cryptox"
	"github.com/wayplanhq/wayplan/pkg/jwtx"
)

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "wayplan-service-test-pepper")
	cryptox.SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

// fakeClock is an adjustable clock shared by a test and the services under
// test.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type captureMailer struct {
	mu    sync.Mutex
	email string
	token string
	calls int
}

func (m *captureMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.email, m.token = email, token
	m.calls++
	return nil
}

type testEnv struct {
	auth   *AuthService
	trips  *TripService
	store  *memory.Store
	clock  *fakeClock
	mailer *captureMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	issuer, err := jwtx.NewIssuer(
		[]byte("0123456789abcdef0123456789abcdef"),
		"wayplan-test",
		15*time.Minute,
		7*24*time.Hour,
	)
	require.NoError(t, err)

	st := memory.NewStore()
	clock := newFakeClock()
	mailer := &captureMailer{}

	return &testEnv{
		auth: &AuthService{
			Store:  st,
			Hasher: cryptox.NewHasher(4),
			Tokens: issuer,
			Mailer: mailer,
			Now:    clock.Now,
		},
		trips:  &TripService{Store: st, Now: clock.Now},
		store:  st,
		clock:  clock,
		mailer: mailer,
	}
}

func (e *testEnv) register(t *testing.T, email, password string) string {
	t.Helper()
	profile, err := e.auth.Register(context.Background(), "traveller", email, password)
	require.NoError(t, err)
	return profile.ID
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("creates account with default role", func(t *testing.T) {
		profile, err := env.auth.Register(ctx, "alice", "alice@example.com", "correct horse battery")
		require.NoError(t, err)
		require.NotEmpty(t, profile.ID)
		require.Equal(t, "alice", profile.UserName)
		require.Equal(t, "alice@example.com", profile.Email)
		require.Equal(t, []string{"user"}, profile.Roles)
	})

	t.Run("normalizes the email", func(t *testing.T) {
		profile, err := env.auth.Register(ctx, "bob", "  Bob@Example.COM ", "bob-password-1")
		require.NoError(t, err)
		require.Equal(t, "bob@example.com", profile.Email)

		// Login with a differently-cased address reaches the same account.
		_, got, err := env.auth.Login(ctx, "BOB@example.com", "bob-password-1")
		require.NoError(t, err)
		require.Equal(t, profile.ID, got.ID)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		_, err := env.auth.Register(ctx, "alice2", "alice@example.com", "another password")
		require.ErrorIs(t, err, ErrEmailTaken)

		// Case-folded duplicates collide too.
		_, err = env.auth.Register(ctx, "alice3", "ALICE@example.com", "another password")
		require.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "carol@example.com", "carol-password-1")

	t.Run("issues a bearer pair for valid credentials", func(t *testing.T) {
		pair, profile, err := env.auth.Login(ctx, "carol@example.com", "carol-password-1")
		require.NoError(t, err)
		require.Equal(t, "Bearer", pair.TokenType)
		require.Equal(t, 15*time.Minute, pair.ExpiresIn)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		require.Equal(t, "carol@example.com", profile.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := env.auth.Login(ctx, "carol@example.com", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email is indistinguishable", func(t *testing.T) {
		_, _, err := env.auth.Login(ctx, "nobody@example.com", "whatever-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("a new login supersedes the previous refresh token", func(t *testing.T) {
		first, _, err := env.auth.Login(ctx, "carol@example.com", "carol-password-1")
		require.NoError(t, err)
		second, _, err := env.auth.Login(ctx, "carol@example.com", "carol-password-1")
		require.NoError(t, err)

		_, err = env.auth.Refresh(ctx, first.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)

		// The reuse of the superseded token also revoked the live one.
		_, err = env.auth.Refresh(ctx, second.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates the pair", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "dave@example.com", "dave-password-1")
		pair, _, err := env.auth.Login(ctx, "dave@example.com", "dave-password-1")
		require.NoError(t, err)

		env.clock.Advance(time.Minute)

		next, err := env.auth.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, pair.RefreshToken, next.RefreshToken)
		require.NotEqual(t, pair.AccessToken, next.AccessToken)

		// The fresh token keeps working.
		env.clock.Advance(time.Minute)
		_, err = env.auth.Refresh(ctx, next.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("reuse of a rotated token revokes the session", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "erin@example.com", "erin-password-1")
		pair, _, err := env.auth.Login(ctx, "erin@example.com", "erin-password-1")
		require.NoError(t, err)

		next, err := env.auth.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)

		// Replaying the rotated token fails and burns the live one too.
		_, err = env.auth.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
		_, err = env.auth.Refresh(ctx, next.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("expired token", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "frank@example.com", "frank-password-1")
		pair, _, err := env.auth.Login(ctx, "frank@example.com", "frank-password-1")
		require.NoError(t, err)

		env.clock.Advance(8 * 24 * time.Hour)

		_, err = env.auth.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("garbage token", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.auth.Refresh(ctx, "not-a-token")
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("concurrent rotation has exactly one winner", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "grace@example.com", "grace-password-1")
		pair, _, err := env.auth.Login(ctx, "grace@example.com", "grace-password-1")
		require.NoError(t, err)

		const racers = 8
		errs := make(chan error, racers)
		var wg sync.WaitGroup
		for range racers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := env.auth.Refresh(ctx, pair.RefreshToken)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		wins := 0
		for err := range errs {
			if err == nil {
				wins++
			} else {
				require.ErrorIs(t, err, ErrInvalidRefresh)
			}
		}
		require.Equal(t, 1, wins, "compare-and-swap must admit exactly one rotation")
	})
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "heidi@example.com", "heidi-password-1")

	t.Run("revokes the live refresh token", func(t *testing.T) {
		pair, _, err := env.auth.Login(ctx, "heidi@example.com", "heidi-password-1")
		require.NoError(t, err)

		require.NoError(t, env.auth.Logout(ctx, pair.RefreshToken))

		_, err = env.auth.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("is idempotent", func(t *testing.T) {
		pair, _, err := env.auth.Login(ctx, "heidi@example.com", "heidi-password-1")
		require.NoError(t, err)

		require.NoError(t, env.auth.Logout(ctx, pair.RefreshToken))
		require.NoError(t, env.auth.Logout(ctx, pair.RefreshToken))
	})

	t.Run("tolerates garbage tokens", func(t *testing.T) {
		require.NoError(t, env.auth.Logout(ctx, "not-a-token"))
	})

	t.Run("a superseded token does not revoke the live one", func(t *testing.T) {
		old, _, err := env.auth.Login(ctx, "heidi@example.com", "heidi-password-1")
		require.NoError(t, err)
		live, _, err := env.auth.Login(ctx, "heidi@example.com", "heidi-password-1")
		require.NoError(t, err)

		require.NoError(t, env.auth.Logout(ctx, old.RefreshToken))

		_, err = env.auth.Refresh(ctx, live.RefreshToken)
		require.NoError(t, err)
	})
}
