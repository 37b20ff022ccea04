// Package memory is an in-process store driver used by unit tests. It
// mirrors the postgres driver's contracts - unique email, compare-and-swap
// refresh rotation, single-use reset consumption, and the fail-closed
// session-binding rule for row-secured trips - without needing a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wayplanhq/wayplan/internal/wayplan/domain"
	"github.com/wayplanhq/wayplan/internal/wayplan/store"
)

type Store struct {
	mu          sync.Mutex
	accounts    map[string]domain.Account    // by id
	emails      map[string]string            // email -> account id
	credentials map[string]domain.Credential // by account id
	trips       map[string]domain.Trip       // by id
}

func NewStore() *Store {
	return &Store{
		accounts:    make(map[string]domain.Account),
		emails:      make(map[string]string),
		credentials: make(map[string]domain.Credential),
		trips:       make(map[string]domain.Trip),
	}
}

func (s *Store) ApplyMigrations() error         { return nil }
func (s *Store) Ping(ctx context.Context) error { return nil }
func (s *Store) Close() error                   { return nil }

// WithSession runs fn with repositories that observe the same visibility
// rules as a bound postgres connection: trips are only visible to the bound
// account, and nothing is visible without a principal.
func (s *Store) WithSession(
	ctx context.Context,
	principal *domain.Principal,
	fn func(store.Session) error,
) error {
	boundAccount := ""
	if principal != nil {
		boundAccount = principal.AccountID
	}
	return fn(&session{store: s, boundAccount: boundAccount})
}

type session struct {
	store        *Store
	boundAccount string
}

func (s *session) Accounts() store.Accounts       { return &accountsRepo{s.store} }
func (s *session) Credentials() store.Credentials { return &credentialsRepo{s.store} }
func (s *session) Trips() store.Trips             { return &tripsRepo{s.store, s.boundAccount} }

// WithTx runs fn on the same session. The driver holds its lock per
// operation, which is enough serialization for the contracts the tests
// exercise; rollback-on-error is not emulated.
func (s *session) WithTx(ctx context.Context, fn func(store.Session) error) error {
	return fn(s)
}

type accountsRepo struct{ s *Store }

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.emails[a.Email]; taken {
		return store.ErrAlreadyExists
	}
	r.s.accounts[a.ID] = a
	r.s.emails[a.Email] = a.ID
	return nil
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, ok := r.s.emails[email]
	if !ok {
		return domain.Account{}, store.ErrNotFound
	}
	return r.s.accounts[id], nil
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.accounts[id]
	if !ok {
		return domain.Account{}, store.ErrNotFound
	}
	return a, nil
}

type credentialsRepo struct{ s *Store }

func (r *credentialsRepo) CreateCredential(ctx context.Context, c domain.Credential) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.credentials[c.AccountID]; exists {
		return store.ErrAlreadyExists
	}
	r.s.credentials[c.AccountID] = c
	return nil
}

func (r *credentialsRepo) GetCredentialByAccount(ctx context.Context, accountID string) (domain.Credential, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.credentials[accountID]
	if !ok {
		return domain.Credential{}, store.ErrNotFound
	}
	return c, nil
}

func (r *credentialsRepo) GetCredentialByResetToken(ctx context.Context, tokenHash string) (domain.Credential, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.credentials {
		if c.ResetTokenHash != "" && c.ResetTokenHash == tokenHash {
			return c, nil
		}
	}
	return domain.Credential{}, store.ErrNotFound
}

func (r *credentialsRepo) UpdatePasswordHash(ctx context.Context, accountID, newHash string) error {
	return r.update(accountID, func(c *domain.Credential) error {
		c.PasswordHash = newHash
		return nil
	})
}

func (r *credentialsRepo) ReplaceRefreshToken(ctx context.Context, accountID, tokenHash string, expiresAt time.Time) error {
	return r.update(accountID, func(c *domain.Credential) error {
		c.RefreshTokenHash = tokenHash
		c.RefreshTokenExpiresAt = &expiresAt
		return nil
	})
}

func (r *credentialsRepo) RotateRefreshToken(ctx context.Context, accountID, oldHash, newHash string, expiresAt time.Time) error {
	return r.update(accountID, func(c *domain.Credential) error {
		if c.RefreshTokenHash != oldHash || oldHash == "" {
			return store.ErrNotFound
		}
		c.RefreshTokenHash = newHash
		c.RefreshTokenExpiresAt = &expiresAt
		return nil
	})
}

func (r *credentialsRepo) ClearRefreshToken(ctx context.Context, accountID, matchHash string) error {
	return r.update(accountID, func(c *domain.Credential) error {
		if matchHash != "" && c.RefreshTokenHash != matchHash {
			return nil // already superseded; logout is idempotent
		}
		c.RefreshTokenHash = ""
		c.RefreshTokenExpiresAt = nil
		return nil
	})
}

func (r *credentialsRepo) SetResetToken(ctx context.Context, accountID, tokenHash string, expiresAt time.Time) error {
	return r.update(accountID, func(c *domain.Credential) error {
		c.ResetTokenHash = tokenHash
		c.ResetTokenExpiresAt = &expiresAt
		return nil
	})
}

func (r *credentialsRepo) ConsumeResetToken(ctx context.Context, accountID, tokenHash string) error {
	return r.update(accountID, func(c *domain.Credential) error {
		if c.ResetTokenHash != tokenHash || tokenHash == "" {
			return store.ErrNotFound
		}
		c.ResetTokenHash = ""
		c.ResetTokenExpiresAt = nil
		return nil
	})
}

func (r *credentialsRepo) update(accountID string, mutate func(*domain.Credential) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.credentials[accountID]
	if !ok {
		return store.ErrNotFound
	}
	if err := mutate(&c); err != nil {
		return err
	}
	c.UpdatedAt = time.Now().UTC()
	r.s.credentials[accountID] = c
	return nil
}

// tripsRepo enforces the fail-closed visibility rule the postgres policies
// provide: an unbound session sees and writes nothing.
type tripsRepo struct {
	s            *Store
	boundAccount string
}

func (r *tripsRepo) CreateTrip(ctx context.Context, t domain.Trip) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.boundAccount == "" || t.AccountID != r.boundAccount {
		// Mirrors the policy's WITH CHECK rejection.
		return store.ErrNotFound
	}
	r.s.trips[t.ID] = t
	return nil
}

func (r *tripsRepo) GetTripByID(ctx context.Context, id string) (domain.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.trips[id]
	if !ok || r.boundAccount == "" || t.AccountID != r.boundAccount {
		return domain.Trip{}, store.ErrNotFound
	}
	return t, nil
}

func (r *tripsRepo) ListTrips(ctx context.Context) ([]domain.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.boundAccount == "" {
		return nil, nil
	}

	var trips []domain.Trip
	for _, t := range r.s.trips {
		if t.AccountID == r.boundAccount {
			trips = append(trips, t)
		}
	}
	sort.Slice(trips, func(i, j int) bool {
		return trips[i].CreatedAt.After(trips[j].CreatedAt)
	})
	return trips, nil
}
