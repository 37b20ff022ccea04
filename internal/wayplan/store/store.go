package store

import (
	"context"
	"errors"
	"time"

	"github.com/wayplanhq/wayplan/internal/wayplan/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (postgres,
// memory) implement this. Every query runs inside a session so the driver
// can stamp the caller's identity onto the underlying connection before any
// application statement touches it.
type Store interface {
	// WithSession checks out one physical connection, binds principal's
	// account id into engine session state (nothing is bound for a nil
	// principal - row-secured queries then see zero rows), runs fn with
	// repositories scoped to that connection, and releases it with the
	// binding cleared. A binding failure fails the acquisition loudly.
	WithSession(ctx context.Context, principal *domain.Principal, fn func(Session) error) error

	ApplyMigrations() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error

	// Close releases any underlying resources.
	Close() error
}

// Session exposes the sub-repositories bound to one checked-out connection.
// Repositories obtained from the same Session share that connection, so the
// identity binding applies to all of them.
type Session interface {
	Accounts() Accounts
	Credentials() Credentials
	Trips() Trips

	// WithTx executes fn within a transaction on the session's connection.
	// If fn returns an error the transaction is rolled back, otherwise it
	// is committed. Use it for multi-step operations that must be atomic
	// (e.g. refresh-token rotation).
	WithTx(ctx context.Context, fn func(Session) error) error
}

type Accounts interface {
	// CreateAccount inserts a new account (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is already registered.
	CreateAccount(ctx context.Context, a domain.Account) error

	// GetAccountByEmail is used during login and forgot-password.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// GetAccountByID returns an account by id.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)
}

type Credentials interface {
	// CreateCredential inserts the 1:1 credential row for a new account.
	CreateCredential(ctx context.Context, c domain.Credential) error

	// GetCredentialByAccount returns the credential row for an account.
	GetCredentialByAccount(ctx context.Context, accountID string) (domain.Credential, error)

	// GetCredentialByResetToken looks a credential up by reset-token
	// fingerprint. A consumed or superseded token no longer matches.
	GetCredentialByResetToken(ctx context.Context, tokenHash string) (domain.Credential, error)

	// UpdatePasswordHash sets the password_hash (argon2id) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, accountID string, newHash string) error

	// ReplaceRefreshToken unconditionally overwrites the stored refresh
	// token fingerprint, superseding any live session (login path).
	//
	// expiresAt mirrors the token's own exp claim. Validity is enforced by
	// JWT verification, not by the store; the column exists so operators can
	// inspect and reap stale sessions directly in the database.
	ReplaceRefreshToken(ctx context.Context, accountID, tokenHash string, expiresAt time.Time) error

	// RotateRefreshToken atomically swaps oldHash for newHash. It compares
	// against the currently stored fingerprint in the same statement and
	// returns ErrNotFound when the stored value is not oldHash, so of two
	// concurrent rotations of the same token exactly one wins.
	RotateRefreshToken(ctx context.Context, accountID, oldHash, newHash string, expiresAt time.Time) error

	// ClearRefreshToken removes the stored refresh token. A non-empty
	// matchHash clears only when it equals the stored fingerprint; clearing
	// an already-cleared credential is not an error (logout is idempotent).
	ClearRefreshToken(ctx context.Context, accountID, matchHash string) error

	// SetResetToken stores a reset-token fingerprint with its expiry,
	// superseding any earlier one.
	SetResetToken(ctx context.Context, accountID, tokenHash string, expiresAt time.Time) error

	// ConsumeResetToken atomically clears the reset token when it still
	// equals tokenHash, enforcing single use. Returns ErrNotFound when the
	// token was already consumed or superseded.
	ConsumeResetToken(ctx context.Context, accountID, tokenHash string) error
}

type Trips interface {
	// CreateTrip inserts a trip. The row-security policy rejects a trip
	// whose account_id differs from the session's bound identity.
	CreateTrip(ctx context.Context, t domain.Trip) error

	// GetTripByID returns a trip by id. Rows owned by other accounts are
	// invisible, so a foreign id yields ErrNotFound rather than a leak.
	GetTripByID(ctx context.Context, id string) (domain.Trip, error)

	// ListTrips returns the visible trips, newest first. No owner filter:
	// row-level security scopes the result to the bound account.
	ListTrips(ctx context.Context) ([]domain.Trip, error)
}
