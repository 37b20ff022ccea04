package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/wayplanhq/wayplan/internal/wayplan/domain"
	"github.com/wayplanhq/wayplan/internal/wayplan/store"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// sessionVar is the engine session variable the row-security policies read
// via current_setting(sessionVar, true). Unset, it reads as NULL and every
// policy predicate fails: an unbound connection sees zero secured rows.
const sessionVar = "wayplan.account_id"

// dbtx is the common surface of *sql.Conn and *sql.Tx the repositories run on.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db  *sql.DB
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// Pooled connections outlive requests; keep idle lifetime bounded so
	// dropped server-side sessions get recycled.
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &Store{db: db, dsn: dsn}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithSession checks one physical connection out of the pool, binds the
// principal's account id into engine session state, and runs fn with
// repositories scoped to that connection. Binding happens on every checkout,
// not just connection creation - the pool hands out long-lived connections
// that previously served other identities.
func (s *Store) WithSession(
	ctx context.Context,
	principal *domain.Principal,
	fn func(store.Session) error,
) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return err
	}

	bound := false
	if principal != nil && principal.AccountID != "" {
		if err := bindAccountID(ctx, conn, principal.AccountID); err != nil {
			// Never hand out a connection whose binding state is unknown.
			discard(conn)
			return fmt.Errorf("bind session identity: %w", err)
		}
		bound = true
	}

	defer release(conn, bound)

	return fn(&session{db: conn, conn: conn})
}

// bindAccountID stamps the account id onto the connection before any
// application query runs on it. set_config with is_local=false survives until
// release explicitly resets it.
func bindAccountID(ctx context.Context, conn *sql.Conn, accountID string) error {
	_, err := conn.ExecContext(ctx, `SELECT set_config('`+sessionVar+`', $1, false)`, accountID)
	return err
}

// release clears the identity binding and returns the connection to the pool.
// If the reset fails the connection is discarded instead: returning a
// still-bound connection would leak one caller's identity into the next.
func release(conn *sql.Conn, bound bool) {
	if bound {
		// The request context may already be done; reset must still run.
		if _, err := conn.ExecContext(context.Background(), `RESET `+sessionVar); err != nil {
			discard(conn)
			return
		}
	}
	_ = conn.Close()
}

// discard poisons the connection so the pool drops it rather than reusing it.
func discard(conn *sql.Conn) {
	_ = conn.Raw(func(any) error { return driver.ErrBadConn })
	_ = conn.Close()
}

// session implements store.Session on one checked-out connection (or a
// transaction on it).
type session struct {
	db   dbtx
	conn *sql.Conn // nil when db is already a transaction
}

func (s *session) Accounts() store.Accounts       { return &accountsRepo{db: s.db} }
func (s *session) Credentials() store.Credentials { return &credentialsRepo{db: s.db} }
func (s *session) Trips() store.Trips             { return &tripsRepo{db: s.db} }

// WithTx executes fn within a transaction on the session's connection, so the
// identity binding applies inside the transaction too. Nested calls flatten
// into the enclosing transaction.
func (s *session) WithTx(ctx context.Context, fn func(store.Session) error) error {
	if s.conn == nil {
		return fn(s)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	// Rollback is a no-op after a successful commit.
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(&session{db: tx}); err != nil {
		return err
	}

	return tx.Commit()
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// isUniqueViolation reports a Postgres unique_violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time
		return &val
	}
	return nil
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
