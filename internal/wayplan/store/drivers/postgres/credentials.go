package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/wayplanhq/wayplan/internal/wayplan/domain"
	"github.com/wayplanhq/wayplan/internal/wayplan/store"
)

type credentialsRepo struct {
	db dbtx
}

func (r *credentialsRepo) CreateCredential(ctx context.Context, c domain.Credential) error {
	const query = `
		INSERT INTO credentials (account_id, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, c.AccountID, c.PasswordHash, c.CreatedAt, c.UpdatedAt)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *credentialsRepo) GetCredentialByAccount(ctx context.Context, accountID string) (domain.Credential, error) {
	const query = `
		SELECT account_id, password_hash,
		       refresh_token_hash, refresh_token_expires_at,
		       reset_token_hash, reset_token_expires_at,
		       created_at, updated_at
		FROM credentials
		WHERE account_id = $1
	`
	return scanCredential(r.db.QueryRowContext(ctx, query, accountID))
}

func (r *credentialsRepo) GetCredentialByResetToken(ctx context.Context, tokenHash string) (domain.Credential, error) {
	const query = `
		SELECT account_id, password_hash,
		       refresh_token_hash, refresh_token_expires_at,
		       reset_token_hash, reset_token_expires_at,
		       created_at, updated_at
		FROM credentials
		WHERE reset_token_hash = $1
	`
	return scanCredential(r.db.QueryRowContext(ctx, query, tokenHash))
}

func (r *credentialsRepo) UpdatePasswordHash(ctx context.Context, accountID, newHash string) error {
	const query = `
		UPDATE credentials
		SET password_hash = $2, updated_at = now()
		WHERE account_id = $1
	`
	return r.mustAffect(ctx, query, accountID, newHash)
}

func (r *credentialsRepo) ReplaceRefreshToken(ctx context.Context, accountID, tokenHash string, expiresAt time.Time) error {
	const query = `
		UPDATE credentials
		SET refresh_token_hash = $2, refresh_token_expires_at = $3, updated_at = now()
		WHERE account_id = $1
	`
	return r.mustAffect(ctx, query, accountID, tokenHash, expiresAt)
}

// RotateRefreshToken swaps the stored fingerprint only when it still equals
// oldHash. The compare happens inside the UPDATE itself, so of two
// concurrent rotations the engine serializes one after the other and the
// loser matches zero rows.
func (r *credentialsRepo) RotateRefreshToken(ctx context.Context, accountID, oldHash, newHash string, expiresAt time.Time) error {
	const query = `
		UPDATE credentials
		SET refresh_token_hash = $3, refresh_token_expires_at = $4, updated_at = now()
		WHERE account_id = $1 AND refresh_token_hash = $2
	`
	return r.mustAffect(ctx, query, accountID, oldHash, newHash, expiresAt)
}

func (r *credentialsRepo) ClearRefreshToken(ctx context.Context, accountID, matchHash string) error {
	if matchHash == "" {
		const query = `
			UPDATE credentials
			SET refresh_token_hash = NULL, refresh_token_expires_at = NULL, updated_at = now()
			WHERE account_id = $1
		`
		_, err := r.db.ExecContext(ctx, query, accountID)
		return err
	}

	const query = `
		UPDATE credentials
		SET refresh_token_hash = NULL, refresh_token_expires_at = NULL, updated_at = now()
		WHERE account_id = $1 AND refresh_token_hash = $2
	`
	// Zero rows just means already logged out.
	_, err := r.db.ExecContext(ctx, query, accountID, matchHash)
	return err
}

func (r *credentialsRepo) SetResetToken(ctx context.Context, accountID, tokenHash string, expiresAt time.Time) error {
	const query = `
		UPDATE credentials
		SET reset_token_hash = $2, reset_token_expires_at = $3, updated_at = now()
		WHERE account_id = $1
	`
	return r.mustAffect(ctx, query, accountID, tokenHash, expiresAt)
}

// ConsumeResetToken clears the token only when it is still the stored one,
// making every reset token single-use even under concurrent submissions.
func (r *credentialsRepo) ConsumeResetToken(ctx context.Context, accountID, tokenHash string) error {
	const query = `
		UPDATE credentials
		SET reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = now()
		WHERE account_id = $1 AND reset_token_hash = $2
	`
	return r.mustAffect(ctx, query, accountID, tokenHash)
}

// mustAffect runs an UPDATE that is expected to hit exactly one row and maps
// "no row matched" to store.ErrNotFound.
func (r *credentialsRepo) mustAffect(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanCredential(row rowScanner) (domain.Credential, error) {
	var c domain.Credential
	var refreshHash, resetHash sql.NullString
	var refreshExp, resetExp sql.NullTime

	err := row.Scan(
		&c.AccountID, &c.PasswordHash,
		&refreshHash, &refreshExp,
		&resetHash, &resetExp,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.Credential{}, mapNotFound(err)
	}

	c.RefreshTokenHash = mapNullString(refreshHash)
	c.RefreshTokenExpiresAt = mapNullTimePtr(refreshExp)
	c.ResetTokenHash = mapNullString(resetHash)
	c.ResetTokenExpiresAt = mapNullTimePtr(resetExp)
	return c, nil
}
