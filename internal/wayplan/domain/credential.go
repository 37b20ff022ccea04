package domain

import "time"

// Credential is the 1:1 companion row of an Account holding everything
// secret-shaped: the password hash and the fingerprints of the single live
// refresh token and the single live password-reset token.
//
// Invariant: at most one live refresh token and one live reset token exist
// per account. Setting a new value supersedes the prior one unconditionally;
// the tokens themselves are stored only as SHA-256 fingerprints.
type Credential struct {
	AccountID    string
	PasswordHash string // argon2id PHC encoded, salt embedded

	RefreshTokenHash      string // fingerprint; empty = no live session
	RefreshTokenExpiresAt *time.Time

	ResetTokenHash      string // fingerprint; empty = no pending reset
	ResetTokenExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
