package postgres

import (
	"context"
	"strings"

	"github.com/wayplanhq/wayplan/internal/wayplan/domain"
	"github.com/wayplanhq/wayplan/internal/wayplan/store"
)

type accountsRepo struct {
	db dbtx
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	const query = `
		INSERT INTO accounts (id, user_name, email, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.UserName,
		a.Email,
		strings.Join(a.Roles, " "),
		a.CreatedAt,
		a.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	const query = `
		SELECT id, user_name, email, roles, created_at, updated_at
		FROM accounts
		WHERE email = $1
	`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, email))
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	const query = `
		SELECT id, user_name, email, roles, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, id))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *accountsRepo) scanAccount(row rowScanner) (domain.Account, error) {
	var a domain.Account
	var roles string
	err := row.Scan(&a.ID, &a.UserName, &a.Email, &roles, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	a.Roles = strings.Fields(roles)
	return a, nil
}
