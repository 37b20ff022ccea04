package postgres

import (
	"context"

	"github.com/wayplanhq/wayplan/internal/wayplan/domain"
)

// tripsRepo deliberately carries no owner predicates in its SQL. The trips
// table is row-secured; visibility comes from the account id bound into the
// connection's session state, enforced by the engine's policy.
type tripsRepo struct {
	db dbtx
}

func (r *tripsRepo) CreateTrip(ctx context.Context, t domain.Trip) error {
	const query = `
		INSERT INTO trips (id, account_id, name, destination, starts_on, ends_on, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.AccountID, t.Name, t.Destination,
		t.StartsOn, t.EndsOn, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

func (r *tripsRepo) GetTripByID(ctx context.Context, id string) (domain.Trip, error) {
	const query = `
		SELECT id, account_id, name, destination, starts_on, ends_on, created_at, updated_at
		FROM trips
		WHERE id = $1
	`
	var t domain.Trip
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.AccountID, &t.Name, &t.Destination,
		&t.StartsOn, &t.EndsOn, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return domain.Trip{}, mapNotFound(err)
	}
	return t, nil
}

func (r *tripsRepo) ListTrips(ctx context.Context) ([]domain.Trip, error) {
	const query = `
		SELECT id, account_id, name, destination, starts_on, ends_on, created_at, updated_at
		FROM trips
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []domain.Trip
	for rows.Next() {
		var t domain.Trip
		if err := rows.Scan(
			&t.ID, &t.AccountID, &t.Name, &t.Destination,
			&t.StartsOn, &t.EndsOn, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}
