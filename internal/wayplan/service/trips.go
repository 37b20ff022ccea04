package service

import (
	"context"
	"errors"
	"time"

	"github.com/wayplanhq/wayplan/internal/wayplan/domain"
	"github.com/wayplanhq/wayplan/internal/wayplan/store"
	"github.com/wayplanhq/wayplan/pkg/idx"
)

var ErrTripNotFound = errors.New("trip_not_found")

// TripService is the thin CRUD layer over the trips table. It never filters
// by owner itself: every call runs inside a session bound to the caller's
// account, and the database row policies scope what is visible.
type TripService struct {
	Store store.Store

	Now func() time.Time
}

func (s *TripService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// CreateTripInput carries the caller-supplied trip fields.
type CreateTripInput struct {
	Name        string
	Destination string
	StartsOn    time.Time
	EndsOn      time.Time
}

func (s *TripService) CreateTrip(ctx context.Context, principal *domain.Principal, in CreateTripInput) (domain.Trip, error) {
	now := s.now()
	trip := domain.Trip{
		ID:          idx.New().String(),
		AccountID:   principal.AccountID,
		Name:        in.Name,
		Destination: in.Destination,
		StartsOn:    in.StartsOn,
		EndsOn:      in.EndsOn,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.Store.WithSession(ctx, principal, func(sess store.Session) error {
		return sess.Trips().CreateTrip(ctx, trip)
	})
	if err != nil {
		return domain.Trip{}, err
	}
	return trip, nil
}

func (s *TripService) ListTrips(ctx context.Context, principal *domain.Principal) ([]domain.Trip, error) {
	var trips []domain.Trip
	err := s.Store.WithSession(ctx, principal, func(sess store.Session) error {
		ts, err := sess.Trips().ListTrips(ctx)
		if err != nil {
			return err
		}
		trips = ts
		return nil
	})
	if err != nil {
		return nil, err
	}
	return trips, nil
}

func (s *TripService) GetTrip(ctx context.Context, principal *domain.Principal, id string) (domain.Trip, error) {
	var trip domain.Trip
	err := s.Store.WithSession(ctx, principal, func(sess store.Session) error {
		t, err := sess.Trips().GetTripByID(ctx, id)
		if err != nil {
			return err
		}
		trip = t
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.Trip{}, ErrTripNotFound
	}
	if err != nil {
		return domain.Trip{}, err
	}
	return trip, nil
}
