package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/wayplanhq/wayplan/internal/wayplan/domain"
	"github.com/wayplanhq/wayplan/internal/wayplan/service"
	"github.com/wayplanhq/wayplan/pkg/httpx"
	"github.com/wayplanhq/wayplan/pkg/slogx"
	"github.com/wayplanhq/wayplan/pkg/wayplansdk"
)

type TripsHandler struct {
	TripService *service.TripService
}

func (h *TripsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	principal, ok := principalFrom(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "Authentication required")
		return
	}

	var req wayplansdk.TripRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fe := fieldErrors{}
	if req.Name == "" {
		fe.add("name", "is required")
	}
	startsOn := parseDate(fe, "starts_on", req.StartsOn)
	endsOn := parseDate(fe, "ends_on", req.EndsOn)
	if len(fe) == 0 && endsOn.Before(startsOn) {
		fe.add("ends_on", "must not be before starts_on")
	}
	if fe.write(w) {
		return
	}

	trip, err := h.TripService.CreateTrip(ctx, principal, service.CreateTripInput{
		Name:        req.Name,
		Destination: req.Destination,
		StartsOn:    startsOn,
		EndsOn:      endsOn,
	})
	if err != nil {
		log.Error("failed to create trip", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to create trip")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, tripResponse(trip))
}

func (h *TripsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	principal, ok := principalFrom(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "Authentication required")
		return
	}

	trips, err := h.TripService.ListTrips(ctx, principal)
	if err != nil {
		log.Error("failed to list trips", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list trips")
		return
	}

	resp := wayplansdk.TripListResponse{Trips: make([]wayplansdk.TripResponse, 0, len(trips))}
	for _, t := range trips {
		resp.Trips = append(resp.Trips, tripResponse(t))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *TripsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	principal, ok := principalFrom(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "Authentication required")
		return
	}

	trip, err := h.TripService.GetTrip(ctx, principal, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrTripNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "trip_not_found", "Trip does not exist")
			return
		}
		log.Error("failed to fetch trip", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to fetch trip")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tripResponse(trip))
}

func parseDate(fe fieldErrors, field, value string) time.Time {
	if value == "" {
		fe.add(field, "is required")
		return time.Time{}
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		fe.add(field, "must be a date in 2006-01-02 form")
		return time.Time{}
	}
	return t
}

func tripResponse(t domain.Trip) wayplansdk.TripResponse {
	return wayplansdk.TripResponse{
		ID:          t.ID,
		Name:        t.Name,
		Destination: t.Destination,
		StartsOn:    t.StartsOn.Format(time.DateOnly),
		EndsOn:      t.EndsOn.Format(time.DateOnly),
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
