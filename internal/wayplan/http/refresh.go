package http

import (
	"errors"
	"net/http"

	"github.com/wayplanhq/wayplan/internal/wayplan/service"
	"github.com/wayplanhq/wayplan/pkg/httpx"
	"github.com/wayplanhq/wayplan/pkg/slogx"
	"github.com/wayplanhq/wayplan/pkg/wayplansdk"
)

type RefreshHandler struct {
	AuthService *service.AuthService
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req wayplansdk.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		fe := fieldErrors{}
		fe.add("refresh_token", "is required")
		fe.write(w)
		return
	}

	pair, err := h.AuthService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_refresh_token", "Refresh token is invalid, expired or revoked")
			return
		}
		log.Error("failed to rotate refresh token", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to refresh session")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}
