package http

import (
	"net/http"

	"github.com/wayplanhq/wayplan/internal/wayplan/service"
	"github.com/wayplanhq/wayplan/pkg/httpx"
	"github.com/wayplanhq/wayplan/pkg/slogx"
	"github.com/wayplanhq/wayplan/pkg/wayplansdk"
)

type LogoutHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP revokes the presented refresh token. Logout is idempotent, so a
// token that is already dead still yields the same confirmation.
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req wayplansdk.LogoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		fe := fieldErrors{}
		fe.add("refresh_token", "is required")
		fe.write(w)
		return
	}

	if err := h.AuthService.Logout(ctx, req.RefreshToken); err != nil {
		log.Error("failed to log out", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to log out")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, wayplansdk.MessageResponse{Message: "Logged out"})
}
