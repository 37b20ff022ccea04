package http

import (
	"net/http"

	"github.com/wayplanhq/wayplan/internal/wayplan/service"
	"github.com/wayplanhq/wayplan/pkg/httpx"
	"github.com/wayplanhq/wayplan/pkg/slogx"
	"github.com/wayplanhq/wayplan/pkg/wayplansdk"
)

type ForgotPasswordHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP starts the reset flow. The response is identical whether or not
// the address belongs to an account.
func (h *ForgotPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req wayplansdk.ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fe := fieldErrors{}
	if req.Email == "" {
		fe.add("email", "is required")
	} else if !validEmail(req.Email) {
		fe.add("email", "is not a valid address")
	}
	if fe.write(w) {
		return
	}

	if err := h.AuthService.ForgotPassword(ctx, req.Email); err != nil {
		log.Error("failed to start password reset", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to start password reset")
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
