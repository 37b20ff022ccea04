package http

import (
	"errors"
	"net/http"

	"github.com/wayplanhq/wayplan/internal/wayplan/service"
	"github.com/wayplanhq/wayplan/pkg/httpx"
	"github.com/wayplanhq/wayplan/pkg/slogx"
	"github.com/wayplanhq/wayplan/pkg/wayplansdk"
)

type ChangePasswordHandler struct {
	AuthService *service.AuthService
}

func (h *ChangePasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	principal, ok := principalFrom(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "Authentication required")
		return
	}

	var req wayplansdk.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fe := fieldErrors{}
	if req.CurrentPassword == "" {
		fe.add("current_password", "is required")
	}
	checkPassword(fe, "new_password", req.NewPassword)
	if fe.write(w) {
		return
	}

	err := h.AuthService.ChangePassword(ctx, principal, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordMismatch):
			httpx.WriteError(w, http.StatusBadRequest, "current_password_mismatch", "Current password is incorrect")
		case errors.Is(err, service.ErrSamePassword):
			httpx.WriteError(w, http.StatusBadRequest, "same_password", "New password must differ from the current one")
		default:
			log.Error("failed to change password", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to change password")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
