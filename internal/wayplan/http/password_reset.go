package http

import (
	"errors"
	"net/http"

	"github.com/wayplanhq/wayplan/internal/wayplan/service"
	"github.com/wayplanhq/wayplan/pkg/httpx"
	"github.com/wayplanhq/wayplan/pkg/slogx"
	"github.com/wayplanhq/wayplan/pkg/wayplansdk"
)

type ResetPasswordHandler struct {
	AuthService *service.AuthService
}

func (h *ResetPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req wayplansdk.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fe := fieldErrors{}
	if req.Token == "" {
		fe.add("token", "is required")
	}
	checkPassword(fe, "new_password", req.NewPassword)
	if fe.write(w) {
		return
	}

	err := h.AuthService.ResetPassword(ctx, req.Token, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResetTokenNotFound):
			httpx.WriteError(w, http.StatusNotFound, "token_not_found", "Reset token is unknown or already used")
		case errors.Is(err, service.ErrResetTokenExpired):
			httpx.WriteError(w, http.StatusBadRequest, "token_expired", "Reset token has expired")
		case errors.Is(err, service.ErrSamePassword):
			httpx.WriteError(w, http.StatusBadRequest, "same_password", "New password must differ from the current one")
		default:
			log.Error("failed to reset password", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to reset password")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
