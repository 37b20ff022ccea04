package http

import (
	"errors"
	"net/http"

	"github.com/wayplanhq/wayplan/internal/wayplan/service"
	"github.com/wayplanhq/wayplan/pkg/httpx"
	"github.com/wayplanhq/wayplan/pkg/slogx"
	"github.com/wayplanhq/wayplan/pkg/wayplansdk"
)

type RegisterHandler struct {
	AuthService *service.AuthService
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req wayplansdk.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fe := fieldErrors{}
	if req.UserName == "" {
		fe.add("user_name", "is required")
	} else if len(req.UserName) > maxUserNameLength {
		fe.add("user_name", "is too long")
	}
	if req.Email == "" {
		fe.add("email", "is required")
	} else if !validEmail(req.Email) {
		fe.add("email", "is not a valid address")
	}
	checkPassword(fe, "password", req.Password)
	if fe.write(w) {
		return
	}

	profile, err := h.AuthService.Register(ctx, req.UserName, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			httpx.WriteError(w, http.StatusConflict, "email_already_exists", "An account with this email already exists")
			return
		}
		log.Error("failed to register account", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to register account")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, profileResponse(profile))
}
