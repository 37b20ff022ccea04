package http

import (
	"errors"
	"net/http"

	"github.com/wayplanhq/wayplan/internal/wayplan/domain"
	"github.com/wayplanhq/wayplan/internal/wayplan/service"
	"github.com/wayplanhq/wayplan/pkg/httpx"
	"github.com/wayplanhq/wayplan/pkg/slogx"
	"github.com/wayplanhq/wayplan/pkg/wayplansdk"
)

type LoginHandler struct {
	AuthService *service.AuthService
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req wayplansdk.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fe := fieldErrors{}
	if req.Email == "" {
		fe.add("email", "is required")
	}
	if req.Password == "" {
		fe.add("password", "is required")
	}
	if fe.write(w) {
		return
	}

	pair, profile, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Email or password is incorrect")
			return
		}
		log.Error("failed to log in", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to log in")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, wayplansdk.LoginResponse{
		TokenResponse: tokenResponse(pair),
		Profile:       profileResponse(profile),
	})
}

func profileResponse(profile domain.Profile) wayplansdk.ProfileResponse {
	return wayplansdk.ProfileResponse{
		ID:        profile.ID,
		UserName:  profile.UserName,
		Email:     profile.Email,
		Roles:     profile.Roles,
		CreatedAt: profile.CreatedAt,
	}
}

func tokenResponse(pair *domain.TokenPair) wayplansdk.TokenResponse {
	return wayplansdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int64(pair.ExpiresIn.Seconds()),
	}
}
