package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/wayplanhq/wayplan/internal/wayplan/domain"
	"github.com/wayplanhq/wayplan/pkg/httpx"
)

const (
	maxBodyBytes      = 1 << 20
	minPasswordLength = 8
	maxPasswordLength = 512
	maxUserNameLength = 64
)

// decodeJSON reads the request body into dst. On failure it writes the error
// response itself and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Request body must be valid JSON")
		return false
	}
	return true
}

// fieldErrors accumulates per-field validation failures for the 422 envelope.
type fieldErrors map[string][]string

func (fe fieldErrors) add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// write flushes accumulated errors as a validation response. Returns true if
// anything was written.
func (fe fieldErrors) write(w http.ResponseWriter) bool {
	if len(fe) == 0 {
		return false
	}
	httpx.WriteValidationError(w, fe)
	return true
}

func validEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}

func checkPassword(fe fieldErrors, field, password string) {
	switch {
	case password == "":
		fe.add(field, "is required")
	case len(password) < minPasswordLength:
		fe.add(field, "must be at least 8 characters")
	case len(password) > maxPasswordLength:
		fe.add(field, "is too long")
	}
}

// principalFrom extracts the authenticated caller placed in the context by
// the authn middleware.
func principalFrom(r *http.Request) (*domain.Principal, bool) {
	claims, ok := httpx.AuthFromContext(r.Context())
	if !ok {
		return nil, false
	}
	return &domain.Principal{AccountID: claims.Subject, Roles: claims.Roles}, true
}
