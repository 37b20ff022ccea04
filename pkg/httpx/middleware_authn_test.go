package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wayplanhq/wayplan/pkg/httpx"
	"github.com/wayplanhq/wayplan/pkg/jwtx"
)

func newAuthnIssuer(t *testing.T) *jwtx.Issuer {
	t.Helper()
	iss, err := jwtx.NewIssuer(
		[]byte("0123456789abcdef0123456789abcdef"),
		"wayplan-test", 15*time.Minute, 7*24*time.Hour,
	)
	require.NoError(t, err)
	return iss
}

func TestAuthnMiddleware(t *testing.T) {
	iss := newAuthnIssuer(t)

	var gotClaims jwtx.Claims
	var gotOK bool
	handler := httpx.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotClaims, gotOK = httpx.AuthFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}),
		httpx.AuthnMiddleware(iss),
	)

	t.Run("valid token reaches the handler with claims", func(t *testing.T) {
		token, err := iss.IssueAccess("account-1", []string{"user"}, time.Now())
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, gotOK)
		require.Equal(t, "account-1", gotClaims.Subject)
		require.Equal(t, []string{"user"}, gotClaims.Roles)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("refresh tokens cannot act as access tokens", func(t *testing.T) {
		refresh, err := iss.IssueRefresh("account-1", time.Now())
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+refresh)
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
