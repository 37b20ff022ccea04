package httpx

import (
	"context"

	"github.com/wayplanhq/wayplan/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyAccountID ctxKey = "account_id"
	CtxKeyClaims    ctxKey = "claims"
)

// AuthFromContext returns the verified access-token claims for the request,
// or ok=false when the request carried no valid bearer token. Callers decide
// the HTTP mapping; nothing here panics on an anonymous request.
func AuthFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return c, ok
}

// AccountIDFromContext returns the authenticated account id, or ok=false on
// an anonymous request.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(CtxKeyAccountID).(string)
	return id, ok
}
