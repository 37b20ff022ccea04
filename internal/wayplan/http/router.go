package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/wayplanhq/wayplan/internal/wayplan/service"
	"github.com/wayplanhq/wayplan/internal/wayplan/store"
	"github.com/wayplanhq/wayplan/pkg/httpx"
	"github.com/wayplanhq/wayplan/pkg/jwtx"
	"github.com/wayplanhq/wayplan/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	issuer       *jwtx.Issuer
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store       store.Store
	AuthService *service.AuthService
	TripService *service.TripService
}

func NewRouter(
	issuer *jwtx.Issuer,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		issuer:       issuer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerPasswords()
	r.registerTrips()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /register - strict rate limit by IP (account creation)
	registerHandler := &RegisterHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /login - strict rate limit by IP (credential guessing)
	loginHandler := &LoginHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /refresh - moderate rate limit (legitimate clients rotate often)
	refreshHandler := &RefreshHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(refreshHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /logout - moderate rate limit
	logoutHandler := &LogoutHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(logoutHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerPasswords() {
	// POST /forgot-password - strict rate limit by IP (mail fan-out)
	forgotHandler := &ForgotPasswordHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/forgot-password",
		httpx.Chain(forgotHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /reset-password - strict rate limit by IP (token guessing)
	resetHandler := &ResetPasswordHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/reset-password",
		httpx.Chain(resetHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /change-password - authenticated, strict rate limit by account
	changeHandler := &ChangePasswordHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/change-password",
		httpx.Chain(changeHandler,
			httpx.AuthnMiddleware(r.issuer),
			httpx.RateLimitByAccount(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerTrips() {
	h := &TripsHandler{TripService: r.TripService}

	securedCreate := httpx.Chain(http.HandlerFunc(h.HandleCreate),
		httpx.AuthnMiddleware(r.issuer),
		httpx.RateLimitByAccount(httpx.ModerateLimit),
	)
	securedList := httpx.Chain(http.HandlerFunc(h.HandleList),
		httpx.AuthnMiddleware(r.issuer),
		httpx.RateLimitByAccount(httpx.LenientLimit),
	)
	securedGet := httpx.Chain(http.HandlerFunc(h.HandleGet),
		httpx.AuthnMiddleware(r.issuer),
		httpx.RateLimitByAccount(httpx.LenientLimit),
	)

	r.Mux.Handle("POST /v1/trips", securedCreate)
	r.Mux.Handle("GET /v1/trips", securedList)
	r.Mux.Handle("GET /v1/trips/{id}", securedGet)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems poll)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
