package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	httpapi "github.com/wayplanhq/wayplan/internal/wayplan/http"
	"github.com/wayplanhq/wayplan/internal/wayplan/service"
	"github.com/wayplanhq/wayplan/internal/wayplan/store"
	"github.com/wayplanhq/wayplan/internal/wayplan/store/drivers/postgres"
	"github.com/wayplanhq/wayplan/pkg/cryptox"
	"github.com/wayplanhq/wayplan/pkg/jwtx"
	"github.com/wayplanhq/wayplan/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application encapsulates the WayPlan service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	hasher *cryptox.Hasher
	issuer *jwtx.Issuer

	authService *service.AuthService
	tripService *service.TripService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "wayplan",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(cfg.PepperFile)

	secret, err := cfg.JWTSecretBytes()
	if err != nil {
		return nil, err
	}
	issuer, err := jwtx.NewIssuer(secret, cfg.TokenIssuer, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}
	app.issuer = issuer

	limit := cfg.HashConcurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	app.hasher = cryptox.NewHasher(limit)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("wayplan service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down wayplan service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("wayplan service stopped")
	return nil
}

// initDatabase opens the Postgres pool and applies migrations.
func (app *Application) initDatabase() error {
	db, err := postgres.NewStore(app.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:         app.db,
		Hasher:        app.hasher,
		Tokens:        app.issuer,
		Mailer:        service.LogMailer{},
		ResetTokenTTL: app.cfg.ResetTokenTTL,
	}
	app.tripService = &service.TripService{Store: app.db}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.issuer, BuildVersion, app.db, app.logger)

	router.AuthService = app.authService
	router.TripService = app.tripService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
