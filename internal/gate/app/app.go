package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	httpapi "github.com/harborchat/harbor/internal/gate/http"
	"github.com/harborchat/harbor/internal/gate/idp"
	"github.com/harborchat/harbor/internal/gate/service"
	"github.com/harborchat/harbor/internal/gate/session"
	"github.com/harborchat/harbor/internal/gate/store"
	"github.com/harborchat/harbor/internal/gate/store/drivers/sqlite"
	"github.com/harborchat/harbor/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the gateway with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db        store.Store
	idpClient *idp.Client
	issuer    *session.Issuer

	authenticator  *service.Authenticator
	synchronizer   *service.Synchronizer
	accountService *service.AccountService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "gate",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	idpClient, err := idp.NewClient(idp.Config{
		BaseURL:       cfg.IdPURL,
		ClientID:      cfg.ClientID,
		ClientSecret:  cfg.ClientSecret,
		Organization:  cfg.Organization,
		Application:   cfg.Application,
		ApplicationID: cfg.ApplicationID,
		AdminUser:     cfg.AdminUser,
		AdminPassword: cfg.AdminPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize identity provider client: %w", err)
	}
	app.idpClient = idpClient

	issuer, err := session.NewIssuer(cfg.SessionSecret, cfg.PublicOrigin, cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session issuer: %w", err)
	}
	app.issuer = issuer

	app.initServices()
	if err := app.initHTTP(); err != nil {
		return nil, err
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("gate starting", "port", app.cfg.Port, "version", BuildVersion)

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
	app.logger.Info("shutting down gate...")

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

	app.logger.Info("gate stopped")
	return nil
}

// initDatabase initializes the local user store and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
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

func (app *Application) initServices() {
	app.authenticator = &service.Authenticator{IdP: app.idpClient}
	app.synchronizer = &service.Synchronizer{Store: app.db}
	app.accountService = &service.AccountService{IdP: app.idpClient}
}

func (app *Application) initHTTP() error {
	secure := app.cfg.Env != "dev" || strings.HasPrefix(app.cfg.PublicOrigin, "https://")

	router := httpapi.NewRouter(
		app.db,
		app.idpClient,
		app.issuer,
		app.cfg.PublicOrigin,
		secure,
		app.logger,
	)
	router.Authenticator = app.authenticator
	router.Synchronizer = app.synchronizer
	router.AccountService = app.accountService

	// OIDC discovery needs the provider up. A dead provider at boot
	// only disables the browser flow; credential logins still work.
	oauth, err := httpapi.NewOAuthHandler(
		context.Background(),
		app.cfg.IdPURL,
		app.cfg.ClientID,
		app.cfg.ClientSecret,
		app.cfg.PublicOrigin,
		app.synchronizer,
		app.issuer,
		secure,
	)
	if err != nil {
		app.logger.Warn("oidc discovery failed, browser sign-in disabled", "error", err)
	} else {
		router.OAuth = oauth
	}

	router.ApplyRoutes()
	if err := router.RegisterIdPProxy(app.cfg.IdPURL); err != nil {
		return fmt.Errorf("failed to mount identity provider proxy: %w", err)
	}
	app.router = router

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: app.router,
	}
	return nil
}
