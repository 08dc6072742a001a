package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/teller/internal/teller/http"
	"github.com/aussiebroadwan/teller/internal/teller/notify"
	"github.com/aussiebroadwan/teller/internal/teller/redisx"
	"github.com/aussiebroadwan/teller/internal/teller/service"
	"github.com/aussiebroadwan/teller/internal/teller/store"
	"github.com/aussiebroadwan/teller/internal/teller/store/drivers/mongo"
	"github.com/aussiebroadwan/teller/internal/teller/store/drivers/sqlite"
	"github.com/aussiebroadwan/teller/pkg/cryptox"
	"github.com/aussiebroadwan/teller/pkg/httpx"
	"github.com/aussiebroadwan/teller/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the teller service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	redis    *redis.Client    // nil when REDIS_ADDR is unset
	rabbit   *notify.RabbitMQ // nil when RABBITMQ_URI is unset
	keys     *SessionKeys
	sealer   *cryptox.Sealer
	notifier service.Notifier

	// Services
	sessionService      *service.SessionService
	userService         *service.UserService
	authService         *service.AuthService
	mfaService          *service.MFAService
	resetService        *service.ResetService
	ledgerService       *service.LedgerService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "teller",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)
	httpx.SetTrustProxyHeaders(app.cfg.TrustProxyHeaders)

	ctx := context.Background()
	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	if err := app.initBackends(ctx); err != nil {
		_ = app.closeBackends()
		return nil, err
	}

	keys, err := InitSessionKeys(app.cfg, app.logger)
	if err != nil {
		_ = app.closeBackends()
		return nil, err
	}
	app.keys = keys

	sealer, err := InitSealer(app.cfg, app.logger)
	if err != nil {
		_ = app.closeBackends()
		return nil, err
	}
	app.sealer = sealer

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("teller starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"store", app.cfg.Store,
		"mfa_policy", app.cfg.MFAPolicy,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down teller...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	if err := app.closeBackends(); err != nil {
		return err
	}

	app.logger.Info("teller stopped")
	return nil
}

// Handler exposes the configured router, mainly for tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// initDatabase opens the configured credential store and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.Store {
	case StoreMongo:
		db, err = mongo.NewStore(ctx, app.cfg.MongoURI, app.cfg.MongoDatabase)
	default:
		db, err = sqlite.NewStore(sqlite.FileDSN(app.cfg.DatabaseFile))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "store", app.cfg.Store)
	return nil
}

// initBackends connects the optional Redis and RabbitMQ backends.
func (app *Application) initBackends(ctx context.Context) error {
	if app.cfg.RedisAddr != "" {
		rdb, err := redisx.Connect(ctx, app.cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.redis = rdb
		app.logger.Info("redis connected", "addr", app.cfg.RedisAddr)
	} else {
		app.logger.Warn("REDIS_ADDR not set: reset throttling and session revocation disabled")
	}

	if app.cfg.RabbitMQURI != "" {
		rabbit, err := notify.NewRabbitMQ(app.cfg.RabbitMQURI)
		if err != nil {
			return fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		app.rabbit = rabbit
		app.notifier = rabbit
		app.logger.Info("notifications published to rabbitmq", "queue", notify.Queue)
	} else {
		app.notifier = notify.LogNotifier{}
	}

	return nil
}

// closeBackends releases every connection opened so far.
func (app *Application) closeBackends() error {
	var firstErr error

	if app.rabbit != nil {
		if err := app.rabbit.Close(); err != nil {
			app.logger.Error("error closing rabbitmq", "error", err)
		}
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", "error", err)
			firstErr = err
		}
	}

	return firstErr
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	hasher := cryptox.Argon2Hasher{}

	app.sessionService = &service.SessionService{
		Signer:   app.keys.Signer,
		Verifier: app.keys.Verifier,
		Issuer:   app.cfg.Issuer,
		TTL:      app.cfg.SessionTTL,
	}
	if app.redis != nil {
		app.sessionService.Revoker = &redisx.Denylist{Client: app.redis}
	}

	app.mfaService = &service.MFAService{
		Store:               app.db,
		Sealer:              app.sealer,
		Issuer:              "Teller",
		EnableOnFirstVerify: app.cfg.EnableOnFirstVerify,
	}

	app.userService = &service.UserService{
		Store:    app.db,
		Hasher:   hasher,
		Sealer:   app.sealer,
		Notifier: app.notifier,
		Numbers: &service.AccountNumberGenerator{
			Lookup:      app.db.Accounts(),
			Prefix:      app.cfg.AccountNumberPrefix,
			Digits:      app.cfg.AccountNumberDigits,
			MaxAttempts: app.cfg.AccountNumberAttempts,
		},
		RequireApproval: app.cfg.RequireApproval,
	}

	app.authService = &service.AuthService{
		Store:           app.db,
		Hasher:          hasher,
		Sessions:        app.sessionService,
		MFA:             app.mfaService,
		RequireApproval: app.cfg.RequireApproval,
		Policy:          app.cfg.MFAPolicy,
	}
	if app.redis != nil {
		app.authService.Throttle = redisx.NewFixedWindowLimiter(app.redis, app.cfg.AuthAttemptLimit, redisx.DefaultWindow)
	}

	app.resetService = &service.ResetService{
		Store:         app.db,
		Hasher:        hasher,
		Notifier:      app.notifier,
		TTL:           app.cfg.ResetTTL,
		ClientURL:     app.cfg.ClientURL,
		RevealUnknown: app.cfg.ResetRevealUnknown,
	}
	if app.redis != nil {
		app.resetService.Throttle = redisx.NewFixedWindowLimiter(app.redis, redisx.DefaultLimit, redisx.DefaultWindow)
	}

	app.ledgerService = &service.LedgerService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.db, BuildVersion, app.logger)

	// Wire services to router
	router.Sessions = app.sessionService
	router.UserService = app.userService
	router.AuthService = app.authService
	router.MFAService = app.mfaService
	router.ResetService = app.resetService
	router.LedgerService = app.ledgerService
	router.Redis = app.redis
	router.CookieSecure = app.cfg.CookieSecure
	router.AdminToken = app.cfg.AdminToken
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
