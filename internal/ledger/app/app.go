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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpapi "github.com/aussiebroadwan/quoteledger/internal/ledger/http"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/metrics"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/notify"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/payments"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/service"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/store"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/store/drivers/postgres"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/store/drivers/sqlite"
	"github.com/aussiebroadwan/quoteledger/pkg/jwtx"
	"github.com/aussiebroadwan/quoteledger/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application encapsulates the ledger service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Cancels background work (JWKS refresh) on shutdown
	ctx    context.Context
	cancel context.CancelFunc

	// Core dependencies
	db        store.Store
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	verifier  jwtx.Verifier
	keys      *jwtx.KeySet
	processor payments.Processor
	sender    notify.Sender

	// Services
	userService         *service.UserService
	creditService       *service.CreditService
	proposalService     *service.ProposalService
	billingService      *service.BillingService
	teamService         *service.TeamService
	adminService        *service.AdminService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &Application{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		logger: slogx.New(slogx.Config{
			Service: "ledger-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		cancel()
		return nil, err
	}

	verifier, keys, err := InitVerifier(ctx, cfg, app.logger)
	if err != nil {
		app.closeAll()
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}
	app.verifier = verifier
	app.keys = keys

	if err := app.initSender(); err != nil {
		app.closeAll()
		return nil, err
	}

	app.processor = payments.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	app.initMetrics()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("ledger service starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down ledger service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.closeAll(); err != nil {
		return err
	}

	app.logger.Info("ledger service stopped")
	return nil
}

// closeAll stops background work and releases the sender and database.
func (app *Application) closeAll() error {
	app.cancel()

	if c, ok := app.sender.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			app.logger.Error("error closing notification sender", "error", err)
		}
	}

	if app.db == nil {
		return nil
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// OpenStore opens the configured driver and applies migrations.
func OpenStore(cfg Config) (store.Store, error) {
	var (
		db  store.Store
		err error
	)
	switch cfg.DBDriver {
	case "postgres":
		db, err = postgres.NewStore(cfg.DBDSN)
	default:
		db, err = sqlite.NewStore(cfg.DBDSN)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return db, nil
}

// initDatabase opens the store and applies migrations
func (app *Application) initDatabase() error {
	db, err := OpenStore(app.cfg)
	if err != nil {
		return err
	}
	app.db = db

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DBDriver)
	return nil
}

// initSender picks the notification transport
func (app *Application) initSender() error {
	if app.cfg.Notifier != "pubsub" {
		app.sender = notify.LogSender{Logger: app.logger}
		return nil
	}

	ctx, cancel := context.WithTimeout(app.ctx, 15*time.Second)
	defer cancel()

	sender, err := notify.NewPubSubSender(ctx, app.cfg.PubSubProject, app.cfg.PubSubTopic)
	if err != nil {
		return fmt.Errorf("failed to initialize notification sender: %w", err)
	}
	app.sender = sender
	app.logger.Info("pubsub notifications enabled", "project", app.cfg.PubSubProject, "topic", app.cfg.PubSubTopic)
	return nil
}

// initMetrics registers the ledger collectors on a private registry
func (app *Application) initMetrics() {
	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(app.registry)
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.userService = &service.UserService{
		Store:         app.db,
		Metrics:       app.metrics,
		SignupCredits: app.cfg.SignupCredits,
	}
	app.creditService = &service.CreditService{Store: app.db, Metrics: app.metrics}
	app.proposalService = &service.ProposalService{
		Store:             app.db,
		Notifier:          app.sender,
		Metrics:           app.metrics,
		PublicBaseURL:     app.cfg.PublicBaseURL,
		SignatureMinBytes: app.cfg.SignatureMinBytes,
	}
	app.billingService = &service.BillingService{
		Store:         app.db,
		Processor:     app.processor,
		Notifier:      app.sender,
		Metrics:       app.metrics,
		Catalog:       app.cfg.Catalog(),
		PublicBaseURL: app.cfg.PublicBaseURL,
	}
	app.teamService = &service.TeamService{
		Store:         app.db,
		Notifier:      app.sender,
		Metrics:       app.metrics,
		InviteTTL:     app.cfg.InviteTTL,
		BaseSeats:     app.cfg.TeamBaseSeats,
		PublicBaseURL: app.cfg.PublicBaseURL,
	}
	app.adminService = &service.AdminService{Store: app.db, Metrics: app.metrics}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		app.keys,
		BuildVersion,
		app.db,
		app.registry,
		app.logger,
	)

	router.UserService = app.userService
	router.CreditService = app.creditService
	router.ProposalService = app.proposalService
	router.BillingService = app.billingService
	router.TeamService = app.teamService
	router.AdminService = app.adminService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
