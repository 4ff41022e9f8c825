package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/farmstead/internal/farm/billing"
	httpapi "github.com/aussiebroadwan/farmstead/internal/farm/http"
	"github.com/aussiebroadwan/farmstead/internal/farm/metrics"
	"github.com/aussiebroadwan/farmstead/internal/farm/service"
	"github.com/aussiebroadwan/farmstead/internal/farm/store"
	"github.com/aussiebroadwan/farmstead/internal/farm/store/drivers/sqlite"
	"github.com/aussiebroadwan/farmstead/pkg/bus"
	"github.com/aussiebroadwan/farmstead/pkg/jwtx"
	"github.com/aussiebroadwan/farmstead/pkg/slogx"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the farm service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db        store.Store
	keyLoader *KeyLoader
	registry  *prometheus.Registry
	metrics   *metrics.Metrics

	identityService     *service.IdentityService
	accountService      *service.AccountService
	invitationService   *service.InvitationService
	membershipService   *service.MembershipService
	planService         *service.PlanService
	housekeepingService *service.HousekeepingService // nil unless HousekeepingInterval > 0

	bus        *bus.Bus
	billingSub io.Closer

	// stop ends the context background consumers were started with.
	stop context.CancelFunc

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "farm-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	ctx, stop := context.WithCancel(context.Background())
	app.stop = stop
	if err := app.initKeys(ctx); err != nil {
		stop()
		_ = app.db.Close()
		return nil, err
	}

	app.initMetrics()
	app.initServices()

	if err := app.initBilling(ctx); err != nil {
		stop()
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()
	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.keyLoader.Start()
	if app.housekeepingService != nil {
		app.housekeepingService.Start()
	}

	app.logger.Info("farm service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	app.logger.Info("shutting down farm service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.billingSub != nil {
		if err := app.billingSub.Close(); err != nil {
			app.logger.Error("error draining billing subscription", "error", err)
		}
	}
	app.stop()
	app.bus.Close()

	if app.housekeepingService != nil {
		app.housekeepingService.Stop()
	}
	app.keyLoader.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("farm service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

// initKeys loads the identity provider's verification keys. Startup fails
// if none can be loaded; later refreshes only warn.
func (app *Application) initKeys(ctx context.Context) error {
	loader, err := NewKeyLoader(app.cfg, app.logger)
	if err != nil {
		return err
	}
	if err := loader.Load(ctx); err != nil {
		return fmt.Errorf("failed to load verification keys: %w", err)
	}
	app.keyLoader = loader
	return nil
}

func (app *Application) initMetrics() {
	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(app.registry)
}

func (app *Application) initServices() {
	app.identityService = &service.IdentityService{Store: app.db, Metrics: app.metrics}
	app.accountService = &service.AccountService{Store: app.db, Identity: app.identityService}
	app.invitationService = &service.InvitationService{
		Store:    app.db,
		Identity: app.identityService,
		Metrics:  app.metrics,
		TTL:      app.cfg.InvitationTTL,
	}
	app.membershipService = &service.MembershipService{
		Store:    app.db,
		Identity: app.identityService,
		Metrics:  app.metrics,
	}
	app.planService = &service.PlanService{
		Store:    app.db,
		Identity: app.identityService,
		Metrics:  app.metrics,
	}

	if app.cfg.HousekeepingInterval > 0 {
		app.housekeepingService = service.NewHousekeepingService(
			app.invitationService,
			app.logger,
			app.cfg.HousekeepingInterval,
		)
	}
}

// initBilling starts the JetStream plan-change consumer when NATS is
// configured.
func (app *Application) initBilling(ctx context.Context) error {
	if app.cfg.NATSURL == "" {
		app.logger.Info("billing consumer disabled: NATS_URL not set")
		return nil
	}

	b, err := bus.New(app.cfg.NATSURL,
		nats.Name("farm-service"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to nats: %w", err)
	}
	if err := b.EnsureStream(app.cfg.BillingStream, app.cfg.BillingSubject); err != nil {
		b.Close()
		return err
	}

	consumer := &billing.Consumer{Plans: app.planService, Logger: app.logger}
	sub, err := consumer.Start(ctx, b, app.cfg.BillingSubject, app.cfg.BillingDurable)
	if err != nil {
		b.Close()
		return err
	}

	app.bus = b
	app.billingSub = sub
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keyLoader.Keys,
		jwtx.NewVerifier(app.keyLoader.Keys, app.cfg.Issuer, app.cfg.Audience),
		BuildVersion,
		app.db,
		app.logger,
	)

	router.IdentityService = app.identityService
	router.AccountService = app.accountService
	router.InvitationService = app.invitationService
	router.MembershipService = app.membershipService
	router.PlanService = app.planService
	router.BillingSecret = app.cfg.BillingWebhookSecret
	router.Gatherer = app.registry
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
