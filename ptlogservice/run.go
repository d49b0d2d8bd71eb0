// Package ptlogservice wires configuration, storage, the AI gateway and the
// HTTP server into a runnable logbook service.
package ptlogservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/ptlog/ptlog/internal/api"
	"github.com/ptlog/ptlog/internal/auth"
	"github.com/ptlog/ptlog/internal/config"
	"github.com/ptlog/ptlog/internal/enhance"
	"github.com/ptlog/ptlog/internal/export"
	"github.com/ptlog/ptlog/internal/health"
	"github.com/ptlog/ptlog/internal/logger"
	"github.com/ptlog/ptlog/internal/services"
	"github.com/ptlog/ptlog/internal/store"
	"github.com/ptlog/ptlog/internal/store/postgres"
	"github.com/ptlog/ptlog/internal/store/sqlite"
	"github.com/ptlog/ptlog/internal/week"
)

// Run starts the logbook service HTTP server and blocks until shutdown or
// error.
func Run(cfg *config.Config) error {
	log := logger.New("ptlog-service")

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("training_start", cfg.TrainingStart).
		Bool("enhancement_enabled", cfg.EnhancementEnabled()).
		Msg("Logbook service starting")

	ctx, stop := newServerContext()
	defer stop()

	cal, err := cfg.Calendar()
	if err != nil {
		log.Error().Err(err).Msg("Invalid training calendar")
		return err
	}

	st, err := newStore(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Store adapter unavailable")
		return err
	}

	router := buildRouter(cfg, cal, st)

	startHealthCheckers(ctx, cfg, log, st)

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}
}

// newStore opens the configured storage backend with its schema applied.
func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return postgres.NewWithDB(db), nil
	case "sqlite":
		return sqlite.OpenStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}

// buildRouter wires domain services and HTTP routes.
func buildRouter(cfg *config.Config, cal week.Calendar, st store.Store) *mux.Router {
	userSvc := services.NewUserService(st)
	reportSvc := services.NewReportService(st, cal)
	checklistSvc := services.NewChecklistService(st)
	snapshotSvc := services.NewSnapshotService(st, reportSvc, checklistSvc)
	billingSvc := services.NewBillingService(st)

	var provider enhance.Provider
	if cfg.EnhancementEnabled() {
		provider = enhance.NewAnthropicProvider(
			cfg.ProviderBaseURL,
			cfg.ProviderAPIKey,
			cfg.ProviderModel,
			time.Duration(cfg.ProviderTimeoutSeconds)*time.Second,
		)
	}
	gateway := enhance.NewService(
		provider, reportSvc, checklistSvc, snapshotSvc, billingSvc, userSvc,
		time.Duration(cfg.ProviderTimeoutSeconds)*time.Second,
		cfg.ProviderMaxTokens,
	)

	return api.NewRouter(api.Deps{
		Users:      userSvc,
		Reports:    reportSvc,
		Checklists: checklistSvc,
		Snapshots:  snapshotSvc,
		Billing:    billingSvc,
		Gateway:    gateway,
		Renderer:   export.NewTextRenderer(),
		Authorizer: auth.NewLocalDevAuthorizer(),
	})
}

// startHealthCheckers starts the store probe and the service aggregator, and
// binds service health to the /api/health endpoint.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store) {
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second

	var checkers []health.HealthChecker
	if pinger, ok := st.(health.HealthPinger); ok {
		storeChecker := health.NewPingChecker("store", pinger, log, probeTimeout)
		go storeChecker.Start(ctx, interval)
		checkers = append(checkers, storeChecker)
	}

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, interval)
	api.BindServiceHealth(svcHealth.IsHealthy)
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
