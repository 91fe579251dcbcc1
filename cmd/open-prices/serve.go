package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/openfoodfacts/open-prices/internal/database/migrations"
	"github.com/openfoodfacts/open-prices/internal/http/mw"
	"github.com/openfoodfacts/open-prices/internal/http/server"
	"github.com/openfoodfacts/open-prices/internal/repository"
	"github.com/openfoodfacts/open-prices/internal/service"
	"github.com/openfoodfacts/open-prices/internal/shutdown"
	"github.com/openfoodfacts/open-prices/internal/version"
	"github.com/openfoodfacts/open-prices/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Serve the API under /api, the admin site under /admin and the home page
at /. Unless AUTO_MIGRATE=false the schema is upgraded to head first.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// loadChain validates the registered migrations. serve refuses to start on
// an invalid chain whether or not it migrates.
var loadChain = migrations.Load

func runServe(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	cfg, logger := e.cfg, e.logger

	v := version.Get()
	logger.Info("starting open-prices",
		"version", v.Version,
		"commit", v.Commit,
		"built", v.Date,
		"go_version", v.GoVersion,
	)

	db, err := e.openDB()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	chain, err := loadChain()
	if err != nil {
		return fmt.Errorf("invalid migration chain: %w", err)
	}
	if cfg.AutoMigrate {
		migrator := migrations.NewWithChain(db.DB, db.Dialect, chain, logger)
		if err := migrator.Upgrade(e.ctx, migrations.Head); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	repos := repository.NewRepositories(db)
	services, err := service.NewServices(cfg, db, repos, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	dash, err := services.Admin.Dashboard(e.ctx)
	if err != nil {
		logger.Warn("failed to read schema revision", "error", err)
	} else {
		logger.Info("database schema ready", "dialect", dash.Dialect, "revision", dash.Revision, "pending", dash.Pending)
		if !dash.UpToDate() {
			logger.Warn("database schema is behind head; run open-prices migrate", "head", dash.HeadRevision)
		}
	}

	var metrics *mw.Metrics
	if cfg.MetricsEnabled {
		metrics = mw.NewMetrics()
	}

	idle := shutdown.NewIdleMonitor(shutdown.IdleConfig{
		Timeout:         cfg.IdleTimeout,
		ExcludePrefixes: []string{"/healthz", "/readyz", "/metrics"},
		Logger:          logger,
	})

	router, err := server.NewRouter(server.Deps{
		Config:   cfg,
		DB:       db,
		Services: services,
		Logger:   logger,
		Metrics:  metrics,
		Idle:     idle,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(e.ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	idle.Start()
	defer idle.Stop()

	statsWorker := worker.New(services.Stats, worker.Config{Interval: cfg.StatsRefreshInterval}, logger)
	statsWorker.Start(ctx)
	defer statsWorker.Stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.Port, "base_url", cfg.BaseURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down server")
	case <-idle.Done():
		logger.Info("shutting down idle server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
