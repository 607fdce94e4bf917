package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tradepulse/internal/bridge"
	"tradepulse/internal/config"
	"tradepulse/internal/infrastructure"
	"tradepulse/internal/ledger"
	"tradepulse/internal/metrics"
	"tradepulse/internal/pipeline"
	"tradepulse/internal/store"
	handlers "tradepulse/internal/transport/http"
)

// Application wires configuration, storage, the ingestion pipeline and
// the HTTP server together and owns their lifecycle.
type Application struct {
	Config   *config.Config
	Store    *store.Store
	Ledger   *ledger.Ledger
	Pipeline *pipeline.Pipeline
	Metrics  *metrics.Metrics
	Mapper   *bridge.Mapper
	Router   http.Handler
	Server   *http.Server
	Logger   *slog.Logger

	stopWorkers context.CancelFunc
}

// NewApplication builds the application from configuration.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	mapper, err := bridge.Load(cfg.Pipeline.MappingFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load country mapping: %w", err)
	}

	st, err := store.Open(cfg.Database.Path, cfg.Database.BusyTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	m := metrics.New()
	led := ledger.New(st, logger, cfg.Pipeline.DefaultCreator)
	pipe := pipeline.New(cfg.Pipeline, st, led, mapper, m, cfg.Paths.ExportDir, logger)

	app := &Application{
		Config:   cfg,
		Store:    st,
		Ledger:   led,
		Pipeline: pipe,
		Metrics:  m,
		Mapper:   mapper,
		Logger:   logger,
	}

	app.Router = handlers.NewRouter(handlers.RouterDeps{
		Config:   cfg,
		Store:    st,
		Ledger:   led,
		Pipeline: pipe,
		Metrics:  m,
		Logger:   logger,
	})
	app.createServer()
	return app, nil
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start launches the pipeline workers and the HTTP server. A server
// failure cancels the supplied context through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "starting application",
		slog.Int("port", a.Config.Server.Port),
		slog.Int("workers", a.Config.Pipeline.Workers),
		slog.String("database", a.Config.Database.Path),
		slog.String("level", a.Config.Logging.Level))

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	a.stopWorkers = stopWorkers
	a.Pipeline.Start(workerCtx)

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop drains the HTTP server and the pipeline workers, then closes
// the database.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.stopWorkers != nil {
		a.stopWorkers()
	}
	if err := a.Pipeline.Wait(); err != nil {
		a.Logger.ErrorContext(ctx, "pipeline worker error", slog.String("error", err.Error()))
	}

	if err := a.Store.Close(); err != nil {
		a.Logger.ErrorContext(ctx, "error closing database", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return nil
}

// Run runs the application until interrupted.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
