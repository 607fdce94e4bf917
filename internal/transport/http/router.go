// Package http wires the service's HTTP surface: file uploads, run
// dispatch and inspection, export downloads, health, and the metrics
// scrape endpoint.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"tradepulse/internal/config"
	apierrors "tradepulse/internal/errors"
	"tradepulse/internal/files"
	"tradepulse/internal/ledger"
	"tradepulse/internal/metrics"
	custommw "tradepulse/internal/middleware"
	"tradepulse/internal/pipeline"
	"tradepulse/internal/store"
)

// RouterDeps carries everything the router needs.
type RouterDeps struct {
	Config   *config.Config
	Store    *store.Store
	Ledger   *ledger.Ledger
	Pipeline *pipeline.Pipeline
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// NewRouter builds the chi router with the full middleware chain.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	errorHandler := apierrors.NewErrorHandler(logger, deps.Config.Logging.Level == "debug")

	r := chi.NewRouter()
	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.Metrics(deps.Metrics))
	r.Use(custommw.StructuredLogger(logger))
	r.Use(custommw.Recoverer(logger))
	r.Use(custommw.SecurityHeaders)
	if deps.Config.Security.EnableCORS {
		r.Use(custommw.CORS(custommw.CORSConfig{
			AllowedOrigins: deps.Config.Security.AllowedOrigins,
			Logger:         logger,
		}))
	}
	if deps.Config.Security.RateLimit.Enabled {
		r.Use(custommw.NewRateLimiter(
			deps.Config.Security.RateLimit.RPS,
			deps.Config.Security.RateLimit.Burst,
			logger,
		).Handler)
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	filesHandler := NewFilesHandler(deps.Config, deps.Ledger, deps.Metrics, logger, errorHandler)
	runsHandler := NewRunsHandler(deps.Store, deps.Pipeline, logger, errorHandler)
	exportsHandler := NewExportsHandler(files.NewCatalog(deps.Config.Paths.ExportDir), logger, errorHandler)
	healthHandler := NewHealthHandler(deps.Store, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/health", healthHandler.HealthCheck)
		r.Mount("/files", filesHandler.Routes())
		r.Mount("/runs", runsHandler.Routes())
		r.Mount("/exports", exportsHandler.Routes())
	})

	r.Handle("/metrics", deps.Metrics.Handler())

	return r
}
