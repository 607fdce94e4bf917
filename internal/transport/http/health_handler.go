package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"tradepulse/internal/config"
	"tradepulse/internal/store"
)

// HealthHandler answers liveness and readiness probes.
type HealthHandler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(s *store.Store, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		store:  s,
		logger: logger.With(slog.String("handler", "health")),
	}
}

// HealthCheck handles GET /api/v1/health. The database ping decides
// between healthy and degraded.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	httpStatus := http.StatusOK
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "database ping failed",
			slog.String("error", err.Error()))
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	render.Status(r, httpStatus)
	render.JSON(w, r, map[string]interface{}{
		"status":  status,
		"app":     config.AppName,
		"version": config.AppVersion,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
