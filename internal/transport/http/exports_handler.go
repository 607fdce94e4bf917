package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "tradepulse/internal/errors"
	"tradepulse/internal/files"
)

// ExportsHandler serves the CSV reports the pipeline has generated.
type ExportsHandler struct {
	catalog      *files.Catalog
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportsHandler creates a new exports handler.
func NewExportsHandler(catalog *files.Catalog, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportsHandler {
	return &ExportsHandler{
		catalog:      catalog,
		logger:       logger.With(slog.String("component", "exports_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the export routes.
func (h *ExportsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{name}", h.Download)
	return r
}

// List handles GET /api/v1/exports.
func (h *ExportsHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.catalog.ListReports()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"reports": reports,
		"count":   len(reports),
	})
}

// Download handles GET /api/v1/exports/{name} and streams the report.
func (h *ExportsHandler) Download(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	f, err := h.catalog.Open(name)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := io.Copy(w, f); err != nil {
		h.logger.ErrorContext(r.Context(), "streaming report failed",
			slog.String("name", name),
			slog.String("error", err.Error()))
	}
}
