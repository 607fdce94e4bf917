package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"tradepulse/internal/config"
	apierrors "tradepulse/internal/errors"
	"tradepulse/internal/ledger"
	"tradepulse/internal/metrics"
	"tradepulse/internal/validation"
	"tradepulse/pkg/contracts/domain"
)

// FilesHandler accepts source file uploads and registers pending runs
// for them.
type FilesHandler struct {
	cfg          *config.Config
	ledger       *ledger.Ledger
	metrics      *metrics.Metrics
	validator    *validation.UploadValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewFilesHandler creates a new files handler.
func NewFilesHandler(cfg *config.Config, l *ledger.Ledger, m *metrics.Metrics, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *FilesHandler {
	return &FilesHandler{
		cfg:          cfg,
		ledger:       l,
		metrics:      m,
		validator:    validation.NewUploadValidator(cfg.Server.MaxUploadBytes, logger),
		logger:       logger.With(slog.String("component", "files_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the file upload routes.
func (h *FilesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Upload)
	return r
}

// Upload handles POST /api/v1/files. The multipart form carries the
// source file plus the job it is destined for; the stored copy gets a
// unique name and a pending ledger entry.
func (h *FilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.cfg.Server.MaxUploadBytes); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusRequestEntityTooLarge,
			"PAYLOAD_TOO_LARGE",
			"Uploaded file exceeds the size limit",
			map[string]interface{}{"max_bytes": h.cfg.Server.MaxUploadBytes},
		))
		return
	}

	job, ok := parseJob(r.FormValue("job"))
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("job",
			fmt.Sprintf("job must be one of: %s", strings.Join(jobNames(), ", "))))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "file field is required"))
		return
	}
	defer file.Close()

	if err := h.validator.ValidateUpload(header.Filename, header.Size); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.FromProcessing(err))
		return
	}

	storedName := fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(header.Filename))
	storedPath := h.cfg.UploadPath(storedName)
	if err := h.saveUpload(file, storedPath); err != nil {
		h.logger.ErrorContext(r.Context(), "cannot store upload",
			slog.String("file", header.Filename),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	run, err := h.ledger.Register(r.Context(), job, header.Filename, storedPath)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.metrics.ObserveUpload(job)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, run)
}

func (h *FilesHandler) saveUpload(src io.Reader, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperr(err, "creating upload directory")
	}
	dst, err := os.Create(path)
	if err != nil {
		return apperr(err, "creating stored file")
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return apperr(err, "writing stored file")
	}
	return nil
}

func apperr(err error, msg string) error {
	return apierrors.WrapProcessing(apierrors.CodeSystem, err, msg)
}

func parseJob(s string) (domain.Job, bool) {
	job := domain.Job(s)
	switch job {
	case domain.JobIndicator, domain.JobTradePartner, domain.JobCustomsCountry,
		domain.JobCustomsExport, domain.JobCustomsImport, domain.JobSocioeconomic:
		return job, true
	}
	return "", false
}

func jobNames() []string {
	return []string{
		string(domain.JobIndicator),
		string(domain.JobTradePartner),
		string(domain.JobCustomsCountry),
		string(domain.JobCustomsExport),
		string(domain.JobCustomsImport),
		string(domain.JobSocioeconomic),
	}
}
