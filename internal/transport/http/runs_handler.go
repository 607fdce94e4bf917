package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "tradepulse/internal/errors"
	custommw "tradepulse/internal/middleware"
	"tradepulse/internal/pipeline"
	"tradepulse/internal/store"
	"tradepulse/pkg/contracts/domain"
)

// RunsHandler exposes the processing run ledger and run dispatch.
type RunsHandler struct {
	store        *store.Store
	queue        *pipeline.Pipeline
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validator    *custommw.ValidationMiddleware
	params       *custommw.QueryParamValidator
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(s *store.Store, queue *pipeline.Pipeline, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *RunsHandler {
	return &RunsHandler{
		store:        s,
		queue:        queue,
		logger:       logger.With(slog.String("component", "runs_handler")),
		errorHandler: errorHandler,
		validator:    custommw.NewValidationMiddleware(logger, errorHandler),
		params:       custommw.NewQueryParamValidator(logger, errorHandler),
	}
}

// Routes returns the run routes.
func (h *RunsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(custommw.ContentTypeValidator("application/json")).Post("/", h.Dispatch)
	r.Get("/", h.List)
	r.Get("/{seq}", h.Get)
	return r
}

// dispatchRequest is the POST /api/v1/runs body.
type dispatchRequest struct {
	Seq        int64            `json:"seq" validate:"required,min=1"`
	ReplaceAll bool             `json:"replace_all"`
	Index      domain.IndexKind `json:"index,omitempty" validate:"omitempty,oneof=economic_freedom corruption_perception human_development world_competitiveness"`
}

// Dispatch handles POST /api/v1/runs: queue a pending run for
// execution and answer 202 while it proceeds in the background.
func (h *RunsHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req dispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	run, err := h.store.GetRun(r.Context(), req.Seq)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if run.Status != domain.RunPending {
		h.errorHandler.HandleError(w, r, notPendingError(run))
		return
	}
	if run.Job == domain.JobSocioeconomic && req.Index == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("index",
			"index is required for socioeconomic runs"))
		return
	}

	// Claim the run before queueing so a concurrent dispatch of the
	// same sequence cannot be accepted twice.
	claimed, err := h.store.ClaimRun(r.Context(), run.Seq)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if !claimed {
		if current, err := h.store.GetRun(r.Context(), run.Seq); err == nil {
			run = current
		}
		h.errorHandler.HandleError(w, r, notPendingError(run))
		return
	}

	if err := h.queue.Enqueue(r.Context(), pipeline.Request{
		Seq:        run.Seq,
		Job:        run.Job,
		ReplaceAll: req.ReplaceAll,
		Index:      req.Index,
	}); err != nil {
		if relErr := h.store.ReleaseRun(r.Context(), run.Seq); relErr != nil {
			h.logger.ErrorContext(r.Context(), "failed to release claimed run",
				slog.Int64("seq", run.Seq),
				slog.String("error", relErr.Error()))
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}
	run.Status = domain.RunRunning

	h.logger.InfoContext(r.Context(), "run dispatched",
		slog.Int64("seq", run.Seq),
		slog.String("job", string(run.Job)))
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, run)
}

// List handles GET /api/v1/runs with job, status and limit filters.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.params.ValidateInt(w, r, "limit", 1, 1000, 100)
	if !ok {
		return
	}
	job, ok := h.params.ValidateEnum(w, r, "job", jobNames(), "")
	if !ok {
		return
	}
	status, ok := h.params.ValidateEnum(w, r, "status", statusNames(), "")
	if !ok {
		return
	}

	filter := store.RunFilter{
		Job:    domain.Job(job),
		Status: domain.RunStatus(status),
		Limit:  limit,
	}
	runs, err := h.store.ListRuns(r.Context(), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if runs == nil {
		runs = []*domain.ProcessingRun{}
	}
	render.JSON(w, r, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// Get handles GET /api/v1/runs/{seq}.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	seq, err := strconv.ParseInt(chi.URLParam(r, "seq"), 10, 64)
	if err != nil || seq < 1 {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("seq", "seq must be a positive integer"))
		return
	}

	run, err := h.store.GetRun(r.Context(), seq)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, run)
}

func notPendingError(run *domain.ProcessingRun) *apierrors.APIError {
	return apierrors.NewWithDetails(
		http.StatusConflict, "RUN_NOT_PENDING",
		"run has already been dispatched",
		map[string]interface{}{"seq": run.Seq, "status": run.Status},
	)
}

func statusNames() []string {
	return []string{
		string(domain.RunPending),
		string(domain.RunRunning),
		string(domain.RunSucceeded),
		string(domain.RunFailed),
	}
}
