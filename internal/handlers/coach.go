package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/zenithflow/zenithflow/internal/database"
	"github.com/zenithflow/zenithflow/internal/hub"
	"github.com/zenithflow/zenithflow/internal/middleware"
	"github.com/zenithflow/zenithflow/internal/queue"
	"github.com/zenithflow/zenithflow/internal/validation"
)

// CoachHandler enqueues AI coaching jobs and serves their results. The worker
// stages finished results in Postgres; every read drains them into the live
// workspace first, so the store is always the single writer of the state
// blob.
type CoachHandler struct {
	hub    *hub.Hub
	jobs   queue.JobQueue
	states database.AppStateRepositoryInterface
	logger *zap.Logger
}

// NewCoachHandler creates a new coach handler
func NewCoachHandler(hb *hub.Hub, jobs queue.JobQueue, states database.AppStateRepositoryInterface, logger *zap.Logger) *CoachHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoachHandler{hub: hb, jobs: jobs, states: states, logger: logger}
}

// RegisterRoutes registers coaching routes on the given router
// The router should already have the /coach prefix
func (h *CoachHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/ritual", h.RequestRitualPlan).Methods("POST")
	r.HandleFunc("/reflection", h.RequestReflection).Methods("POST")
	r.HandleFunc("/period", h.RequestPeriodSynthesis).Methods("POST")
	r.HandleFunc("/finance", h.RequestFinanceReview).Methods("POST")
	r.HandleFunc("/daily/{date}", h.GetDailyAnalysis).Methods("GET")
	r.HandleFunc("/weekly/{start}", h.GetWeeklyAnalysis).Methods("GET")
	r.HandleFunc("/finance/{period}", h.GetFinanceAnalysis).Methods("GET")
}

// RitualRequest asks for a morning plan
type RitualRequest struct {
	Date string `json:"date" validate:"required"`
}

// ReflectionRequest asks for an analysis of a day's review
type ReflectionRequest struct {
	Date   string `json:"date" validate:"required"`
	Review string `json:"review" validate:"max=10000"`
}

// PeriodRequest asks for a synthesis of a date range of daily insights
type PeriodRequest struct {
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate,omitempty"`
}

// FinanceRequest asks for a review of one ledger month
type FinanceRequest struct {
	Month         string  `json:"month" validate:"required"`
	MonthlyBudget float64 `json:"monthlyBudget" validate:"gte=0"`
}

// EnqueuedResponse acknowledges an accepted coaching job.
type EnqueuedResponse struct {
	JobID string `json:"jobId"`
	Type  string `json:"type"`
}

func (h *CoachHandler) enqueue(w http.ResponseWriter, r *http.Request, jobType queue.JobType, date string, metadata map[string]any) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	job := queue.NewJob(jobType, user.ID, date)
	for k, v := range metadata {
		job.Metadata[k] = v
	}
	if err := h.jobs.Enqueue(r.Context(), job); err != nil {
		h.logger.Error("coaching_job_enqueue_failed",
			zap.String("job_type", string(jobType)),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Failed to enqueue coaching job")
		return
	}

	respondJSON(w, http.StatusAccepted, EnqueuedResponse{JobID: job.ID.String(), Type: string(jobType)})
}

// RequestRitualPlan enqueues a morning plan generation job. Before the job is
// queued, the in-memory workspace is flushed to Postgres so the worker sees
// current tasks and goals.
func (h *CoachHandler) RequestRitualPlan(w http.ResponseWriter, r *http.Request) {
	var req RitualRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}
	if err := validation.ValidateDate(req.Date); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if !h.flushState(w, r) {
		return
	}
	h.enqueue(w, r, queue.JobTypeRitualPlan, req.Date, nil)
}

// RequestReflection enqueues a daily review analysis job.
func (h *CoachHandler) RequestReflection(w http.ResponseWriter, r *http.Request) {
	var req ReflectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}
	if err := validation.ValidateDate(req.Date); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	review := validation.SanitizeText(req.Review)
	if review != "" {
		// Persist the review text so it survives even if the job fails.
		if ws, ok := workspaceFor(w, r, h.hub); ok {
			ws.Store.SetReview(review)
		} else {
			return
		}
	}
	if !h.flushState(w, r) {
		return
	}
	h.enqueue(w, r, queue.JobTypeReflection, req.Date, map[string]any{"review": review})
}

// RequestPeriodSynthesis enqueues a weekly or custom-range synthesis job.
func (h *CoachHandler) RequestPeriodSynthesis(w http.ResponseWriter, r *http.Request) {
	var req PeriodRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}
	if err := validation.ValidateDate(req.StartDate); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	metadata := map[string]any{}
	if req.EndDate != "" {
		if err := validation.ValidateDate(req.EndDate); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		metadata["endDate"] = req.EndDate
	}
	if !h.flushState(w, r) {
		return
	}
	h.enqueue(w, r, queue.JobTypePeriodSynthesis, req.StartDate, metadata)
}

// RequestFinanceReview enqueues a finance review job for one month.
func (h *CoachHandler) RequestFinanceReview(w http.ResponseWriter, r *http.Request) {
	var req FinanceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}
	if len(req.Month) != 7 || req.Month[4] != '-' {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Month must be YYYY-MM")
		return
	}
	if !h.flushState(w, r) {
		return
	}
	h.enqueue(w, r, queue.JobTypeFinanceReview, req.Month, map[string]any{"monthlyBudget": req.MonthlyBudget})
}

// flushState writes the workspace state to Postgres synchronously so an
// immediately following worker job reads current data.
func (h *CoachHandler) flushState(w http.ResponseWriter, r *http.Request) bool {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return false
	}
	if err := h.states.Save(r.Context(), ws.UserID, ws.Store.State()); err != nil {
		h.logger.Error("state_flush_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to persist state")
		return false
	}
	return true
}

// GetDailyAnalysis returns the reflection analysis for a date. Staged worker
// results are drained into the workspace first, so a poll right after the
// job finishes sees it.
func (h *CoachHandler) GetDailyAnalysis(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}
	h.hub.ApplyCoachResults(r.Context(), ws)

	date := mux.Vars(r)["date"]
	if a, found := ws.Store.State().DailyAnalyses[date]; found {
		respondJSON(w, http.StatusOK, a)
		return
	}
	respondJSONError(w, http.StatusNotFound, "Not Found", "No analysis for that date")
}

// GetWeeklyAnalysis returns the period synthesis keyed by its start date.
func (h *CoachHandler) GetWeeklyAnalysis(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}
	h.hub.ApplyCoachResults(r.Context(), ws)

	start := mux.Vars(r)["start"]
	if a, found := ws.Store.State().WeeklyAnalyses[start]; found {
		respondJSON(w, http.StatusOK, a)
		return
	}
	respondJSONError(w, http.StatusNotFound, "Not Found", "No synthesis for that period")
}

// GetFinanceAnalysis returns the finance review for a period label.
func (h *CoachHandler) GetFinanceAnalysis(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}
	h.hub.ApplyCoachResults(r.Context(), ws)

	period := mux.Vars(r)["period"]
	if a, found := ws.Store.State().FinanceAnalyses[period]; found {
		respondJSON(w, http.StatusOK, a)
		return
	}
	respondJSONError(w, http.StatusNotFound, "Not Found", "No review for that period")
}
