package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/zenithflow/zenithflow/internal/hub"
	"github.com/zenithflow/zenithflow/internal/models"
	"github.com/zenithflow/zenithflow/internal/validation"
)

// maxFocusMinutes caps a single focus completion report. One Pomodoro is 25
// minutes; anything above a day is a client bug.
const maxFocusMinutes = 24 * 60

// PlannerHandler handles the singleton planning records: routine, goals,
// todos, the daily review, and focus timer completions.
type PlannerHandler struct {
	hub *hub.Hub
}

// NewPlannerHandler creates a new planner handler
func NewPlannerHandler(hb *hub.Hub) *PlannerHandler {
	return &PlannerHandler{hub: hb}
}

// RegisterRoutes registers planner routes on the given router
func (h *PlannerHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/routine", h.SetRoutine).Methods("PUT")
	r.HandleFunc("/goals", h.SetGoals).Methods("PUT")
	r.HandleFunc("/todos", h.SetTodos).Methods("PUT")
	r.HandleFunc("/review", h.SetReview).Methods("PUT")
	r.HandleFunc("/focus/complete", h.CompleteFocus).Methods("POST")
}

// SetRoutineRequest represents a routine update
type SetRoutineRequest struct {
	Wake       string `json:"wake" validate:"required,clock"`
	Meditation bool   `json:"meditation"`
	Exercise   bool   `json:"exercise"`
}

// SetGoalsRequest represents a goals replacement
type SetGoalsRequest struct {
	Goals []string `json:"goals" validate:"required,max=10,dive,max=500"`
}

// SetTodosRequest replaces the freeform checklist
type SetTodosRequest struct {
	Todos []models.TodoItem `json:"todos" validate:"required,max=200"`
}

// SetReviewRequest represents a daily review update
type SetReviewRequest struct {
	Review string `json:"review" validate:"max=10000"`
}

// CompleteFocusRequest reports a finished focus session
type CompleteFocusRequest struct {
	Minutes int `json:"minutes" validate:"required,gt=0"`
}

// SetRoutine replaces the daily habit record
func (h *PlannerHandler) SetRoutine(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	var req SetRoutineRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}

	routine := models.Routine{Wake: req.Wake, Meditation: req.Meditation, Exercise: req.Exercise}
	ws.Store.SetRoutine(routine)
	respondJSON(w, http.StatusOK, routine)
}

// SetGoals replaces the goal strings
func (h *PlannerHandler) SetGoals(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	var req SetGoalsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}

	goals := make([]string, len(req.Goals))
	for i, g := range req.Goals {
		goals[i] = validation.SanitizeText(g)
	}
	ws.Store.SetGoals(goals)
	respondJSON(w, http.StatusOK, goals)
}

// SetTodos replaces the freeform checklist
func (h *PlannerHandler) SetTodos(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	var req SetTodosRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}

	for i := range req.Todos {
		req.Todos[i].Text = validation.SanitizeText(req.Todos[i].Text)
	}
	ws.Store.SetTodos(req.Todos)
	respondJSON(w, http.StatusOK, req.Todos)
}

// SetReview replaces the daily review text
func (h *PlannerHandler) SetReview(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	var req SetReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}

	review := validation.SanitizeText(req.Review)
	ws.Store.SetReview(review)
	respondJSON(w, http.StatusOK, map[string]string{"review": review})
}

// FocusResponse reports the accumulated totals after a completion.
type FocusResponse struct {
	TotalFocusMinutes int `json:"totalFocusMinutes"`
	TimerSessions     int `json:"timerSessions"`
}

// CompleteFocus accumulates a finished focus session into the lifetime
// totals and today's stats.
func (h *PlannerHandler) CompleteFocus(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	var req CompleteFocusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}
	if req.Minutes > maxFocusMinutes {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Focus minutes out of range")
		return
	}

	ws.Store.AddFocusMinutes(req.Minutes)
	st := ws.Store.State()
	respondJSON(w, http.StatusOK, FocusResponse{
		TotalFocusMinutes: st.TotalFocusMinutes,
		TimerSessions:     st.TimerSessions,
	})
}
