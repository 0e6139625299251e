package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/zenithflow/zenithflow/internal/hub"
	"github.com/zenithflow/zenithflow/internal/models"
	"github.com/zenithflow/zenithflow/internal/validation"
)

const (
	// MaxTitleLength is the maximum length for task and event titles
	MaxTitleLength = 500
	// MaxNotesLength is the maximum length for freeform notes and reflections
	MaxNotesLength = 10000
)

// TaskHandler handles task CRUD. Every mutation flows through the workspace
// store, so undo, stats projection, and cloud autosave all apply uniformly.
type TaskHandler struct {
	hub *hub.Hub
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(hb *hub.Hub) *TaskHandler {
	return &TaskHandler{hub: hb}
}

// RegisterRoutes registers task routes on the given router
// The router should already have the /tasks prefix
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTasks).Methods("GET")
	r.HandleFunc("", h.CreateTask).Methods("POST")
	r.HandleFunc("/{id}", h.UpdateTask).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteTask).Methods("DELETE")
	r.HandleFunc("/{id}/toggle", h.ToggleTask).Methods("POST")
}

// CreateTaskRequest represents a create task request
type CreateTaskRequest struct {
	Title           string            `json:"title" validate:"required,min=1,max=500"`
	Category        string            `json:"type" validate:"required,task_category"`
	Date            string            `json:"date" validate:"required"`
	DurationMinutes int               `json:"durationMinutes" validate:"gte=0,lte=1440"`
	ScheduledTime   string            `json:"scheduledTime" validate:"clock"`
	IsEssential     bool              `json:"isEssential"`
	Location        string            `json:"location" validate:"max=500"`
	Origin          models.TaskOrigin `json:"origin"`
	SubTasks        []models.SubTask  `json:"subTasks"`
}

// UpdateTaskRequest represents a partial task update
type UpdateTaskRequest struct {
	Title           *string           `json:"title,omitempty"`
	Category        *string           `json:"type,omitempty"`
	Date            *string           `json:"date,omitempty"`
	DurationMinutes *int              `json:"durationMinutes,omitempty"`
	ScheduledTime   *string           `json:"scheduledTime,omitempty"`
	Status          *string           `json:"status,omitempty"`
	IsEssential     *bool             `json:"isEssential,omitempty"`
	Reflection      *string           `json:"reflection,omitempty"`
	Location        *string           `json:"location,omitempty"`
	SubTasks        *[]models.SubTask `json:"subTasks,omitempty"`
	ActualDuration  *int              `json:"actualDurationMinutes,omitempty"`
}

// ListTasks returns the user's tasks, optionally filtered by date.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	st := ws.Store.State()
	date := r.URL.Query().Get("date")
	if date == "" {
		respondJSON(w, http.StatusOK, st.Tasks)
		return
	}
	if err := validation.ValidateDate(date); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	tasks := make([]models.Task, 0)
	for _, t := range st.Tasks {
		if t.Date == date {
			tasks = append(tasks, t)
		}
	}
	respondJSON(w, http.StatusOK, tasks)
}

// CreateTask creates a new planned task
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	var req CreateTaskRequest
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
	req.Title = validation.SanitizeText(req.Title)
	if req.Title == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title is required and cannot be empty after sanitization")
		return
	}

	origin := req.Origin
	if origin == "" {
		origin = models.TaskOriginDaily
	}
	task := models.Task{
		ID:              fmt.Sprintf("task-%d", time.Now().UnixMilli()),
		Title:           req.Title,
		Category:        models.TaskCategory(req.Category),
		Date:            req.Date,
		DurationMinutes: req.DurationMinutes,
		ScheduledTime:   req.ScheduledTime,
		Status:          models.TaskStatusPlanned,
		IsEssential:     req.IsEssential,
		Location:        req.Location,
		SubTasks:        req.SubTasks,
		Origin:          origin,
	}
	ws.Store.CreateTask(task)

	respondJSON(w, http.StatusCreated, task)
}

// UpdateTask applies a partial update. Edits to a linked task's schedule are
// propagated to its remote calendar event best-effort.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	task, found := findTask(ws.Store.State().Tasks, id)
	if !found {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
		return
	}

	var req UpdateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Title != nil {
		sanitized := validation.SanitizeText(*req.Title)
		if sanitized == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title cannot be empty after sanitization")
			return
		}
		if len(sanitized) > MaxTitleLength {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Title exceeds maximum length of %d characters", MaxTitleLength))
			return
		}
		task.Title = sanitized
	}
	if req.Category != nil {
		if err := validation.ValidateTaskCategory(*req.Category); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		task.Category = models.TaskCategory(*req.Category)
	}
	if req.Date != nil {
		if err := validation.ValidateDate(*req.Date); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		task.Date = *req.Date
	}
	if req.DurationMinutes != nil {
		task.DurationMinutes = *req.DurationMinutes
	}
	if req.ScheduledTime != nil {
		if *req.ScheduledTime != "" {
			if err := validation.ValidateClock(*req.ScheduledTime); err != nil {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
				return
			}
		}
		task.ScheduledTime = *req.ScheduledTime
	}
	if req.Status != nil {
		if err := validation.ValidateTaskStatus(*req.Status); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		task.Status = models.TaskStatus(*req.Status)
	}
	if req.IsEssential != nil {
		task.IsEssential = *req.IsEssential
	}
	if req.Reflection != nil {
		reflection := validation.SanitizeText(*req.Reflection)
		if len(reflection) > MaxNotesLength {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Reflection exceeds maximum length of %d characters", MaxNotesLength))
			return
		}
		task.Reflection = reflection
	}
	if req.Location != nil {
		task.Location = validation.SanitizeText(*req.Location)
	}
	if req.SubTasks != nil {
		task.SubTasks = *req.SubTasks
	}
	if req.ActualDuration != nil {
		task.ActualDurationMinutes = *req.ActualDuration
	}

	ws.Store.UpdateTask(task)
	if ws.Syncer != nil && (req.ScheduledTime != nil || req.DurationMinutes != nil || req.Title != nil || req.Date != nil) {
		ws.Syncer.PropagateTaskUpdate(r.Context(), task)
	}

	respondJSON(w, http.StatusOK, task)
}

// DeleteTask removes a task. Deleting a linked task also requests deletion of
// its remote calendar event.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	removed, found := ws.Store.DeleteTask(id)
	if !found {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
		return
	}
	if ws.Syncer != nil && removed.Linked() {
		ws.Syncer.PropagateDelete(r.Context(), removed.GoogleEventID)
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleTask flips a task between Planned and Completed
func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	if _, found := findTask(ws.Store.State().Tasks, id); !found {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
		return
	}
	ws.Store.ToggleTaskStatus(id)

	task, _ := findTask(ws.Store.State().Tasks, id)
	respondJSON(w, http.StatusOK, task)
}

func findTask(tasks []models.Task, id string) (models.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

// decodeBody decodes a JSON request body, writing the error response on
// failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return false
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return false
	}
	return true
}

// validateStruct runs the shared validator, writing the error response on
// failure.
func validateStruct(w http.ResponseWriter, req any) bool {
	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return false
			}
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return false
	}
	return true
}
