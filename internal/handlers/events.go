package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/zenithflow/zenithflow/internal/hub"
	"github.com/zenithflow/zenithflow/internal/models"
	"github.com/zenithflow/zenithflow/internal/validation"
)

// EventHandler handles calendar event CRUD
type EventHandler struct {
	hub *hub.Hub
}

// NewEventHandler creates a new event handler
func NewEventHandler(hb *hub.Hub) *EventHandler {
	return &EventHandler{hub: hb}
}

// RegisterRoutes registers event routes on the given router
// The router should already have the /events prefix
func (h *EventHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListEvents).Methods("GET")
	r.HandleFunc("", h.CreateEvent).Methods("POST")
	r.HandleFunc("/{id}", h.UpdateEvent).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteEvent).Methods("DELETE")
}

// CreateEventRequest represents a create event request
type CreateEventRequest struct {
	Title           string `json:"title" validate:"required,min=1,max=500"`
	Date            string `json:"date" validate:"required"`
	StartTime       string `json:"startTime" validate:"required,clock"`
	DurationMinutes int    `json:"durationMinutes" validate:"gte=0,lte=1440"`
	Category        string `json:"type" validate:"required,event_category"`
	Notes           string `json:"notes" validate:"max=10000"`
}

// UpdateEventRequest represents a partial event update
type UpdateEventRequest struct {
	Title           *string `json:"title,omitempty"`
	Date            *string `json:"date,omitempty"`
	StartTime       *string `json:"startTime,omitempty"`
	DurationMinutes *int    `json:"durationMinutes,omitempty"`
	Category        *string `json:"type,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

// ListEvents returns the user's events, optionally filtered by date.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	st := ws.Store.State()
	date := r.URL.Query().Get("date")
	if date == "" {
		respondJSON(w, http.StatusOK, st.Events)
		return
	}
	if err := validation.ValidateDate(date); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	events := make([]models.CalendarEvent, 0)
	for _, e := range st.Events {
		if e.Date == date {
			events = append(events, e)
		}
	}
	respondJSON(w, http.StatusOK, events)
}

// CreateEvent creates a new calendar event
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	var req CreateEventRequest
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

	event := models.CalendarEvent{
		ID:              fmt.Sprintf("event-%d", time.Now().UnixMilli()),
		Title:           req.Title,
		Date:            req.Date,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Category:        models.EventCategory(req.Category),
		Notes:           validation.SanitizeText(req.Notes),
	}
	ws.Store.CreateEvent(event)

	respondJSON(w, http.StatusCreated, event)
}

// UpdateEvent applies a partial update, propagating schedule edits of a
// linked event to the remote calendar best-effort.
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	event, found := findEvent(ws.Store.State().Events, id)
	if !found {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Event not found")
		return
	}

	var req UpdateEventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Title != nil {
		sanitized := validation.SanitizeText(*req.Title)
		if sanitized == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title cannot be empty after sanitization")
			return
		}
		event.Title = sanitized
	}
	if req.Date != nil {
		if err := validation.ValidateDate(*req.Date); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		event.Date = *req.Date
	}
	if req.StartTime != nil {
		if err := validation.ValidateClock(*req.StartTime); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		event.StartTime = *req.StartTime
	}
	if req.DurationMinutes != nil {
		event.DurationMinutes = *req.DurationMinutes
	}
	if req.Category != nil {
		if err := validation.ValidateEventCategory(*req.Category); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		event.Category = models.EventCategory(*req.Category)
	}
	if req.Notes != nil {
		event.Notes = validation.SanitizeText(*req.Notes)
	}

	ws.Store.UpdateEvent(event)
	if ws.Syncer != nil {
		ws.Syncer.PropagateEventUpdate(r.Context(), event)
	}

	respondJSON(w, http.StatusOK, event)
}

// DeleteEvent removes an event, requesting remote deletion when linked.
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	removed, found := ws.Store.DeleteEvent(id)
	if !found {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Event not found")
		return
	}
	if ws.Syncer != nil && removed.GoogleEventID != "" {
		ws.Syncer.PropagateDelete(r.Context(), removed.GoogleEventID)
	}

	w.WriteHeader(http.StatusNoContent)
}

func findEvent(events []models.CalendarEvent, id string) (models.CalendarEvent, bool) {
	for _, e := range events {
		if e.ID == id {
			return e, true
		}
	}
	return models.CalendarEvent{}, false
}
