package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/zenithflow/zenithflow/internal/hub"
	"github.com/zenithflow/zenithflow/internal/middleware"
	"github.com/zenithflow/zenithflow/internal/models"
)

// SyncHandler handles explicit, user-visible cloud sync operations. Unlike
// the debounced auto-save, every operation here surfaces its error.
type SyncHandler struct {
	hub    *hub.Hub
	logger *zap.Logger
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(hb *hub.Hub, logger *zap.Logger) *SyncHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncHandler{hub: hb, logger: logger}
}

// RegisterRoutes registers sync routes on the given router
// The router should already have the /sync prefix
func (h *SyncHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/status", h.Status).Methods("GET")
	r.HandleFunc("/calendar", h.SyncCalendar).Methods("POST")
	r.HandleFunc("/save", h.Save).Methods("POST")
	r.HandleFunc("/load", h.Load).Methods("POST")
}

// StatusResponse reports whether cloud sync is wired and established.
type StatusResponse struct {
	CloudReady    bool   `json:"cloudReady"`
	Synced        bool   `json:"synced"`
	SpreadsheetID string `json:"spreadsheetId,omitempty"`
}

// SyncCalendarResponse reports the result of a calendar pull.
type SyncCalendarResponse struct {
	CreatedTasks int `json:"createdTasks"`
}

// LoadResponse reports whether remote state replaced the local tree.
type LoadResponse struct {
	Loaded bool `json:"loaded"`
}

// Status returns the session's sync state.
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}
	binding := middleware.SessionFromContext(r)
	respondJSON(w, http.StatusOK, StatusResponse{
		CloudReady:    ws.CloudReady(),
		Synced:        binding.Synced(),
		SpreadsheetID: binding.SpreadsheetID(),
	})
}

// SyncCalendar pulls remote events and reconciles today's into local tasks.
// A failed pull drops the synced flag; the client should prompt re-auth.
func (h *SyncHandler) SyncCalendar(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}
	if !ws.CloudReady() {
		respondJSONError(w, http.StatusConflict, "Conflict", "Google sync is not connected for this session")
		return
	}

	created, err := ws.Syncer.SyncCalendar(r.Context(), models.TaskStatusPlanned)
	if err != nil {
		h.logger.Warn("manual_calendar_sync_failed", zap.Error(err))
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Calendar sync failed; reconnect Google if this persists")
		return
	}
	respondJSON(w, http.StatusOK, SyncCalendarResponse{CreatedTasks: created})
}

// Save writes the full state to the backing spreadsheet immediately.
func (h *SyncHandler) Save(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}
	if !ws.CloudReady() {
		respondJSONError(w, http.StatusConflict, "Conflict", "Google sync is not connected for this session")
		return
	}

	if err := ws.Saver.Save(r.Context()); err != nil {
		h.logger.Warn("manual_cloud_save_failed", zap.Error(err))
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Cloud save failed; reconnect Google if this persists")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Load pulls remote state from the backing spreadsheet and, when present,
// replaces the local tree with it. Undo history is cleared by the replace.
func (h *SyncHandler) Load(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}
	if !ws.CloudReady() {
		respondJSONError(w, http.StatusConflict, "Conflict", "Google sync is not connected for this session")
		return
	}

	st, loaded := ws.Saver.Load(r.Context())
	if loaded {
		ws.Store.Replace(st)
	}
	respondJSON(w, http.StatusOK, LoadResponse{Loaded: loaded})
}
