package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/zenithflow/zenithflow/internal/hub"
	"github.com/zenithflow/zenithflow/internal/timeline"
)

// StateHandler serves the full application state and the undo operation
type StateHandler struct {
	hub *hub.Hub
}

// NewStateHandler creates a new state handler
func NewStateHandler(hb *hub.Hub) *StateHandler {
	return &StateHandler{hub: hb}
}

// RegisterRoutes registers state routes on the given router
func (h *StateHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetState).Methods("GET")
	r.HandleFunc("/undo", h.Undo).Methods("POST")
	r.HandleFunc("/key", h.KeyPress).Methods("POST")
}

// GetState returns the complete state tree for the authenticated user. Any
// coaching results the worker finished since the last read are folded in
// first.
func (h *StateHandler) GetState(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}
	h.hub.ApplyCoachResults(r.Context(), ws)
	respondJSON(w, http.StatusOK, ws.Store.State())
}

// UndoResponse reports whether a snapshot was restored.
type UndoResponse struct {
	Undone     bool `json:"undone"`
	HistoryLen int  `json:"historyLen"`
}

// Undo restores the most recent undoable snapshot. Undoing with an empty
// history succeeds as a no-op.
func (h *StateHandler) Undo(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}
	undone := ws.Store.Undo()
	respondJSON(w, http.StatusOK, UndoResponse{Undone: undone, HistoryLen: ws.Store.HistoryLen()})
}

// KeyRequest is a raw global key event from the client.
type KeyRequest struct {
	Key      string `json:"key" validate:"required"`
	Modifier bool   `json:"modifier"`
	Shift    bool   `json:"shift"`
}

// KeyResponse reports whether the key matched a shortcut and what it did.
type KeyResponse struct {
	Matched    bool `json:"matched"`
	Undone     bool `json:"undone"`
	HistoryLen int  `json:"historyLen"`
}

// KeyPress routes a global key event. The only bound chord is undo; anything
// else reports Matched false so the client lets the event through.
func (h *StateHandler) KeyPress(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	var req KeyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}

	resp := KeyResponse{HistoryLen: ws.Store.HistoryLen()}
	if timeline.IsUndoChord(req.Key, req.Modifier, req.Shift) {
		resp.Matched = true
		resp.Undone = ws.Store.Undo()
		resp.HistoryLen = ws.Store.HistoryLen()
	}
	respondJSON(w, http.StatusOK, resp)
}
