package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/zenithflow/zenithflow/internal/hub"
	"github.com/zenithflow/zenithflow/internal/models"
	"github.com/zenithflow/zenithflow/internal/timeline"
	"github.com/zenithflow/zenithflow/internal/validation"
)

// TimelineHandler serves the daily rail layout and drives the pointer
// gesture state machine.
type TimelineHandler struct {
	hub *hub.Hub
	win timeline.Window
}

// NewTimelineHandler creates a new timeline handler
func NewTimelineHandler(hb *hub.Hub) *TimelineHandler {
	return &TimelineHandler{hub: hb, win: timeline.DefaultWindow()}
}

// RegisterRoutes registers timeline routes on the given router
// The router should already have the /timeline prefix
func (h *TimelineHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/{date}", h.GetLayout).Methods("GET")
	r.HandleFunc("/gesture/create", h.BeginCreate).Methods("POST")
	r.HandleFunc("/gesture/item", h.BeginItem).Methods("POST")
	r.HandleFunc("/gesture/move", h.PointerMove).Methods("POST")
	r.HandleFunc("/gesture/up", h.PointerUp).Methods("POST")
	r.HandleFunc("/editor/key", h.EditorKeyPress).Methods("POST")
}

// LayoutResponse is the computed geometry for one day.
type LayoutResponse struct {
	Date  string         `json:"date"`
	Boxes []timeline.Box `json:"boxes"`
}

// GetLayout returns non-overlapping boxes for every scheduled item on a date.
func (h *TimelineHandler) GetLayout(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	date := mux.Vars(r)["date"]
	if err := validation.ValidateDate(date); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	st := ws.Store.State()
	items := timeline.DayItems(date, st.Tasks, st.Events)
	respondJSON(w, http.StatusOK, LayoutResponse{Date: date, Boxes: h.win.Layout(items)})
}

// BeginCreateRequest starts a create-by-drag gesture
type BeginCreateRequest struct {
	Date            string  `json:"date" validate:"required"`
	Y               float64 `json:"y"`
	ContainerHeight float64 `json:"containerHeight" validate:"required,gt=0"`
}

// BeginItemRequest starts a move or resize gesture on an existing item
type BeginItemRequest struct {
	ID              string  `json:"id" validate:"required"`
	IsEvent         bool    `json:"isEvent"`
	Mode            string  `json:"mode" validate:"required,oneof=move resize"`
	Y               float64 `json:"y"`
	ContainerHeight float64 `json:"containerHeight" validate:"required,gt=0"`
	Top             float64 `json:"top"`
	Height          float64 `json:"height"`
}

// PointerMoveRequest advances an in-flight gesture
type PointerMoveRequest struct {
	Y float64 `json:"y"`
}

// GestureStateResponse reports the gesture engine's visible state.
type GestureStateResponse struct {
	Active    bool                `json:"active"`
	Selection *timeline.Selection `json:"selection,omitempty"`
}

// BeginCreate starts a create-by-drag gesture from a press on empty rail area.
func (h *TimelineHandler) BeginCreate(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	var req BeginCreateRequest
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

	var resp GestureStateResponse
	ws.WithGesture(func(g *timeline.Gesture) {
		g.BeginCreate(req.Date, req.Y, req.ContainerHeight)
		resp = GestureStateResponse{Active: g.Active(), Selection: g.CurrentSelection()}
	})
	respondJSON(w, http.StatusOK, resp)
}

// BeginItem starts a move or resize gesture on an existing item.
func (h *TimelineHandler) BeginItem(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	var req BeginItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}

	mode := timeline.ModeMove
	if req.Mode == "resize" {
		mode = timeline.ModeResize
	}

	var resp GestureStateResponse
	ws.WithGesture(func(g *timeline.Gesture) {
		g.BeginItem(timeline.ItemRef{ID: req.ID, IsEvent: req.IsEvent}, mode, req.Y, req.ContainerHeight, req.Top, req.Height)
		resp = GestureStateResponse{Active: g.Active()}
	})
	respondJSON(w, http.StatusOK, resp)
}

// PointerMove advances the in-flight gesture. Move and resize write through
// to the store on every call, mirroring live drag feedback.
func (h *TimelineHandler) PointerMove(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	var req PointerMoveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var resp GestureStateResponse
	ws.WithGesture(func(g *timeline.Gesture) {
		g.PointerMove(req.Y)
		resp = GestureStateResponse{Active: g.Active(), Selection: g.CurrentSelection()}
	})
	respondJSON(w, http.StatusOK, resp)
}

// PointerUp completes the gesture and reports what it produced: a created
// task, a click target, or nothing.
func (h *TimelineHandler) PointerUp(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	var result timeline.Result
	ws.WithGesture(func(g *timeline.Gesture) {
		result = g.PointerUp(r.Context())
	})
	respondJSON(w, http.StatusOK, result)
}

// EditorKeyRequest is a key press while an item's edit popup is focused.
type EditorKeyRequest struct {
	Key          string `json:"key" validate:"required"`
	InputFocused bool   `json:"inputFocused"`
	ID           string `json:"id" validate:"required"`
	IsEvent      bool   `json:"isEvent"`
}

// EditorKeyResponse reports the resolved action and whether a delete landed.
type EditorKeyResponse struct {
	Action  timeline.EditorAction `json:"action"`
	Deleted bool                  `json:"deleted"`
}

// EditorKeyPress resolves a key press inside the edit popup. Delete and
// Backspace remove the item unless a text input holds focus; Enter closes
// the popup.
func (h *TimelineHandler) EditorKeyPress(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.hub)
	if !ok {
		return
	}

	var req EditorKeyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}

	resp := EditorKeyResponse{Action: timeline.EditorKey(req.Key, req.InputFocused)}
	if resp.Action == timeline.EditorActionDelete {
		if req.IsEvent {
			_, resp.Deleted = ws.Store.DeleteEvent(req.ID)
		} else {
			var removed models.Task
			removed, resp.Deleted = ws.Store.DeleteTask(req.ID)
			if resp.Deleted && ws.Syncer != nil && removed.Linked() {
				ws.Syncer.PropagateDelete(r.Context(), removed.GoogleEventID)
			}
		}
	}
	respondJSON(w, http.StatusOK, resp)
}
