package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/zenithflow/zenithflow/internal/models"
)

func newEventRouter(h *EventHandler) *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/events").Subrouter())
	return r
}

func postEvent(t *testing.T, router *mux.Router, ti *testIdentity, body map[string]any) models.CalendarEvent {
	t.Helper()
	req := ti.authed(newTestRequest("POST", "/events", body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data models.CalendarEvent `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	return resp.Data
}

func TestEventHandler_CreateAndListByDate(t *testing.T) {
	t.Parallel()

	ti := newTestIdentity()
	h := NewEventHandler(newTestHub(newFakeStates()))
	router := newEventRouter(h)

	postEvent(t, router, ti, map[string]any{
		"title": "Standup", "date": "2026-03-02", "startTime": "09:30",
		"durationMinutes": 15, "type": "Meeting",
	})
	postEvent(t, router, ti, map[string]any{
		"title": "Tax filing", "date": "2026-03-05", "startTime": "10:00",
		"durationMinutes": 60, "type": "Deadline",
	})

	req := ti.authed(httptest.NewRequest("GET", "/events?date=2026-03-05", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}

	var resp struct {
		Data []models.CalendarEvent `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Title != "Tax filing" {
		t.Errorf("filtered events = %+v, want only the March 5th one", resp.Data)
	}
}

func TestEventHandler_CreateValidation(t *testing.T) {
	t.Parallel()

	ti := newTestIdentity()
	h := NewEventHandler(newTestHub(newFakeStates()))
	router := newEventRouter(h)

	tests := []struct {
		name string
		body map[string]any
	}{
		{
			name: "unknown category",
			body: map[string]any{"title": "x", "date": "2026-03-02", "startTime": "09:00", "type": "Party"},
		},
		{
			name: "malformed start time",
			body: map[string]any{"title": "x", "date": "2026-03-02", "startTime": "9am", "type": "Meeting"},
		},
		{
			name: "malformed date",
			body: map[string]any{"title": "x", "date": "tomorrow", "startTime": "09:00", "type": "Meeting"},
		},
		{
			name: "control characters only title",
			body: map[string]any{"title": "\x01\x02", "date": "2026-03-02", "startTime": "09:00", "type": "Meeting"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := ti.authed(newTestRequest("POST", "/events", tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestEventHandler_UpdateFields(t *testing.T) {
	t.Parallel()

	ti := newTestIdentity()
	h := NewEventHandler(newTestHub(newFakeStates()))
	router := newEventRouter(h)

	ev := postEvent(t, router, ti, map[string]any{
		"title": "Review prep", "date": "2026-03-02", "startTime": "14:00",
		"durationMinutes": 30, "type": "Preparation",
	})

	req := ti.authed(newTestRequest("PATCH", "/events/"+ev.ID, map[string]any{
		"startTime": "15:30", "durationMinutes": 45, "type": "Work",
	}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data models.CalendarEvent `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.StartTime != "15:30" || resp.Data.DurationMinutes != 45 {
		t.Errorf("schedule = %s/%d, want 15:30/45", resp.Data.StartTime, resp.Data.DurationMinutes)
	}
	if resp.Data.Category != models.EventCategoryWork {
		t.Errorf("category = %s, want Work", resp.Data.Category)
	}
	if resp.Data.Title != "Review prep" {
		t.Errorf("title changed unexpectedly to %q", resp.Data.Title)
	}
}

func TestEventHandler_UpdateRejectsBadCategory(t *testing.T) {
	t.Parallel()

	ti := newTestIdentity()
	h := NewEventHandler(newTestHub(newFakeStates()))
	router := newEventRouter(h)

	ev := postEvent(t, router, ti, map[string]any{
		"title": "Call", "date": "2026-03-02", "startTime": "11:00", "type": "Meeting",
	})

	req := ti.authed(newTestRequest("PATCH", "/events/"+ev.ID, map[string]any{"type": "Festivity"}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestEventHandler_Delete(t *testing.T) {
	t.Parallel()

	ti := newTestIdentity()
	h := NewEventHandler(newTestHub(newFakeStates()))
	router := newEventRouter(h)

	ev := postEvent(t, router, ti, map[string]any{
		"title": "One-off", "date": "2026-03-02", "startTime": "16:00", "type": "Other",
	})

	req := ti.authed(httptest.NewRequest("DELETE", "/events/"+ev.ID, nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}

	req = ti.authed(httptest.NewRequest("DELETE", "/events/"+ev.ID, nil))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}
