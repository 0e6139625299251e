package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

func newPlannerRouter(h *PlannerHandler) *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func TestPlannerHandler_SetRoutine(t *testing.T) {
	t.Parallel()

	ti := newTestIdentity()
	h := NewPlannerHandler(newTestHub(newFakeStates()))
	router := newPlannerRouter(h)

	req := ti.authed(newTestRequest("PUT", "/routine", map[string]any{
		"wake": "06:30", "meditation": true, "exercise": false,
	}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	req = ti.authed(newTestRequest("PUT", "/routine", map[string]any{"wake": "half past six"}))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad wake time status = %d, want 400", rec.Code)
	}
}

func TestPlannerHandler_SetGoalsLimit(t *testing.T) {
	t.Parallel()

	ti := newTestIdentity()
	h := NewPlannerHandler(newTestHub(newFakeStates()))
	router := newPlannerRouter(h)

	goals := make([]string, 11)
	for i := range goals {
		goals[i] = "goal"
	}
	req := ti.authed(newTestRequest("PUT", "/goals", map[string]any{"goals": goals}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for more than ten goals", rec.Code)
	}

	req = ti.authed(newTestRequest("PUT", "/goals", map[string]any{"goals": goals[:3]}))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for three goals", rec.Code)
	}
}

func TestPlannerHandler_CompleteFocusAccumulates(t *testing.T) {
	t.Parallel()

	ti := newTestIdentity()
	h := NewPlannerHandler(newTestHub(newFakeStates()))
	router := newPlannerRouter(h)

	totals := FocusResponse{}
	for _, minutes := range []int{25, 50} {
		req := ti.authed(newTestRequest("POST", "/focus/complete", map[string]any{"minutes": minutes}))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Data FocusResponse `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		totals = resp.Data
	}
	if totals.TotalFocusMinutes != 75 {
		t.Errorf("TotalFocusMinutes = %d, want 75", totals.TotalFocusMinutes)
	}
	if totals.TimerSessions != 2 {
		t.Errorf("TimerSessions = %d, want 2", totals.TimerSessions)
	}
}

func TestPlannerHandler_CompleteFocusRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	ti := newTestIdentity()
	h := NewPlannerHandler(newTestHub(newFakeStates()))
	router := newPlannerRouter(h)

	for _, minutes := range []int{-5, 0, maxFocusMinutes + 1} {
		req := ti.authed(newTestRequest("POST", "/focus/complete", map[string]any{"minutes": minutes}))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("minutes %d status = %d, want 400", minutes, rec.Code)
		}
	}
}
