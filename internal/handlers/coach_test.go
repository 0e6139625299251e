package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/zenithflow/zenithflow/internal/models"
	"github.com/zenithflow/zenithflow/internal/queue"
)

// fakeQueue records enqueued jobs
type fakeQueue struct {
	mu       sync.Mutex
	enqueued []*queue.Job
	failNext bool
}

func (f *fakeQueue) Enqueue(ctx context.Context, job *queue.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		return errors.New("broker unavailable")
	}
	f.enqueued = append(f.enqueued, job)
	return nil
}

func (f *fakeQueue) Dequeue(ctx context.Context) (*queue.Message, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}

func (f *fakeQueue) Close() error { return nil }

func (f *fakeQueue) HealthCheck(ctx context.Context) error { return nil }

var _ queue.JobQueue = (*fakeQueue)(nil)

func newCoachRouter(h *CoachHandler) *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/coach").Subrouter())
	return r
}

func TestCoachHandler_RequestRitualPlan(t *testing.T) {
	t.Parallel()

	ti := newTestIdentity()
	states := newFakeStates()
	jobs := &fakeQueue{}
	h := NewCoachHandler(newTestHub(states), jobs, states, nil)
	router := newCoachRouter(h)

	req := ti.authed(newTestRequest("POST", "/coach/ritual", map[string]any{"date": "2026-03-02"}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202, body %s", rec.Code, rec.Body.String())
	}
	if len(jobs.enqueued) != 1 {
		t.Fatalf("len(enqueued) = %d, want 1", len(jobs.enqueued))
	}
	job := jobs.enqueued[0]
	if job.Type != queue.JobTypeRitualPlan || job.UserID != ti.user.ID || job.Date != "2026-03-02" {
		t.Errorf("job = %+v", job)
	}
	// The enqueue must be preceded by a state flush.
	if _, err := states.Get(context.Background(), ti.user.ID); err != nil {
		t.Error("expected state flushed to the repository before enqueue")
	}
}

func TestCoachHandler_RequestReflectionStoresReview(t *testing.T) {
	t.Parallel()

	ti := newTestIdentity()
	states := newFakeStates()
	jobs := &fakeQueue{}
	hb := newTestHub(states)
	h := NewCoachHandler(hb, jobs, states, nil)
	router := newCoachRouter(h)

	req := ti.authed(newTestRequest("POST", "/coach/reflection", map[string]any{
		"date":   "2026-03-02",
		"review": "Focused in the morning.",
	}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	st, err := states.Get(context.Background(), ti.user.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if st.Review != "Focused in the morning." {
		t.Errorf("Review = %q, want the submitted text", st.Review)
	}
	if got := jobs.enqueued[0].Metadata["review"]; got != "Focused in the morning." {
		t.Errorf("metadata review = %v", got)
	}
}

func TestCoachHandler_RequestFinanceReviewValidation(t *testing.T) {
	t.Parallel()

	ti := newTestIdentity()
	states := newFakeStates()
	h := NewCoachHandler(newTestHub(states), &fakeQueue{}, states, nil)
	router := newCoachRouter(h)

	req := ti.authed(newTestRequest("POST", "/coach/finance", map[string]any{
		"month": "February", "monthlyBudget": 1000.0,
	}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCoachHandler_EnqueueFailure(t *testing.T) {
	t.Parallel()

	ti := newTestIdentity()
	states := newFakeStates()
	h := NewCoachHandler(newTestHub(states), &fakeQueue{failNext: true}, states, nil)
	router := newCoachRouter(h)

	req := ti.authed(newTestRequest("POST", "/coach/ritual", map[string]any{"date": "2026-03-02"}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestCoachHandler_GetDailyAnalysisDrainsStagedResult(t *testing.T) {
	t.Parallel()

	ti := newTestIdentity()
	states := newFakeStates()
	results := newFakeResults()
	hb := newTestHubWithResults(states, results)
	h := NewCoachHandler(hb, &fakeQueue{}, states, nil)
	router := newCoachRouter(h)

	// Materialize the workspace from an empty blob, then simulate the worker
	// finishing a reflection job.
	req := ti.authed(httptest.NewRequest("GET", "/coach/daily/2026-03-02", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("pre-result status = %d, want 404", rec.Code)
	}

	analysis := models.ReflectionAnalysis{Insight: "worker result"}
	err := results.Add(context.Background(), ti.user.ID, models.CoachResult{
		Kind: models.CoachResultReflection, Key: "2026-03-02", Reflection: &analysis,
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	req = ti.authed(httptest.NewRequest("GET", "/coach/daily/2026-03-02", nil))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data models.ReflectionAnalysis `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Insight != "worker result" {
		t.Errorf("Insight = %q, want the staged value", resp.Data.Insight)
	}

	// A second read serves the analysis from the workspace store.
	req = ti.authed(httptest.NewRequest("GET", "/coach/daily/2026-03-02", nil))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("repeat status = %d, want 200", rec.Code)
	}
}
