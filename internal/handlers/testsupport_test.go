package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/zenithflow/zenithflow/internal/hub"
	"github.com/zenithflow/zenithflow/internal/middleware"
	"github.com/zenithflow/zenithflow/internal/models"
	"github.com/zenithflow/zenithflow/internal/session"
)

// fakeStates is an in-memory app state repository
type fakeStates struct {
	mu     sync.Mutex
	states map[uuid.UUID]models.AppState
}

func newFakeStates() *fakeStates {
	return &fakeStates{states: make(map[uuid.UUID]models.AppState)}
}

func (f *fakeStates) Save(ctx context.Context, userID uuid.UUID, state models.AppState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[userID] = state.Clone()
	return nil
}

func (f *fakeStates) Get(ctx context.Context, userID uuid.UUID) (models.AppState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.states[userID]
	if !ok {
		return models.AppState{}, errors.New("state not found")
	}
	return st.Clone(), nil
}

func (f *fakeStates) GetOrDefault(ctx context.Context, userID uuid.UUID) (models.AppState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.states[userID]
	if !ok {
		return models.NewAppState(), nil
	}
	return st.Clone(), nil
}

// fakeResults is an in-memory staged coaching result repository
type fakeResults struct {
	mu      sync.Mutex
	pending map[uuid.UUID][]models.CoachResult
}

func newFakeResults() *fakeResults {
	return &fakeResults{pending: make(map[uuid.UUID][]models.CoachResult)}
}

func (f *fakeResults) Add(ctx context.Context, userID uuid.UUID, result models.CoachResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[userID] = append(f.pending[userID], result)
	return nil
}

func (f *fakeResults) Drain(ctx context.Context, userID uuid.UUID) ([]models.CoachResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	results := f.pending[userID]
	delete(f.pending, userID)
	return results, nil
}

// fakeView is an in-memory session view
type fakeView struct {
	data session.Data
}

func (f *fakeView) Data() session.Data         { return f.data }
func (f *fakeView) Synced() bool               { return f.data.Synced }
func (f *fakeView) SetSynced(s bool)           { f.data.Synced = s }
func (f *fakeView) SpreadsheetID() string      { return f.data.SpreadsheetID }
func (f *fakeView) SetSpreadsheetID(id string) { f.data.SpreadsheetID = id }

var _ session.View = (*fakeView)(nil)

// testIdentity bundles one authenticated user for handler tests.
type testIdentity struct {
	user *models.User
	view *fakeView
}

func newTestIdentity() *testIdentity {
	id := uuid.New()
	return &testIdentity{
		user: &models.User{ID: id, Email: "test@example.com", Name: "Test User"},
		view: &fakeView{data: session.Data{UserID: id, Synced: false}},
	}
}

// authed injects the identity into a request the way the auth middleware
// would.
func (ti *testIdentity) authed(r *http.Request) *http.Request {
	return middleware.WithTestIdentity(r, ti.user, ti.view)
}

// newTestHub builds a local-only hub (no Google clients) over the fake repo.
func newTestHub(states *fakeStates) *hub.Hub {
	return newTestHubWithResults(states, newFakeResults())
}

// newTestHubWithResults builds a hub over both fake repos, for tests that
// stage coaching results.
func newTestHubWithResults(states *fakeStates, results *fakeResults) *hub.Hub {
	return hub.New(states, results, nil, nil, 0)
}
