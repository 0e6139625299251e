// Package hub materializes one in-memory workspace per user: the canonical
// state store seeded from Postgres, plus the cloud saver and calendar syncer
// built from the user's OAuth tokens. Handlers go through the hub instead of
// constructing any of these directly.
package hub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zenithflow/zenithflow/internal/cloudsync"
	"github.com/zenithflow/zenithflow/internal/database"
	"github.com/zenithflow/zenithflow/internal/models"
	"github.com/zenithflow/zenithflow/internal/services/google"
	"github.com/zenithflow/zenithflow/internal/session"
	"github.com/zenithflow/zenithflow/internal/state"
	"github.com/zenithflow/zenithflow/internal/timeline"
)

const (
	// persistDelay debounces state writes to Postgres. Shorter than the
	// spreadsheet debounce since Postgres is the store of record.
	persistDelay = 1 * time.Second

	persistTimeout = 10 * time.Second
)

// Workspace bundles everything request handlers need for one user.
type Workspace struct {
	UserID uuid.UUID
	Store  *state.Store
	Saver  *cloudsync.Saver
	Syncer *cloudsync.Syncer

	persist *state.Debouncer

	gestureMu sync.Mutex
	gesture   *timeline.Gesture
}

// WithGesture runs fn holding the workspace's gesture engine. The engine
// tracks one in-flight pointer interaction and is not safe for concurrent
// use, so all access is funneled through here.
func (w *Workspace) WithGesture(fn func(*timeline.Gesture)) {
	w.gestureMu.Lock()
	defer w.gestureMu.Unlock()
	fn(w.gesture)
}

// CloudReady reports whether this workspace has usable Google clients.
func (w *Workspace) CloudReady() bool {
	return w.Saver != nil && w.Syncer != nil
}

// Hub caches workspaces by user id. Safe for concurrent use.
type Hub struct {
	mu         sync.Mutex
	workspaces map[uuid.UUID]*Workspace

	states    database.AppStateRepositoryInterface
	results   database.CoachResultRepositoryInterface
	oauth     *google.OAuth
	logger    *zap.Logger
	saveDelay time.Duration
}

// New creates an empty hub. oauth may be nil when Google integration is not
// configured; workspaces are then local-only. results may be nil in tests
// that exercise no coaching flow.
func New(states database.AppStateRepositoryInterface, results database.CoachResultRepositoryInterface, oauth *google.OAuth, logger *zap.Logger, saveDelay time.Duration) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		workspaces: make(map[uuid.UUID]*Workspace),
		states:     states,
		results:    results,
		oauth:      oauth,
		logger:     logger,
		saveDelay:  saveDelay,
	}
}

// Workspace returns the cached workspace for the session's user, building it
// on first touch. The binding supplies the OAuth tokens for the Google
// clients; a session without tokens yields a local-only workspace.
func (h *Hub) Workspace(ctx context.Context, binding session.View) (*Workspace, error) {
	userID := binding.Data().UserID

	h.mu.Lock()
	if ws, ok := h.workspaces[userID]; ok {
		h.mu.Unlock()
		return ws, nil
	}
	h.mu.Unlock()

	ws, err := h.build(ctx, userID, binding)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	// Another request may have built the workspace concurrently; the first
	// one stored wins so everyone shares a single store.
	if existing, ok := h.workspaces[userID]; ok {
		ws.teardown()
		return existing, nil
	}
	h.workspaces[userID] = ws
	return ws, nil
}

func (h *Hub) build(ctx context.Context, userID uuid.UUID, binding session.View) (*Workspace, error) {
	st, err := h.states.GetOrDefault(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	logger := h.logger.With(zap.String("user_id", userID.String()))
	store := state.New(st, logger)

	ws := &Workspace{UserID: userID, Store: store}
	ws.persist = state.NewDebouncer(persistDelay, func() {
		pctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := h.states.Save(pctx, userID, store.State()); err != nil {
			logger.Error("state_persist_failed", zap.Error(err))
		}
	})

	if h.oauth != nil && binding.Data().AccessToken != "" {
		data := binding.Data()
		ts := h.oauth.TokenSource(ctx, data.OAuthToken())

		calendarSvc, err := google.NewCalendarService(ctx, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to build calendar client: %w", err)
		}
		sheetsSvc, err := google.NewSheetsService(ctx, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to build sheets client: %w", err)
		}

		ws.Saver = cloudsync.NewSaver(store, sheetsSvc, binding, logger, h.saveDelay)
		ws.Syncer = cloudsync.NewSyncer(store, calendarSvc, binding, logger)
	}

	var mirror timeline.Mirror
	if ws.Syncer != nil {
		mirror = ws.Syncer
	}
	ws.gesture = timeline.NewGesture(timeline.DefaultWindow(), store, mirror)

	// Every mutation schedules both the Postgres write and, when cloud sync
	// is wired, the debounced spreadsheet save.
	saver := ws.Saver
	store.OnChange(func() {
		ws.persist.Trigger()
		if saver != nil {
			saver.Trigger()
		}
	})

	logger.Info("workspace_materialized", zap.Bool("cloud", ws.CloudReady()))
	return ws, nil
}

// ApplyCoachResults drains the user's staged coaching results and folds them
// into the live workspace store. Each apply goes through a store setter, so
// the results reach the state blob on the next debounced persist and survive
// any concurrent workspace mutation. Drain failures are logged and skipped;
// the rows stay staged for the next call.
func (h *Hub) ApplyCoachResults(ctx context.Context, ws *Workspace) {
	if h.results == nil {
		return
	}
	pending, err := h.results.Drain(ctx, ws.UserID)
	if err != nil {
		h.logger.Error("coach_results_drain_failed",
			zap.String("user_id", ws.UserID.String()),
			zap.Error(err),
		)
		return
	}
	for _, result := range pending {
		switch result.Kind {
		case models.CoachResultRitual:
			if result.Ritual != nil {
				ws.Store.ApplyRitualPlan(result.Key, *result.Ritual)
			}
		case models.CoachResultReflection:
			if result.Reflection != nil {
				ws.Store.SetDailyAnalysis(result.Key, *result.Reflection)
			}
		case models.CoachResultWeekly:
			if result.Weekly != nil {
				ws.Store.SetWeeklyAnalysis(result.Key, *result.Weekly)
			}
		case models.CoachResultFinance:
			if result.Finance != nil {
				ws.Store.SetFinanceAnalysis(result.Key, *result.Finance)
			}
		}
	}
	if len(pending) > 0 {
		h.logger.Info("coach_results_applied",
			zap.String("user_id", ws.UserID.String()),
			zap.Int("count", len(pending)),
		)
	}
}

// Evict flushes and removes a user's workspace, e.g. on sign-out.
func (h *Hub) Evict(userID uuid.UUID) {
	h.mu.Lock()
	ws, ok := h.workspaces[userID]
	if ok {
		delete(h.workspaces, userID)
	}
	h.mu.Unlock()
	if ok {
		ws.teardown()
	}
}

// Shutdown flushes every workspace's pending writes.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	all := make([]*Workspace, 0, len(h.workspaces))
	for _, ws := range h.workspaces {
		all = append(all, ws)
	}
	h.workspaces = make(map[uuid.UUID]*Workspace)
	h.mu.Unlock()

	for _, ws := range all {
		ws.teardown()
	}
}

// teardown flushes pending writes and stops the timers.
func (w *Workspace) teardown() {
	if w.Saver != nil {
		w.Saver.Flush()
		w.Saver.Stop()
	}
	w.persist.Flush()
	w.persist.Stop()
}
