package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

func newSyncRouter(h *SyncHandler) *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/sync").Subrouter())
	return r
}

func TestSyncHandler_StatusLocalOnly(t *testing.T) {
	t.Parallel()

	ti := newTestIdentity()
	ti.view.SetSpreadsheetID("sheet-123")
	h := NewSyncHandler(newTestHub(newFakeStates()), nil)
	router := newSyncRouter(h)

	req := ti.authed(httptest.NewRequest("GET", "/sync/status", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data StatusResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.CloudReady {
		t.Error("CloudReady = true, want false for a hub without Google clients")
	}
	if resp.Data.SpreadsheetID != "sheet-123" {
		t.Errorf("SpreadsheetID = %q", resp.Data.SpreadsheetID)
	}
}

func TestSyncHandler_OperationsRequireCloud(t *testing.T) {
	t.Parallel()

	ti := newTestIdentity()
	h := NewSyncHandler(newTestHub(newFakeStates()), nil)
	router := newSyncRouter(h)

	for _, path := range []string{"/sync/calendar", "/sync/save", "/sync/load"} {
		req := ti.authed(httptest.NewRequest("POST", path, nil))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusConflict {
			t.Errorf("POST %s status = %d, want 409", path, rec.Code)
		}
	}
}
