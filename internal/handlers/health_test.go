package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
)

func TestHealthChecker_BasicMode(t *testing.T) {
	t.Parallel()

	// Basic mode must not touch any dependency, so nil deps are fine.
	h := NewHealthChecker(nil, nil, nil)

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("Status = %q, want healthy", resp.Status)
	}
	if resp.Checks != nil {
		t.Errorf("basic mode should carry no checks, got %v", resp.Checks)
	}
}

func TestPingerFunc(t *testing.T) {
	t.Parallel()

	want := errors.New("connection refused")
	var p Pinger = PingerFunc(func(ctx context.Context) error { return want })

	if err := p.Ping(context.Background()); !errors.Is(err, want) {
		t.Errorf("Ping() = %v, want %v", err, want)
	}
}
