package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestLoggingPreservesStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"ok", "GET", "/api/v1/state", http.StatusOK},
		{"created", "POST", "/api/v1/tasks", http.StatusCreated},
		{"not found", "GET", "/api/v1/tasks/task-999", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			mw := Logging(zap.NewNop())(handler)

			w := httptest.NewRecorder()
			mw.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			resp := w.Result()
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}

func TestLoggingPreservesBody(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	})
	mw := Logging(zap.NewNop())(handler)

	w := httptest.NewRecorder()
	mw.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/events", nil))

	resp := w.Result()
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want 201", resp.StatusCode)
	}
	if w.Body.String() != "created" {
		t.Errorf("body = %q, want created", w.Body.String())
	}
}
