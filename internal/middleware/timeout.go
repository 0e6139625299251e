package middleware

import (
	"context"
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds a single request. Calendar and spreadsheet
// round trips are the slowest paths and finish well inside 30s.
const DefaultRequestTimeout = 30 * time.Second

// Timeout cancels the request context and writes a 503 after the deadline.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			// The context deadline lets downstream Google and Postgres calls
			// abort; TimeoutHandler handles the response side.
			handler := http.TimeoutHandler(next, timeout, "Request Timeout")
			handler.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
