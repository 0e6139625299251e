package middleware

import (
	"net/http"
)

// DefaultMaxRequestSize caps request bodies at 1MB. The largest legitimate
// payload is a full state document load, which stays well under this.
const DefaultMaxRequestSize int64 = 1 << 20

// MaxRequestSize rejects request bodies larger than maxBytes.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Declared length first, so oversized uploads fail before any read.
			if r.ContentLength > maxBytes {
				http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
				return
			}

			// MaxBytesReader catches chunked bodies with no Content-Length.
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			defer r.Body.Close()

			next.ServeHTTP(w, r)
		})
	}
}
