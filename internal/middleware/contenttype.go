package middleware

import (
	"net/http"
	"strings"
)

// ContentType requires application/json on requests that carry a body.
// Bodyless POSTs (toggle, undo, manual sync) are exempt.
func ContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasBody := (r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut) && r.ContentLength != 0
		if hasBody {
			ct := r.Header.Get("Content-Type")
			if ct == "" {
				http.Error(w, "Content-Type header is required", http.StatusBadRequest)
				return
			}
			// Accept charset suffixes, e.g. "application/json; charset=utf-8".
			if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
