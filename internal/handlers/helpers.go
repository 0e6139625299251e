package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/zenithflow/zenithflow/internal/hub"
	"github.com/zenithflow/zenithflow/internal/middleware"
)

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage removes internal details from error messages
func sanitizeErrorMessage(message string) string {
	sanitized := message
	if len(sanitized) > 200 {
		sanitized = sanitized[:200] + "..."
	}
	return sanitized
}

// respondJSONError sends an error JSON response with sanitized error messages
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Sanitize error message to prevent information disclosure
	sanitizedMessage := sanitizeErrorMessage(message)

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   sanitizedMessage,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// workspaceFor resolves the authenticated user's workspace, writing the error
// response itself when it cannot.
func workspaceFor(w http.ResponseWriter, r *http.Request, h *hub.Hub) (*hub.Workspace, bool) {
	binding := middleware.SessionFromContext(r)
	if binding == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Session not found in context")
		return nil, false
	}
	ws, err := h.Workspace(r.Context(), binding)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load workspace")
		return nil, false
	}
	return ws, true
}
