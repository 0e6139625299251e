package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/zenithflow/zenithflow/internal/database"
	"github.com/zenithflow/zenithflow/internal/models"
	"github.com/zenithflow/zenithflow/internal/session"
)

type contextKey string

const (
	userContextKey    contextKey = "user"
	sessionContextKey contextKey = "session"
)

// UserFromContext extracts the authenticated user from the request context
func UserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(userContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// SessionFromContext extracts the bound session from the request context
func SessionFromContext(r *http.Request) session.View {
	b, ok := r.Context().Value(sessionContextKey).(session.View)
	if !ok {
		return nil
	}
	return b
}

// WithTestIdentity injects a user and session into a request context. Test
// helper only.
func WithTestIdentity(r *http.Request, user *models.User, view session.View) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	ctx = context.WithValue(ctx, sessionContextKey, view)
	return r.WithContext(ctx)
}

// Auth creates authentication middleware that resolves opaque bearer session
// tokens against Redis and loads the owning user.
func Auth(sessions *session.Manager, users database.UserRepositoryInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "Missing Authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			ctx := r.Context()
			binding, err := sessions.Bind(ctx, parts[1])
			if err != nil {
				if errors.Is(err, session.ErrNotFound) {
					respondError(w, http.StatusUnauthorized, "Invalid or expired session")
					return
				}
				log.Printf("Session lookup failed: %v", err)
				respondError(w, http.StatusInternalServerError, "Session store error")
				return
			}

			user, err := users.GetByID(ctx, binding.Data().UserID)
			if err != nil {
				if errors.Is(err, database.ErrUserNotFound) {
					respondError(w, http.StatusUnauthorized, "Session user no longer exists")
					return
				}
				log.Printf("Database error while fetching user: %v", err)
				respondError(w, http.StatusInternalServerError, "Database error")
				return
			}

			ctx = context.WithValue(ctx, userContextKey, user)
			ctx = context.WithValue(ctx, sessionContextKey, binding)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success": false,
		"error":   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
