package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/gorilla/mux"

	"github.com/zenithflow/zenithflow/internal/database"
	"github.com/zenithflow/zenithflow/internal/hub"
	"github.com/zenithflow/zenithflow/internal/middleware"
	"github.com/zenithflow/zenithflow/internal/services/google"
	"github.com/zenithflow/zenithflow/internal/services/oidc"
	"github.com/zenithflow/zenithflow/internal/session"
)

// AuthHandler handles the Google sign-in flow and session lifecycle
type AuthHandler struct {
	oauth    *google.OAuth
	verifier *oidc.Verifier
	users    database.UserRepositoryInterface
	sessions *session.Manager
	hub      *hub.Hub
	logger   *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(oauth *google.OAuth, verifier *oidc.Verifier, users database.UserRepositoryInterface, sessions *session.Manager, hb *hub.Hub, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{oauth: oauth, verifier: verifier, users: users, sessions: sessions, hub: hb, logger: logger}
}

// RegisterRoutes registers the unauthenticated auth routes. Me and Logout are
// registered separately behind the auth middleware.
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/login", h.Login).Methods("GET")
	r.HandleFunc("/callback", h.Callback).Methods("GET")
}

// RegisterProtectedRoutes registers the session-scoped auth routes.
func (h *AuthHandler) RegisterProtectedRoutes(r *mux.Router) {
	r.HandleFunc("/me", h.GetMe).Methods("GET")
	r.HandleFunc("/logout", h.Logout).Methods("POST")
}

// LoginResponse carries the Google consent URL the client should open.
type LoginResponse struct {
	AuthURL string `json:"authUrl"`
}

// CallbackResponse is the result of a completed sign-in.
type CallbackResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

// Login returns the consent URL for the Google sign-in redirect.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	respondJSON(w, http.StatusOK, LoginResponse{AuthURL: h.oauth.AuthCodeURL(state)})
}

// Callback completes the sign-in: exchanges the authorization code, verifies
// the ID token, upserts the user, and mints a synced session. The session is
// born synced since the OAuth scopes already cover calendar and sheets.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	code := r.URL.Query().Get("code")
	if code == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Missing authorization code")
		return
	}

	token, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		h.logger.Warn("oauth_exchange_failed", zap.Error(err))
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Authorization code exchange failed")
		return
	}

	rawIDToken, _ := token.Extra("id_token").(string)
	if rawIDToken == "" {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Token response carried no ID token")
		return
	}
	claims, err := h.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		h.logger.Warn("id_token_verify_failed", zap.Error(err))
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid ID token")
		return
	}

	user, err := h.users.UpsertByGoogleSub(ctx, claims.Sub, claims.Email, claims.Name)
	if err != nil {
		h.logger.Error("user_upsert_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to store user")
		return
	}

	sessionToken, err := h.sessions.Create(ctx, session.Data{
		UserID:       user.ID,
		Synced:       true,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenExpiry:  token.Expiry,
	})
	if err != nil {
		h.logger.Error("session_create_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create session")
		return
	}

	h.logger.Info("user_signed_in", zap.String("user_id", user.ID.String()))
	respondJSON(w, http.StatusOK, CallbackResponse{Token: sessionToken, User: user})
}

// GetMe returns current user information
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Logout deletes the session and evicts the user's in-memory workspace,
// flushing its pending writes first.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) == 2 {
		if err := h.sessions.Delete(r.Context(), parts[1]); err != nil {
			h.logger.Warn("session_delete_failed", zap.Error(err))
		}
	}
	h.hub.Evict(user.ID)

	w.WriteHeader(http.StatusNoContent)
}
