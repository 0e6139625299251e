package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated ZenithFlow user.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	GoogleSub string    `json:"-"` // Google account subject, stable across sessions
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Session is the server-side analog of the browser's persisted sync state:
// whether the user is connected to Google, the OAuth tokens, and the cached
// spreadsheet id. Stored in Redis keyed by the session token.
type Session struct {
	UserID        uuid.UUID `json:"user_id"`
	Synced        bool      `json:"synced"`
	AccessToken   string    `json:"access_token,omitempty"`
	RefreshToken  string    `json:"refresh_token,omitempty"`
	TokenExpiry   time.Time `json:"token_expiry,omitempty"`
	SpreadsheetID string    `json:"spreadsheet_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
