// Package cloudsync keeps a remote spreadsheet-backed store eventually
// consistent with the local state tree, and reconciles externally fetched
// calendar events into local tasks.
package cloudsync

import (
	"context"
	"time"

	"github.com/zenithflow/zenithflow/internal/models"
)

// SheetStore is the remote spreadsheet service contract. Cell content is
// plain text with a fixed maximum length; ranges use A1 notation.
type SheetStore interface {
	Read(ctx context.Context, spreadsheetID, a1Range string) ([][]string, error)
	Update(ctx context.Context, spreadsheetID, a1Range string, values [][]string) error
	Append(ctx context.Context, spreadsheetID, a1Range string, values [][]string) error
	Clear(ctx context.Context, spreadsheetID, a1Range string) error
	// EnsureSheet creates the named tab if it does not exist. Hidden tabs
	// hold machine payloads the user should not edit.
	EnsureSheet(ctx context.Context, spreadsheetID, title string, hidden bool) error
	CreateSpreadsheet(ctx context.Context, title string) (string, error)
	// FindSpreadsheet returns the id of an existing spreadsheet by title, or
	// empty when none exists.
	FindSpreadsheet(ctx context.Context, title string) (string, error)
	// Verify performs a cheap read to confirm a cached spreadsheet id still
	// resolves; a stale id returns an error.
	Verify(ctx context.Context, spreadsheetID string) error
}

// Calendar is the remote calendar service contract.
type Calendar interface {
	ListEvents(ctx context.Context, timeMin time.Time) ([]models.CalendarEvent, error)
	InsertEvent(ctx context.Context, title, date, startTime string, durationMinutes int) (string, error)
	UpdateEvent(ctx context.Context, eventID, title, date, startTime string, durationMinutes int) error
	DeleteEvent(ctx context.Context, eventID string) error
}

// SessionState is the per-user sync session the saver consults: whether a
// sync session is established and the cached spreadsheet id.
type SessionState interface {
	Synced() bool
	SetSynced(synced bool)
	SpreadsheetID() string
	SetSpreadsheetID(id string)
}
