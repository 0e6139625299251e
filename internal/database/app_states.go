package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zenithflow/zenithflow/internal/models"
)

// ErrStateNotFound is returned when a user has no stored state yet.
var ErrStateNotFound = errors.New("app state not found")

// AppStateRepository persists each user's full application state as one JSONB
// blob. The blob is the store-of-record; the spreadsheet copy is a mirror.
type AppStateRepository struct {
	db *DB
}

// NewAppStateRepository creates a new app state repository
func NewAppStateRepository(db *DB) *AppStateRepository {
	return &AppStateRepository{db: db}
}

// Save upserts a user's state blob.
func (r *AppStateRepository) Save(ctx context.Context, userID uuid.UUID, state models.AppState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal app state: %w", err)
	}

	query := `
		INSERT INTO app_states (user_id, state, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			state = EXCLUDED.state,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, userID, raw, time.Now()); err != nil {
		return fmt.Errorf("failed to save app state: %w", err)
	}
	return nil
}

// Get loads a user's state blob.
func (r *AppStateRepository) Get(ctx context.Context, userID uuid.UUID) (models.AppState, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT state FROM app_states WHERE user_id = $1`, userID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AppState{}, ErrStateNotFound
	}
	if err != nil {
		return models.AppState{}, fmt.Errorf("failed to get app state: %w", err)
	}

	var state models.AppState
	if err := json.Unmarshal(raw, &state); err != nil {
		return models.AppState{}, fmt.Errorf("failed to unmarshal app state: %w", err)
	}
	return state, nil
}

// GetOrDefault loads a user's state, falling back to a fresh default for
// first-time users.
func (r *AppStateRepository) GetOrDefault(ctx context.Context, userID uuid.UUID) (models.AppState, error) {
	state, err := r.Get(ctx, userID)
	if errors.Is(err, ErrStateNotFound) {
		return models.NewAppState(), nil
	}
	return state, err
}
