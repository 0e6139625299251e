package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/zenithflow/zenithflow/internal/models"
)

// CoachResultRepository stages finished coaching jobs between the worker and
// the API. The worker appends rows; the API drains them and folds each result
// into the live workspace store, which is the only writer of the state blob.
type CoachResultRepository struct {
	db *DB
}

// NewCoachResultRepository creates a new coach result repository
func NewCoachResultRepository(db *DB) *CoachResultRepository {
	return &CoachResultRepository{db: db}
}

// Add stages one finished coaching result for the user.
func (r *CoachResultRepository) Add(ctx context.Context, userID uuid.UUID, result models.CoachResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal coach result: %w", err)
	}

	query := `
		INSERT INTO coach_results (id, user_id, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, uuid.New(), userID, raw, time.Now()); err != nil {
		return fmt.Errorf("failed to stage coach result: %w", err)
	}
	return nil
}

// Drain returns and deletes the user's staged results, oldest first, in one
// transaction. Row locks skip entries another drain already claimed, so
// concurrent API replicas never deliver a result twice.
func (r *CoachResultRepository) Drain(ctx context.Context, userID uuid.UUID) ([]models.CoachResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin drain transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, payload FROM coach_results
		WHERE user_id = $1
		ORDER BY created_at, id
		FOR UPDATE SKIP LOCKED
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query coach results: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []uuid.UUID
	var results []models.CoachResult
	for rows.Next() {
		var id uuid.UUID
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan coach result: %w", err)
		}
		var result models.CoachResult
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal coach result: %w", err)
		}
		ids = append(ids, id)
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate coach results: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM coach_results WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to delete drained coach results: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit drain transaction: %w", err)
	}
	return results, nil
}
