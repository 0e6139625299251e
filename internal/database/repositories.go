package database

import (
	"context"

	"github.com/google/uuid"

	"github.com/zenithflow/zenithflow/internal/models"
)

// UserRepositoryInterface defines the user repository operations handlers and
// workers depend on. The interface enables mock implementations in tests.
type UserRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByGoogleSub(ctx context.Context, sub string) (*models.User, error)
	UpsertByGoogleSub(ctx context.Context, sub, email, name string) (*models.User, error)
}

// AppStateRepositoryInterface defines the state blob operations.
type AppStateRepositoryInterface interface {
	Save(ctx context.Context, userID uuid.UUID, state models.AppState) error
	Get(ctx context.Context, userID uuid.UUID) (models.AppState, error)
	GetOrDefault(ctx context.Context, userID uuid.UUID) (models.AppState, error)
}

// CoachResultRepositoryInterface defines the staged coaching result
// operations shared by the worker (producer) and the API (consumer).
type CoachResultRepositoryInterface interface {
	Add(ctx context.Context, userID uuid.UUID, result models.CoachResult) error
	Drain(ctx context.Context, userID uuid.UUID) ([]models.CoachResult, error)
}

// Ensure concrete types implement the interfaces
var (
	_ UserRepositoryInterface        = (*UserRepository)(nil)
	_ AppStateRepositoryInterface    = (*AppStateRepository)(nil)
	_ CoachResultRepositoryInterface = (*CoachResultRepository)(nil)
)
