package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
)

// VisionStore defines the interface for vision board goals.
type VisionStore interface {
	Create(ctx context.Context, goal *domain.VisionGoal) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.VisionGoal, error)
	// List returns goals by order index, then creation time.
	List(ctx context.Context, userID uuid.UUID) ([]*domain.VisionGoal, error)
	Update(ctx context.Context, goal *domain.VisionGoal) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
