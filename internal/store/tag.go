package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
)

// TagStore defines the interface for tag persistence.
type TagStore interface {
	Create(ctx context.Context, tag *domain.Tag) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Tag, error)
	// List returns the user's tags by name; a nil category means all.
	List(ctx context.Context, userID uuid.UUID, category *domain.TagCategory) ([]*domain.Tag, error)
	Update(ctx context.Context, tag *domain.Tag) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
