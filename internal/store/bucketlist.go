package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
)

// BucketlistStore defines the interface for bucketlist items.
type BucketlistStore interface {
	Create(ctx context.Context, item *domain.BucketlistItem) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.BucketlistItem, error)
	// List returns items by order index, then creation time.
	List(ctx context.Context, userID uuid.UUID) ([]*domain.BucketlistItem, error)
	Update(ctx context.Context, item *domain.BucketlistItem) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
