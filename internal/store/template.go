package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
)

// TemplateStore defines the interface for DMO template persistence.
type TemplateStore interface {
	// Create saves a new template.
	Create(ctx context.Context, tpl *domain.TaskTemplate) error

	// CreateMany saves several templates in one statement.
	CreateMany(ctx context.Context, tpls []*domain.TaskTemplate) error

	// GetByID returns ErrTemplateNotFound if the template does not exist
	// or belongs to another user.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.TaskTemplate, error)

	// List returns every template of the user ordered by order index.
	List(ctx context.Context, userID uuid.UUID) ([]*domain.TaskTemplate, error)

	// ListActive returns the user's active templates ordered by order index.
	ListActive(ctx context.Context, userID uuid.UUID) ([]*domain.TaskTemplate, error)

	// Update saves title, quadrant, active flag, activation time, order
	// index and tag. Returns ErrTemplateNotFound if nothing matched.
	Update(ctx context.Context, tpl *domain.TaskTemplate) error

	// Delete removes the template. Its instances keep existing as ad-hoc tasks.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// WithTx returns a TemplateStore bound to tx.
	WithTx(tx *sql.Tx) TemplateStore
}
