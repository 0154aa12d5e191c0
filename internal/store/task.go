package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
)

// TaskStore defines the interface for daily task persistence.
type TaskStore interface {
	// Create saves one task.
	Create(ctx context.Context, task *domain.Task) error

	// CreateMany inserts tasks in a single statement. Rows that would
	// duplicate an existing (user, date, source template) instance are
	// skipped. Returns the number of rows actually inserted.
	CreateMany(ctx context.Context, tasks []*domain.Task) (int, error)

	// GetByID returns ErrTaskNotFound if the task does not exist or belongs
	// to another user.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error)

	// Update saves title, description, deadline, tag, linked post and quadrant.
	Update(ctx context.Context, task *domain.Task) error

	// UpdateStatus sets the status of one task.
	UpdateStatus(ctx context.Context, userID, id uuid.UUID, status domain.TaskStatus) error

	// UpdateQuadrant moves one task to another quadrant.
	UpdateQuadrant(ctx context.Context, userID, id uuid.UUID, quadrant domain.Quadrant) error

	// Delete removes one task.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// MaterializedTemplateIDs returns the source template ids of the
	// user's tasks dated date.
	MaterializedTemplateIDs(ctx context.Context, userID uuid.UUID, date domain.Date) ([]uuid.UUID, error)

	// ListPendingOrOnDate returns every pending task of the user on any
	// date plus every task dated date, ordered by order index.
	ListPendingOrOnDate(ctx context.Context, userID uuid.UUID, date domain.Date) ([]domain.Task, error)

	// ListOnDate returns only the tasks dated date, ordered by order index.
	ListOnDate(ctx context.Context, userID uuid.UUID, date domain.Date) ([]domain.Task, error)

	// CountOnDate counts the user's tasks dated date.
	CountOnDate(ctx context.Context, userID uuid.UUID, date domain.Date) (int, error)

	// ListForReport returns the tasks whose report day falls in [from, to]:
	// the deadline's day in tz when a deadline is set, else the task date.
	ListForReport(ctx context.Context, userID uuid.UUID, from, to domain.Date, tz string) ([]domain.Task, error)

	// WithTx returns a TaskStore bound to tx.
	WithTx(tx *sql.Tx) TaskStore
}
