package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
)

// UserCount is a per-user completion tally.
type UserCount struct {
	UserID uuid.UUID
	Name   string
	Count  int
}

// CompletionStore defines the interface for task completion history.
type CompletionStore interface {
	// Create records a completion.
	Create(ctx context.Context, c *domain.Completion) error

	// DeleteLatestForTask removes the newest completion of a task.
	// Returns ErrCompletionNotFound when the task has none.
	DeleteLatestForTask(ctx context.Context, userID, taskID uuid.UUID) error

	// CountBetween counts completions of all users in [from, to).
	CountBetween(ctx context.Context, from, to time.Time) (int, error)

	// CountForUserBetween counts one user's completions in [from, to).
	CountForUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error)

	// CountsByUserSince tallies completions at or after since per user,
	// highest count first. Users without completions are omitted.
	CountsByUserSince(ctx context.Context, since time.Time) ([]UserCount, error)

	// Recent returns the newest completions of all users with the user's name.
	Recent(ctx context.Context, limit int) ([]domain.ActivityItem, error)

	// GetActivity returns one completion with the user's name.
	GetActivity(ctx context.Context, id uuid.UUID) (*domain.ActivityItem, error)

	// WithTx returns a CompletionStore bound to tx.
	WithTx(tx *sql.Tx) CompletionStore
}
