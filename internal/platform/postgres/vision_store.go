package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/platform/logger"
	"github.com/phrazzld/dmo-api/internal/store"
)

// PostgresVisionStore implements the store.VisionStore interface.
type PostgresVisionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresVisionStore creates a new PostgresVisionStore.
func NewPostgresVisionStore(db store.DBTX, logger *slog.Logger) *PostgresVisionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresVisionStore{
		db:     db,
		logger: logger.With(slog.String("component", "vision_store")),
	}
}

var _ store.VisionStore = (*PostgresVisionStore)(nil)

const goalColumns = `id, user_id, category, title, description, is_completed, order_index, created_at, updated_at`

func scanGoal(row interface{ Scan(...any) error }) (*domain.VisionGoal, error) {
	var g domain.VisionGoal
	var category string
	if err := row.Scan(
		&g.ID, &g.UserID, &category, &g.Title, &g.Description, &g.IsCompleted, &g.OrderIndex,
		&g.CreatedAt, &g.UpdatedAt,
	); err != nil {
		return nil, err
	}
	g.Category = domain.GoalCategory(category)
	return &g, nil
}

// Create implements store.VisionStore.Create
func (s *PostgresVisionStore) Create(ctx context.Context, goal *domain.VisionGoal) error {
	if err := goal.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vision_goal (`+goalColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		goal.ID, goal.UserID, goal.Category, goal.Title, goal.Description, goal.IsCompleted,
		goal.OrderIndex, goal.CreatedAt, goal.UpdatedAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create goal",
			slog.String("error", err.Error()),
			slog.String("goal_id", goal.ID.String()))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.VisionStore.GetByID
func (s *PostgresVisionStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.VisionGoal, error) {
	goal, err := scanGoal(s.db.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM vision_goal WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, mapNotFound(err, store.ErrGoalNotFound)
	}
	return goal, nil
}

// List implements store.VisionStore.List
func (s *PostgresVisionStore) List(ctx context.Context, userID uuid.UUID) ([]*domain.VisionGoal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+goalColumns+` FROM vision_goal
		WHERE user_id = $1
		ORDER BY order_index ASC, created_at ASC`, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	goals := []*domain.VisionGoal{}
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	return goals, MapError(rows.Err())
}

// Update implements store.VisionStore.Update
func (s *PostgresVisionStore) Update(ctx context.Context, goal *domain.VisionGoal) error {
	if err := goal.Validate(); err != nil {
		return err
	}
	goal.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE vision_goal
		SET category = $1, title = $2, description = $3, is_completed = $4, order_index = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8
	`, goal.Category, goal.Title, goal.Description, goal.IsCompleted, goal.OrderIndex, goal.UpdatedAt,
		goal.ID, goal.UserID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrGoalNotFound)
}

// Delete implements store.VisionStore.Delete
func (s *PostgresVisionStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM vision_goal WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrGoalNotFound)
}
