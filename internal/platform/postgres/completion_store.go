package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/platform/logger"
	"github.com/phrazzld/dmo-api/internal/store"
)

// PostgresCompletionStore implements the store.CompletionStore interface
// on the task_completions table.
type PostgresCompletionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCompletionStore creates a new PostgresCompletionStore.
func NewPostgresCompletionStore(db store.DBTX, logger *slog.Logger) *PostgresCompletionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCompletionStore{
		db:     db,
		logger: logger.With(slog.String("component", "completion_store")),
	}
}

var _ store.CompletionStore = (*PostgresCompletionStore)(nil)

// WithTx implements store.CompletionStore.WithTx
func (s *PostgresCompletionStore) WithTx(tx *sql.Tx) store.CompletionStore {
	return &PostgresCompletionStore{db: tx, logger: s.logger}
}

// Create implements store.CompletionStore.Create
func (s *PostgresCompletionStore) Create(ctx context.Context, c *domain.Completion) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_completions (id, user_id, task_id, task_title, quadrant, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.UserID, c.TaskID, c.TaskTitle, c.Quadrant, c.CompletedAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to record completion",
			slog.String("error", err.Error()),
			slog.String("task_id", c.TaskID.String()))
		return MapError(err)
	}
	return nil
}

// DeleteLatestForTask implements store.CompletionStore.DeleteLatestForTask
func (s *PostgresCompletionStore) DeleteLatestForTask(ctx context.Context, userID, taskID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM task_completions
		WHERE id = (
			SELECT id FROM task_completions
			WHERE user_id = $1 AND task_id = $2
			ORDER BY completed_at DESC
			LIMIT 1
		)
	`, userID, taskID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrCompletionNotFound)
}

// CountBetween implements store.CompletionStore.CountBetween
func (s *PostgresCompletionStore) CountBetween(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM task_completions WHERE completed_at >= $1 AND completed_at < $2`,
		from.UTC(), to.UTC()).Scan(&n)
	if err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// CountForUserBetween implements store.CompletionStore.CountForUserBetween
func (s *PostgresCompletionStore) CountForUserBetween(
	ctx context.Context,
	userID uuid.UUID,
	from, to time.Time,
) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM task_completions
		WHERE user_id = $1 AND completed_at >= $2 AND completed_at < $3
	`, userID, from.UTC(), to.UTC()).Scan(&n)
	if err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// CountsByUserSince implements store.CompletionStore.CountsByUserSince
// Ties are broken by user name so rankings are stable between calls.
func (s *PostgresCompletionStore) CountsByUserSince(ctx context.Context, since time.Time) ([]store.UserCount, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.user_id, COALESCE(NULLIF(u.full_name, ''), split_part(u.email, '@', 1)), COUNT(*)
		FROM task_completions c
		JOIN users u ON u.id = c.user_id
		WHERE c.completed_at >= $1
		GROUP BY c.user_id, u.full_name, u.email
		ORDER BY COUNT(*) DESC, 2 ASC
	`, since.UTC())
	if err != nil {
		log.Error("failed to count completions by user", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	counts := []store.UserCount{}
	for rows.Next() {
		var uc store.UserCount
		if err := rows.Scan(&uc.UserID, &uc.Name, &uc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, uc)
	}
	return counts, MapError(rows.Err())
}

const activitySelect = `
	SELECT c.id, c.user_id, c.task_id, c.task_title, c.quadrant, c.completed_at,
		COALESCE(NULLIF(u.full_name, ''), split_part(u.email, '@', 1))
	FROM task_completions c
	JOIN users u ON u.id = c.user_id`

func scanActivity(row interface{ Scan(...any) error }) (domain.ActivityItem, error) {
	var a domain.ActivityItem
	var quadrant string
	err := row.Scan(&a.ID, &a.UserID, &a.TaskID, &a.TaskTitle, &quadrant, &a.CompletedAt, &a.UserName)
	a.Quadrant = domain.Quadrant(quadrant)
	return a, err
}

// Recent implements store.CompletionStore.Recent
func (s *PostgresCompletionStore) Recent(ctx context.Context, limit int) ([]domain.ActivityItem, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, activitySelect+`
		ORDER BY c.completed_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	items := []domain.ActivityItem{}
	for rows.Next() {
		item, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, MapError(rows.Err())
}

// GetActivity implements store.CompletionStore.GetActivity
func (s *PostgresCompletionStore) GetActivity(ctx context.Context, id uuid.UUID) (*domain.ActivityItem, error) {
	item, err := scanActivity(s.db.QueryRowContext(ctx, activitySelect+` WHERE c.id = $1`, id))
	if err != nil {
		return nil, mapNotFound(err, store.ErrCompletionNotFound)
	}
	return &item, nil
}
