package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/platform/logger"
	"github.com/phrazzld/dmo-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

const taskColumns = `id, user_id, date, title, description, quadrant, status, order_index,
	deadline_at, source_template_id, linked_post_id, tag_id, created_at, updated_at`

const taskColumnCount = 14

func taskArgs(t *domain.Task) []any {
	return []any{
		t.ID, t.UserID, t.Date, t.Title, t.Description, t.Quadrant, t.Status, t.OrderIndex,
		t.DeadlineAt, t.SourceTemplateID, t.LinkedPostID, t.TagID, t.CreatedAt, t.UpdatedAt,
	}
}

// scanTask maps one row and validates it. Malformed rows surface as
// store.ErrInvalidEntity.
func scanTask(row interface{ Scan(...any) error }) (domain.Task, error) {
	var t domain.Task
	var quadrant, status string
	if err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Date,
		&t.Title,
		&t.Description,
		&quadrant,
		&status,
		&t.OrderIndex,
		&t.DeadlineAt,
		&t.SourceTemplateID,
		&t.LinkedPostID,
		&t.TagID,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return domain.Task{}, err
	}
	t.Quadrant = domain.Quadrant(quadrant)
	t.Status = domain.TaskStatus(status)
	if err := t.Validate(); err != nil {
		return domain.Task{}, fmt.Errorf("%w: task %s: %v", store.ErrInvalidEntity, t.ID, err)
	}
	return t, nil
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO daily_task (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		taskArgs(task)...)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("date", task.Date.String()))
	return nil
}

// CreateMany implements store.TaskStore.CreateMany
// Conflicts on the (user, date, source template) unique index are skipped,
// so concurrent materializations of the same day cannot duplicate rows.
func (s *PostgresTaskStore) CreateMany(ctx context.Context, tasks []*domain.Task) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if len(tasks) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO daily_task (` + taskColumns + `) VALUES `)
	args := make([]any, 0, len(tasks)*taskColumnCount)
	for i, task := range tasks {
		if err := task.Validate(); err != nil {
			log.Warn("task validation failed during bulk create",
				slog.String("error", err.Error()),
				slog.String("task_id", task.ID.String()))
			return 0, err
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		writePlaceholders(&sb, i*taskColumnCount, taskColumnCount)
		args = append(args, taskArgs(task)...)
	}
	sb.WriteString(` ON CONFLICT (user_id, date, source_template_id)
		WHERE source_template_id IS NOT NULL DO NOTHING`)

	result, err := s.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		log.Error("failed to bulk create tasks",
			slog.String("error", err.Error()),
			slog.Int("count", len(tasks)))
		return 0, MapError(err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Debug("tasks bulk created",
		slog.Int("requested", len(tasks)),
		slog.Int64("inserted", inserted))
	return int(inserted), nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error) {
	task, err := scanTask(s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM daily_task WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, mapNotFound(err, store.ErrTaskNotFound)
	}
	return &task, nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	task.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE daily_task
		SET title = $1, description = $2, deadline_at = $3, tag_id = $4,
			linked_post_id = $5, quadrant = $6, updated_at = $7
		WHERE id = $8 AND user_id = $9
	`,
		task.Title, task.Description, task.DeadlineAt, task.TagID,
		task.LinkedPostID, task.Quadrant, task.UpdatedAt, task.ID, task.UserID,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// UpdateStatus implements store.TaskStore.UpdateStatus
func (s *PostgresTaskStore) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status domain.TaskStatus) error {
	if !status.Valid() {
		return domain.ErrInvalidTaskStatus
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE daily_task SET status = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`,
		status, time.Now().UTC(), id, userID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// UpdateQuadrant implements store.TaskStore.UpdateQuadrant
func (s *PostgresTaskStore) UpdateQuadrant(ctx context.Context, userID, id uuid.UUID, quadrant domain.Quadrant) error {
	if !quadrant.Valid() {
		return domain.ErrInvalidQuadrant
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE daily_task SET quadrant = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`,
		quadrant, time.Now().UTC(), id, userID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM daily_task WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// MaterializedTemplateIDs implements store.TaskStore.MaterializedTemplateIDs
func (s *PostgresTaskStore) MaterializedTemplateIDs(
	ctx context.Context,
	userID uuid.UUID,
	date domain.Date,
) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT source_template_id FROM daily_task
		WHERE user_id = $1 AND date = $2 AND source_template_id IS NOT NULL
	`, userID, date)
	if err != nil {
		log.Error("failed to query materialized template ids",
			slog.String("error", err.Error()),
			slog.String("date", date.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return ids, nil
}

// ListPendingOrOnDate implements store.TaskStore.ListPendingOrOnDate
func (s *PostgresTaskStore) ListPendingOrOnDate(
	ctx context.Context,
	userID uuid.UUID,
	date domain.Date,
) ([]domain.Task, error) {
	return s.query(ctx, `SELECT `+taskColumns+` FROM daily_task
		WHERE user_id = $1 AND (status = 'pending' OR date = $2)
		ORDER BY order_index ASC, created_at ASC`, userID, date)
}

// ListOnDate implements store.TaskStore.ListOnDate
func (s *PostgresTaskStore) ListOnDate(ctx context.Context, userID uuid.UUID, date domain.Date) ([]domain.Task, error) {
	return s.query(ctx, `SELECT `+taskColumns+` FROM daily_task
		WHERE user_id = $1 AND date = $2
		ORDER BY order_index ASC, created_at ASC`, userID, date)
}

// CountOnDate implements store.TaskStore.CountOnDate
func (s *PostgresTaskStore) CountOnDate(ctx context.Context, userID uuid.UUID, date domain.Date) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM daily_task WHERE user_id = $1 AND date = $2`, userID, date).Scan(&n)
	if err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// ListForReport implements store.TaskStore.ListForReport
func (s *PostgresTaskStore) ListForReport(
	ctx context.Context,
	userID uuid.UUID,
	from, to domain.Date,
	tz string,
) ([]domain.Task, error) {
	return s.query(ctx, `SELECT `+taskColumns+` FROM daily_task
		WHERE user_id = $1
		  AND COALESCE((deadline_at AT TIME ZONE $4)::date, date) BETWEEN $2 AND $3
		ORDER BY date ASC, order_index ASC`, userID, from, to, tz)
}

func (s *PostgresTaskStore) query(ctx context.Context, query string, args ...any) ([]domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return tasks, nil
}
