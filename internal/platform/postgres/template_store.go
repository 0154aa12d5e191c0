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

// PostgresTemplateStore implements the store.TemplateStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTemplateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTemplateStore creates a new PostgreSQL implementation of the TemplateStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTemplateStore(db store.DBTX, logger *slog.Logger) *PostgresTemplateStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTemplateStore{
		db:     db,
		logger: logger.With(slog.String("component", "template_store")),
	}
}

// Ensure PostgresTemplateStore implements store.TemplateStore interface
var _ store.TemplateStore = (*PostgresTemplateStore)(nil)

// WithTx implements store.TemplateStore.WithTx
func (s *PostgresTemplateStore) WithTx(tx *sql.Tx) store.TemplateStore {
	return &PostgresTemplateStore{db: tx, logger: s.logger}
}

const templateColumns = `id, user_id, title, quadrant, is_active, order_index, tag_id,
	activated_at, created_at, updated_at`

// scanTemplate maps one row and validates it. Malformed rows surface as
// store.ErrInvalidEntity.
func scanTemplate(row interface{ Scan(...any) error }) (*domain.TaskTemplate, error) {
	var t domain.TaskTemplate
	var quadrant string
	if err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&quadrant,
		&t.IsActive,
		&t.OrderIndex,
		&t.TagID,
		&t.ActivatedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Quadrant = domain.Quadrant(quadrant)
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: template %s: %v", store.ErrInvalidEntity, t.ID, err)
	}
	return &t, nil
}

// Create implements store.TemplateStore.Create
func (s *PostgresTemplateStore) Create(ctx context.Context, tpl *domain.TaskTemplate) error {
	return s.CreateMany(ctx, []*domain.TaskTemplate{tpl})
}

// CreateMany implements store.TemplateStore.CreateMany
func (s *PostgresTemplateStore) CreateMany(ctx context.Context, tpls []*domain.TaskTemplate) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if len(tpls) == 0 {
		return nil
	}

	const cols = 10
	var sb strings.Builder
	sb.WriteString(`INSERT INTO task_template (` + templateColumns + `) VALUES `)
	args := make([]any, 0, len(tpls)*cols)
	for i, tpl := range tpls {
		if err := tpl.Validate(); err != nil {
			log.Warn("template validation failed during create",
				slog.String("error", err.Error()),
				slog.String("template_id", tpl.ID.String()))
			return err
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		writePlaceholders(&sb, i*cols, cols)
		args = append(args,
			tpl.ID, tpl.UserID, tpl.Title, tpl.Quadrant, tpl.IsActive, tpl.OrderIndex,
			tpl.TagID, tpl.ActivatedAt, tpl.CreatedAt, tpl.UpdatedAt)
	}

	if _, err := s.db.ExecContext(ctx, sb.String(), args...); err != nil {
		log.Error("failed to create templates",
			slog.String("error", err.Error()),
			slog.Int("count", len(tpls)))
		return MapError(err)
	}

	log.Debug("templates created", slog.Int("count", len(tpls)))
	return nil
}

// GetByID implements store.TemplateStore.GetByID
func (s *PostgresTemplateStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.TaskTemplate, error) {
	tpl, err := scanTemplate(s.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM task_template WHERE id = $1 AND user_id = $2`,
		id, userID))
	if err != nil {
		return nil, mapNotFound(err, store.ErrTemplateNotFound)
	}
	return tpl, nil
}

// List implements store.TemplateStore.List
func (s *PostgresTemplateStore) List(ctx context.Context, userID uuid.UUID) ([]*domain.TaskTemplate, error) {
	return s.query(ctx, `SELECT `+templateColumns+` FROM task_template
		WHERE user_id = $1
		ORDER BY order_index ASC, created_at ASC`, userID)
}

// ListActive implements store.TemplateStore.ListActive
func (s *PostgresTemplateStore) ListActive(ctx context.Context, userID uuid.UUID) ([]*domain.TaskTemplate, error) {
	return s.query(ctx, `SELECT `+templateColumns+` FROM task_template
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY order_index ASC, created_at ASC`, userID)
}

func (s *PostgresTemplateStore) query(ctx context.Context, query string, args ...any) ([]*domain.TaskTemplate, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query templates", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tpls := []*domain.TaskTemplate{}
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			log.Error("failed to scan template row", slog.String("error", err.Error()))
			return nil, err
		}
		tpls = append(tpls, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return tpls, nil
}

// Update implements store.TemplateStore.Update
func (s *PostgresTemplateStore) Update(ctx context.Context, tpl *domain.TaskTemplate) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := tpl.Validate(); err != nil {
		return err
	}
	tpl.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE task_template
		SET title = $1, quadrant = $2, is_active = $3, order_index = $4, tag_id = $5,
			activated_at = $6, updated_at = $7
		WHERE id = $8 AND user_id = $9
	`,
		tpl.Title, tpl.Quadrant, tpl.IsActive, tpl.OrderIndex, tpl.TagID,
		tpl.ActivatedAt, tpl.UpdatedAt, tpl.ID, tpl.UserID,
	)
	if err != nil {
		log.Error("failed to update template",
			slog.String("error", err.Error()),
			slog.String("template_id", tpl.ID.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTemplateNotFound)
}

// Delete implements store.TemplateStore.Delete
func (s *PostgresTemplateStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM task_template WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete template",
			slog.String("error", err.Error()),
			slog.String("template_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTemplateNotFound)
}

// writePlaceholders appends "($n, $n+1, ...)" for one row of a multi-row insert.
func writePlaceholders(sb *strings.Builder, offset, n int) {
	sb.WriteByte('(')
	for j := 1; j <= n; j++ {
		if j > 1 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "$%d", offset+j)
	}
	sb.WriteByte(')')
}
