package postgres

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/platform/logger"
	"github.com/phrazzld/dmo-api/internal/store"
)

// PostgresTagStore implements the store.TagStore interface.
type PostgresTagStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTagStore creates a new PostgresTagStore.
func NewPostgresTagStore(db store.DBTX, logger *slog.Logger) *PostgresTagStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTagStore{
		db:     db,
		logger: logger.With(slog.String("component", "tag_store")),
	}
}

var _ store.TagStore = (*PostgresTagStore)(nil)

const tagColumns = `id, user_id, name, color, icon, category, created_at`

func scanTag(row interface{ Scan(...any) error }) (*domain.Tag, error) {
	var t domain.Tag
	var category string
	if err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Color, &t.Icon, &category, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Category = domain.TagCategory(category)
	return &t, nil
}

// Create implements store.TagStore.Create
func (s *PostgresTagStore) Create(ctx context.Context, tag *domain.Tag) error {
	if err := tag.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tag (`+tagColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		tag.ID, tag.UserID, tag.Name, tag.Color, tag.Icon, tag.Category, tag.CreatedAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create tag",
			slog.String("error", err.Error()),
			slog.String("tag_id", tag.ID.String()))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.TagStore.GetByID
func (s *PostgresTagStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Tag, error) {
	tag, err := scanTag(s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tag WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, mapNotFound(err, store.ErrTagNotFound)
	}
	return tag, nil
}

// List implements store.TagStore.List
func (s *PostgresTagStore) List(
	ctx context.Context,
	userID uuid.UUID,
	category *domain.TagCategory,
) ([]*domain.Tag, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + tagColumns + ` FROM tag WHERE user_id = $1`
	args := []any{userID}
	if category != nil {
		query += ` AND category = $2`
		args = append(args, *category)
	}
	query += ` ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tags", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tags := []*domain.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, MapError(rows.Err())
}

// Update implements store.TagStore.Update
func (s *PostgresTagStore) Update(ctx context.Context, tag *domain.Tag) error {
	if err := tag.Validate(); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE tag SET name = $1, color = $2, icon = $3, category = $4 WHERE id = $5 AND user_id = $6`,
		tag.Name, tag.Color, tag.Icon, tag.Category, tag.ID, tag.UserID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTagNotFound)
}

// Delete implements store.TagStore.Delete
// Tasks and templates referencing the tag keep existing untagged.
func (s *PostgresTagStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tag WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTagNotFound)
}
