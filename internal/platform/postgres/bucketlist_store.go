package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/platform/logger"
	"github.com/phrazzld/dmo-api/internal/store"
)

// PostgresBucketlistStore implements the store.BucketlistStore interface.
// Tag ids live in a UUID[] column, exchanged as comma separated text.
type PostgresBucketlistStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBucketlistStore creates a new PostgresBucketlistStore.
func NewPostgresBucketlistStore(db store.DBTX, logger *slog.Logger) *PostgresBucketlistStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresBucketlistStore{
		db:     db,
		logger: logger.With(slog.String("component", "bucketlist_store")),
	}
}

var _ store.BucketlistStore = (*PostgresBucketlistStore)(nil)

const bucketColumns = `id, user_id, title, description, image_url, is_completed, completed_at,
	order_index, array_to_string(tag_ids, ','), created_at, updated_at`

func joinUUIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}

func splitUUIDs(s string) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	if s == "" {
		return ids, nil
	}
	for _, part := range strings.Split(s, ",") {
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, fmt.Errorf("%w: tag id %q", store.ErrInvalidEntity, part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func scanBucketItem(row interface{ Scan(...any) error }) (*domain.BucketlistItem, error) {
	var b domain.BucketlistItem
	var tagIDs string
	if err := row.Scan(
		&b.ID, &b.UserID, &b.Title, &b.Description, &b.ImageURL, &b.IsCompleted, &b.CompletedAt,
		&b.OrderIndex, &tagIDs, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ids, err := splitUUIDs(tagIDs)
	if err != nil {
		return nil, err
	}
	b.TagIDs = ids
	return &b, nil
}

// Create implements store.BucketlistStore.Create
func (s *PostgresBucketlistStore) Create(ctx context.Context, item *domain.BucketlistItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bucketlist_item (id, user_id, title, description, image_url, is_completed,
			completed_at, order_index, tag_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, string_to_array($9, ',')::uuid[], $10, $11)
	`, item.ID, item.UserID, item.Title, item.Description, item.ImageURL, item.IsCompleted,
		item.CompletedAt, item.OrderIndex, joinUUIDs(item.TagIDs), item.CreatedAt, item.UpdatedAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create bucketlist item",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.BucketlistStore.GetByID
func (s *PostgresBucketlistStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.BucketlistItem, error) {
	item, err := scanBucketItem(s.db.QueryRowContext(ctx,
		`SELECT `+bucketColumns+` FROM bucketlist_item WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, mapNotFound(err, store.ErrBucketItemNotFound)
	}
	return item, nil
}

// List implements store.BucketlistStore.List
func (s *PostgresBucketlistStore) List(ctx context.Context, userID uuid.UUID) ([]*domain.BucketlistItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+bucketColumns+` FROM bucketlist_item
		WHERE user_id = $1
		ORDER BY order_index ASC, created_at ASC`, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	items := []*domain.BucketlistItem{}
	for rows.Next() {
		item, err := scanBucketItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, MapError(rows.Err())
}

// Update implements store.BucketlistStore.Update
func (s *PostgresBucketlistStore) Update(ctx context.Context, item *domain.BucketlistItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	item.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE bucketlist_item
		SET title = $1, description = $2, image_url = $3, is_completed = $4, completed_at = $5,
			order_index = $6, tag_ids = string_to_array($7, ',')::uuid[], updated_at = $8
		WHERE id = $9 AND user_id = $10
	`, item.Title, item.Description, item.ImageURL, item.IsCompleted, item.CompletedAt,
		item.OrderIndex, joinUUIDs(item.TagIDs), item.UpdatedAt, item.ID, item.UserID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrBucketItemNotFound)
}

// Delete implements store.BucketlistStore.Delete
func (s *PostgresBucketlistStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM bucketlist_item WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrBucketItemNotFound)
}
