package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/platform/logger"
	"github.com/phrazzld/dmo-api/internal/store"
)

// PostgresMaterializationStore implements store.MaterializationStore on
// the dmo_materialized_day table.
type PostgresMaterializationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMaterializationStore creates a new PostgresMaterializationStore.
func NewPostgresMaterializationStore(db store.DBTX, logger *slog.Logger) *PostgresMaterializationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresMaterializationStore{
		db:     db,
		logger: logger.With(slog.String("component", "materialization_store")),
	}
}

var _ store.MaterializationStore = (*PostgresMaterializationStore)(nil)

// MaterializedAt implements store.MaterializationStore.MaterializedAt
func (s *PostgresMaterializationStore) MaterializedAt(
	ctx context.Context,
	userID uuid.UUID,
	date domain.Date,
) (time.Time, bool, error) {
	var at time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT first_materialized_at FROM dmo_materialized_day WHERE user_id = $1 AND date = $2`,
		userID, date).Scan(&at)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to check materialized day",
			slog.String("error", err.Error()),
			slog.String("date", date.String()))
		return time.Time{}, false, MapError(err)
	}
	return at.UTC(), true, nil
}

// MarkMaterialized implements store.MaterializationStore.MarkMaterialized
func (s *PostgresMaterializationStore) MarkMaterialized(
	ctx context.Context,
	userID uuid.UUID,
	date domain.Date,
	at time.Time,
) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dmo_materialized_day (user_id, date, first_materialized_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, date) DO NOTHING
	`, userID, date, at.UTC())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to mark materialized day",
			slog.String("error", err.Error()),
			slog.String("date", date.String()))
		return MapError(err)
	}
	return nil
}
