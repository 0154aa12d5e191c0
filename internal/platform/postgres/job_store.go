package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/job"
	"github.com/phrazzld/dmo-api/internal/platform/logger"
	"github.com/phrazzld/dmo-api/internal/store"
)

// PostgresJobStore implements the job.Store interface using PostgreSQL.
type PostgresJobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresJobStore creates a new PostgresJobStore.
func NewPostgresJobStore(db store.DBTX, logger *slog.Logger) *PostgresJobStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresJobStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_store")),
	}
}

var _ job.Store = (*PostgresJobStore)(nil)

// WithTx implements job.Store.WithTx
func (s *PostgresJobStore) WithTx(tx *sql.Tx) job.Store {
	return &PostgresJobStore{db: tx, logger: s.logger}
}

// SaveJob implements job.Store.SaveJob
func (s *PostgresJobStore) SaveJob(ctx context.Context, rec job.Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.ID, rec.Type, rec.Payload, rec.Status, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to save job",
			"job_id", rec.ID,
			"job_type", rec.Type,
			"error", err)
		return fmt.Errorf("failed to save job to database: %w", MapError(err))
	}
	return nil
}

// UpdateJobStatus implements job.Store.UpdateJobStatus
func (s *PostgresJobStore) UpdateJobStatus(ctx context.Context, id uuid.UUID, status job.Status, errorMsg string) error {
	var msg sql.NullString
	if errorMsg != "" {
		msg = sql.NullString{String: errorMsg, Valid: true}
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`, status, msg, time.Now().UTC(), id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update job status",
			"job_id", id,
			"status", status,
			"error", err)
		return fmt.Errorf("failed to update job status: %w", err)
	}
	return CheckRowsAffected(result, store.ErrJobNotFound)
}

// GetPendingJobs implements job.Store.GetPendingJobs
func (s *PostgresJobStore) GetPendingJobs(ctx context.Context) ([]job.Record, error) {
	return s.byStatus(ctx, job.StatusPending, 0)
}

// GetProcessingJobs implements job.Store.GetProcessingJobs
func (s *PostgresJobStore) GetProcessingJobs(ctx context.Context, olderThan time.Duration) ([]job.Record, error) {
	return s.byStatus(ctx, job.StatusProcessing, olderThan)
}

func (s *PostgresJobStore) byStatus(ctx context.Context, status job.Status, olderThan time.Duration) ([]job.Record, error) {
	query := `
		SELECT id, type, payload, status, error_message, created_at, updated_at
		FROM jobs
		WHERE status = $1`
	args := []any{status}
	if olderThan > 0 {
		query += ` AND updated_at < $2`
		args = append(args, time.Now().UTC().Add(-olderThan))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query jobs by status",
			"status", status,
			"error", err)
		return nil, fmt.Errorf("failed to query jobs by status: %w", err)
	}
	defer func() { _ = rows.Close() }()

	recs := []job.Record{}
	for rows.Next() {
		var rec job.Record
		var st string
		var errMsg sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Type, &rec.Payload, &st, &errMsg, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		rec.Status = job.Status(st)
		rec.ErrorMessage = errMsg.String
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job rows: %w", err)
	}
	return recs, nil
}
