package job

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a persisted job.
type Status string

const (
	// StatusPending means the job is queued but not yet picked up.
	StatusPending Status = "pending"

	// StatusProcessing means a worker is executing the job.
	StatusProcessing Status = "processing"

	// StatusCompleted means the job finished successfully.
	StatusCompleted Status = "completed"

	// StatusFailed means the job returned an error.
	StatusFailed Status = "failed"
)

// Job types.
const (
	TypeFeedPublish = "feed_publish"
	TypeSearchIndex = "search_index"
)

// ErrUnknownType is returned when a persisted record has no registered factory.
var ErrUnknownType = errors.New("unknown job type")

// Job is a unit of background work.
type Job interface {
	ID() uuid.UUID
	Type() string
	// Payload is the JSON stored alongside the job and handed back to the
	// type's Factory on recovery.
	Payload() []byte
	Status() Status
	Execute(ctx context.Context) error
}

// Record is a job as persisted in the store.
type Record struct {
	ID           uuid.UUID
	Type         string
	Payload      []byte
	Status       Status
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RecordOf snapshots j for persistence.
func RecordOf(j Job) Record {
	now := time.Now().UTC()
	return Record{
		ID:        j.ID(),
		Type:      j.Type(),
		Payload:   j.Payload(),
		Status:    j.Status(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Store persists jobs so they survive restarts.
type Store interface {
	// SaveJob inserts a new job record.
	SaveJob(ctx context.Context, rec Record) error

	// UpdateJobStatus sets status and error message of one job.
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status Status, errorMsg string) error

	// GetPendingJobs returns every pending job, oldest first.
	GetPendingJobs(ctx context.Context) ([]Record, error)

	// GetProcessingJobs returns processing jobs not updated within
	// olderThan. Zero returns all of them.
	GetProcessingJobs(ctx context.Context, olderThan time.Duration) ([]Record, error)

	// WithTx returns a Store bound to tx.
	WithTx(tx *sql.Tx) Store
}
