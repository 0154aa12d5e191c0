package job

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// baseJob carries the persisted identity shared by every job type.
type baseJob struct {
	id      uuid.UUID
	typ     string
	payload []byte
	status  Status
}

func (b *baseJob) ID() uuid.UUID   { return b.id }
func (b *baseJob) Type() string    { return b.typ }
func (b *baseJob) Payload() []byte { return b.payload }
func (b *baseJob) Status() Status  { return b.status }

// newBase builds a fresh pending job with payload encoded as JSON.
func newBase(jobType string, payload any) (baseJob, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return baseJob{}, fmt.Errorf("failed to encode %s payload: %w", jobType, err)
	}
	return baseJob{id: uuid.New(), typ: jobType, payload: data, status: StatusPending}, nil
}

// baseFromRecord decodes rec's payload into v.
func baseFromRecord(rec Record, v any) (baseJob, error) {
	if err := json.Unmarshal(rec.Payload, v); err != nil {
		return baseJob{}, fmt.Errorf("failed to decode %s payload: %w", rec.Type, err)
	}
	status := rec.Status
	if status == "" {
		status = StatusPending
	}
	return baseJob{id: rec.ID, typ: rec.Type, payload: rec.Payload, status: status}, nil
}
