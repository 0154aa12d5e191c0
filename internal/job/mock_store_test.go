package job

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStore is an in-memory Store for runner tests.
type memStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*Record
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{records: make(map[uuid.UUID]*Record)}
}

func (s *memStore) SaveJob(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	r := rec
	s.records[rec.ID] = &r
	return nil
}

func (s *memStore) UpdateJobStatus(ctx context.Context, id uuid.UUID, status Status, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return sql.ErrNoRows
	}
	r.Status = status
	r.ErrorMessage = errorMsg
	r.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memStore) GetPendingJobs(ctx context.Context) ([]Record, error) {
	return s.byStatus(StatusPending, 0), nil
}

func (s *memStore) GetProcessingJobs(ctx context.Context, olderThan time.Duration) ([]Record, error) {
	return s.byStatus(StatusProcessing, olderThan), nil
}

func (s *memStore) byStatus(status Status, olderThan time.Duration) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().UTC().Add(-olderThan)
	out := []Record{}
	for _, r := range s.records {
		if r.Status == status && (olderThan == 0 || r.UpdatedAt.Before(cutoff)) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *memStore) WithTx(tx *sql.Tx) Store { return s }

func (s *memStore) get(id uuid.UUID) Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.records[id]; ok {
		return *r
	}
	return Record{}
}

// funcJob runs fn when executed.
type funcJob struct {
	baseJob
	fn func(ctx context.Context) error
}

func (j *funcJob) Execute(ctx context.Context) error { return j.fn(ctx) }

func newFuncJob(fn func(ctx context.Context) error) *funcJob {
	base, _ := newBase("func", map[string]string{})
	return &funcJob{baseJob: base, fn: fn}
}
