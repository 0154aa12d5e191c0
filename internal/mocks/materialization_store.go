package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/store"
)

// MockMaterializationStore is an in-memory store.MaterializationStore.
type MockMaterializationStore struct {
	mu sync.Mutex

	// Days maps a materialized (user, date) to its first mark time.
	Days map[DayKey]time.Time

	MaterializedAtError   error
	MarkMaterializedError error
	MarkCalls             int
}

// DayKey identifies a materialized day.
type DayKey struct {
	UserID uuid.UUID
	Date   domain.Date
}

var _ store.MaterializationStore = (*MockMaterializationStore)(nil)

// NewMockMaterializationStore creates an empty MockMaterializationStore.
func NewMockMaterializationStore() *MockMaterializationStore {
	return &MockMaterializationStore{Days: make(map[DayKey]time.Time)}
}

// MaterializedAt implements store.MaterializationStore.
func (m *MockMaterializationStore) MaterializedAt(ctx context.Context, userID uuid.UUID, date domain.Date) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MaterializedAtError != nil {
		return time.Time{}, false, m.MaterializedAtError
	}
	at, ok := m.Days[DayKey{userID, date}]
	return at, ok, nil
}

// MarkMaterialized implements store.MaterializationStore. The first mark wins.
func (m *MockMaterializationStore) MarkMaterialized(ctx context.Context, userID uuid.UUID, date domain.Date, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MarkCalls++
	if m.MarkMaterializedError != nil {
		return m.MarkMaterializedError
	}
	key := DayKey{userID, date}
	if _, ok := m.Days[key]; !ok {
		m.Days[key] = at.UTC()
	}
	return nil
}
