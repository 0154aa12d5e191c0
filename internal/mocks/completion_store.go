package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/store"
)

// MockCompletionStore is an in-memory store.CompletionStore.
type MockCompletionStore struct {
	mu sync.Mutex

	Completions []*domain.Completion
	// Names resolves user display names for activity items.
	Names map[uuid.UUID]string

	CreateError error
}

var _ store.CompletionStore = (*MockCompletionStore)(nil)

// NewMockCompletionStore creates an empty MockCompletionStore.
func NewMockCompletionStore() *MockCompletionStore {
	return &MockCompletionStore{Names: make(map[uuid.UUID]string)}
}

// Create implements store.CompletionStore.
func (m *MockCompletionStore) Create(ctx context.Context, c *domain.Completion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	cp := *c
	m.Completions = append(m.Completions, &cp)
	return nil
}

// DeleteLatestForTask implements store.CompletionStore.
func (m *MockCompletionStore) DeleteLatestForTask(ctx context.Context, userID, taskID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	latest := -1
	for i, c := range m.Completions {
		if c.UserID != userID || c.TaskID != taskID {
			continue
		}
		if latest < 0 || c.CompletedAt.After(m.Completions[latest].CompletedAt) {
			latest = i
		}
	}
	if latest < 0 {
		return store.ErrCompletionNotFound
	}
	m.Completions = append(m.Completions[:latest], m.Completions[latest+1:]...)
	return nil
}

// CountBetween implements store.CompletionStore.
func (m *MockCompletionStore) CountBetween(ctx context.Context, from, to time.Time) (int, error) {
	return m.count(func(c *domain.Completion) bool { return inRange(c.CompletedAt, from, to) }), nil
}

// CountForUserBetween implements store.CompletionStore.
func (m *MockCompletionStore) CountForUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error) {
	return m.count(func(c *domain.Completion) bool {
		return c.UserID == userID && inRange(c.CompletedAt, from, to)
	}), nil
}

func (m *MockCompletionStore) count(keep func(*domain.Completion) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Completions {
		if keep(c) {
			n++
		}
	}
	return n
}

// CountsByUserSince implements store.CompletionStore.
func (m *MockCompletionStore) CountsByUserSince(ctx context.Context, since time.Time) ([]store.UserCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[uuid.UUID]int{}
	for _, c := range m.Completions {
		if !c.CompletedAt.Before(since) {
			counts[c.UserID]++
		}
	}
	out := make([]store.UserCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, store.UserCount{UserID: id, Name: m.Names[id], Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Recent implements store.CompletionStore.
func (m *MockCompletionStore) Recent(ctx context.Context, limit int) ([]domain.ActivityItem, error) {
	if limit <= 0 {
		limit = 20
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]domain.ActivityItem, 0, len(m.Completions))
	for _, c := range m.Completions {
		items = append(items, domain.ActivityItem{Completion: *c, UserName: m.Names[c.UserID]})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CompletedAt.After(items[j].CompletedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// GetActivity implements store.CompletionStore.
func (m *MockCompletionStore) GetActivity(ctx context.Context, id uuid.UUID) (*domain.ActivityItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Completions {
		if c.ID == id {
			return &domain.ActivityItem{Completion: *c, UserName: m.Names[c.UserID]}, nil
		}
	}
	return nil, store.ErrCompletionNotFound
}

// WithTx implements store.CompletionStore.
func (m *MockCompletionStore) WithTx(tx *sql.Tx) store.CompletionStore {
	return m
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}
