package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/store"
)

// MockVisionStore is an in-memory store.VisionStore.
type MockVisionStore struct {
	mu sync.Mutex

	Goals     map[uuid.UUID]*domain.VisionGoal
	ListError error
}

var _ store.VisionStore = (*MockVisionStore)(nil)

// NewMockVisionStore creates an empty MockVisionStore.
func NewMockVisionStore() *MockVisionStore {
	return &MockVisionStore{Goals: make(map[uuid.UUID]*domain.VisionGoal)}
}

// Create implements store.VisionStore.
func (m *MockVisionStore) Create(ctx context.Context, goal *domain.VisionGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *goal
	m.Goals[goal.ID] = &c
	return nil
}

// GetByID implements store.VisionStore.
func (m *MockVisionStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.VisionGoal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	goal, ok := m.Goals[id]
	if !ok || goal.UserID != userID {
		return nil, store.ErrGoalNotFound
	}
	c := *goal
	return &c, nil
}

// List implements store.VisionStore.
func (m *MockVisionStore) List(ctx context.Context, userID uuid.UUID) ([]*domain.VisionGoal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	out := []*domain.VisionGoal{}
	for _, g := range m.Goals {
		if g.UserID == userID {
			c := *g
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Update implements store.VisionStore.
func (m *MockVisionStore) Update(ctx context.Context, goal *domain.VisionGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Goals[goal.ID]
	if !ok || existing.UserID != goal.UserID {
		return store.ErrGoalNotFound
	}
	c := *goal
	m.Goals[goal.ID] = &c
	return nil
}

// Delete implements store.VisionStore.
func (m *MockVisionStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	goal, ok := m.Goals[id]
	if !ok || goal.UserID != userID {
		return store.ErrGoalNotFound
	}
	delete(m.Goals, id)
	return nil
}
