package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/store"
)

// MockBucketlistStore is an in-memory store.BucketlistStore.
type MockBucketlistStore struct {
	mu sync.Mutex

	Items map[uuid.UUID]*domain.BucketlistItem
}

var _ store.BucketlistStore = (*MockBucketlistStore)(nil)

// NewMockBucketlistStore creates an empty MockBucketlistStore.
func NewMockBucketlistStore() *MockBucketlistStore {
	return &MockBucketlistStore{Items: make(map[uuid.UUID]*domain.BucketlistItem)}
}

// Create implements store.BucketlistStore.
func (m *MockBucketlistStore) Create(ctx context.Context, item *domain.BucketlistItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *item
	m.Items[item.ID] = &c
	return nil
}

// GetByID implements store.BucketlistStore.
func (m *MockBucketlistStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.BucketlistItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.Items[id]
	if !ok || item.UserID != userID {
		return nil, store.ErrBucketItemNotFound
	}
	c := *item
	return &c, nil
}

// List implements store.BucketlistStore.
func (m *MockBucketlistStore) List(ctx context.Context, userID uuid.UUID) ([]*domain.BucketlistItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.BucketlistItem{}
	for _, it := range m.Items {
		if it.UserID == userID {
			c := *it
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

// Update implements store.BucketlistStore.
func (m *MockBucketlistStore) Update(ctx context.Context, item *domain.BucketlistItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Items[item.ID]
	if !ok || existing.UserID != item.UserID {
		return store.ErrBucketItemNotFound
	}
	c := *item
	m.Items[item.ID] = &c
	return nil
}

// Delete implements store.BucketlistStore.
func (m *MockBucketlistStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.Items[id]
	if !ok || item.UserID != userID {
		return store.ErrBucketItemNotFound
	}
	delete(m.Items, id)
	return nil
}
