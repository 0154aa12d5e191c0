package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/store"
)

// MockTagStore is an in-memory store.TagStore.
type MockTagStore struct {
	mu sync.Mutex

	Tags     map[uuid.UUID]*domain.Tag
	GetError error
}

var _ store.TagStore = (*MockTagStore)(nil)

// NewMockTagStore creates an empty MockTagStore.
func NewMockTagStore() *MockTagStore {
	return &MockTagStore{Tags: make(map[uuid.UUID]*domain.Tag)}
}

// Create implements store.TagStore.
func (m *MockTagStore) Create(ctx context.Context, tag *domain.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *tag
	m.Tags[tag.ID] = &c
	return nil
}

// GetByID implements store.TagStore.
func (m *MockTagStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	tag, ok := m.Tags[id]
	if !ok || tag.UserID != userID {
		return nil, store.ErrTagNotFound
	}
	c := *tag
	return &c, nil
}

// List implements store.TagStore.
func (m *MockTagStore) List(ctx context.Context, userID uuid.UUID, category *domain.TagCategory) ([]*domain.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Tag{}
	for _, tag := range m.Tags {
		if tag.UserID != userID || (category != nil && tag.Category != *category) {
			continue
		}
		c := *tag
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Update implements store.TagStore.
func (m *MockTagStore) Update(ctx context.Context, tag *domain.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Tags[tag.ID]
	if !ok || existing.UserID != tag.UserID {
		return store.ErrTagNotFound
	}
	c := *tag
	m.Tags[tag.ID] = &c
	return nil
}

// Delete implements store.TagStore.
func (m *MockTagStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tag, ok := m.Tags[id]
	if !ok || tag.UserID != userID {
		return store.ErrTagNotFound
	}
	delete(m.Tags, id)
	return nil
}
