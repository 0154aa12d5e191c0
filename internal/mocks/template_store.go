package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/store"
)

// MockTemplateStore is an in-memory store.TemplateStore.
type MockTemplateStore struct {
	mu sync.Mutex

	ListActiveFn func(ctx context.Context, userID uuid.UUID) ([]*domain.TaskTemplate, error)

	Templates       map[uuid.UUID]*domain.TaskTemplate
	ListActiveError error
	CreateError     error
}

var _ store.TemplateStore = (*MockTemplateStore)(nil)

// NewMockTemplateStore creates an empty MockTemplateStore.
func NewMockTemplateStore() *MockTemplateStore {
	return &MockTemplateStore{Templates: make(map[uuid.UUID]*domain.TaskTemplate)}
}

// Create implements store.TemplateStore.
func (m *MockTemplateStore) Create(ctx context.Context, tpl *domain.TaskTemplate) error {
	return m.CreateMany(ctx, []*domain.TaskTemplate{tpl})
}

// CreateMany implements store.TemplateStore.
func (m *MockTemplateStore) CreateMany(ctx context.Context, tpls []*domain.TaskTemplate) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	for _, tpl := range tpls {
		if err := tpl.Validate(); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tpl := range tpls {
		c := *tpl
		m.Templates[tpl.ID] = &c
	}
	return nil
}

// GetByID implements store.TemplateStore.
func (m *MockTemplateStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.TaskTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tpl, ok := m.Templates[id]
	if !ok || tpl.UserID != userID {
		return nil, store.ErrTemplateNotFound
	}
	c := *tpl
	return &c, nil
}

// List implements store.TemplateStore.
func (m *MockTemplateStore) List(ctx context.Context, userID uuid.UUID) ([]*domain.TaskTemplate, error) {
	return m.list(userID, false), nil
}

// ListActive implements store.TemplateStore.
func (m *MockTemplateStore) ListActive(ctx context.Context, userID uuid.UUID) ([]*domain.TaskTemplate, error) {
	if m.ListActiveFn != nil {
		return m.ListActiveFn(ctx, userID)
	}
	if m.ListActiveError != nil {
		return nil, m.ListActiveError
	}
	return m.list(userID, true), nil
}

func (m *MockTemplateStore) list(userID uuid.UUID, activeOnly bool) []*domain.TaskTemplate {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.TaskTemplate{}
	for _, tpl := range m.Templates {
		if tpl.UserID == userID && (!activeOnly || tpl.IsActive) {
			c := *tpl
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Update implements store.TemplateStore.
func (m *MockTemplateStore) Update(ctx context.Context, tpl *domain.TaskTemplate) error {
	if err := tpl.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Templates[tpl.ID]
	if !ok || existing.UserID != tpl.UserID {
		return store.ErrTemplateNotFound
	}
	c := *tpl
	m.Templates[tpl.ID] = &c
	return nil
}

// Delete implements store.TemplateStore.
func (m *MockTemplateStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tpl, ok := m.Templates[id]
	if !ok || tpl.UserID != userID {
		return store.ErrTemplateNotFound
	}
	delete(m.Templates, id)
	return nil
}

// WithTx implements store.TemplateStore.
func (m *MockTemplateStore) WithTx(tx *sql.Tx) store.TemplateStore {
	return m
}
