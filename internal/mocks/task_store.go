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

// MockTaskStore is an in-memory store.TaskStore. CreateMany enforces the
// one-instance-per-template-per-date rule the database index provides.
type MockTaskStore struct {
	mu sync.Mutex

	// Function fields for customizable behavior
	CreateManyFn              func(ctx context.Context, tasks []*domain.Task) (int, error)
	MaterializedTemplateIDsFn func(ctx context.Context, userID uuid.UUID, date domain.Date) ([]uuid.UUID, error)

	// Data for default implementation
	Tasks map[uuid.UUID]*domain.Task

	// Errors returned by the default implementation when set
	CreateError                  error
	CreateManyError              error
	MaterializedTemplateIDsError error
	ListError                    error

	// Call counters for verification
	CreateManyCalls int
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates an empty MockTaskStore.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{Tasks: make(map[uuid.UUID]*domain.Task)}
}

// Put stores copies of tasks directly, bypassing validation and counters.
func (m *MockTaskStore) Put(tasks ...*domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range tasks {
		c := *t
		m.Tasks[t.ID] = &c
	}
}

// All returns copies of every stored task ordered by creation.
func (m *MockTaskStore) All() []domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Task, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		out = append(out, *t)
	}
	sortTasks(out)
	return out
}

// Create implements store.TaskStore.
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	if _, exists := m.Tasks[task.ID]; exists {
		return store.ErrDuplicate
	}
	c := *task
	m.Tasks[task.ID] = &c
	return nil
}

// CreateMany implements store.TaskStore, silently skipping template
// instances that already exist.
func (m *MockTaskStore) CreateMany(ctx context.Context, tasks []*domain.Task) (int, error) {
	m.mu.Lock()
	m.CreateManyCalls++
	m.mu.Unlock()

	if m.CreateManyFn != nil {
		return m.CreateManyFn(ctx, tasks)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateManyError != nil {
		return 0, m.CreateManyError
	}

	inserted := 0
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return inserted, err
		}
		if t.SourceTemplateID != nil && m.hasInstance(t.UserID, t.Date, *t.SourceTemplateID) {
			continue
		}
		c := *t
		m.Tasks[t.ID] = &c
		inserted++
	}
	return inserted, nil
}

func (m *MockTaskStore) hasInstance(userID uuid.UUID, date domain.Date, templateID uuid.UUID) bool {
	for _, t := range m.Tasks {
		if t.UserID == userID && t.Date == date &&
			t.SourceTemplateID != nil && *t.SourceTemplateID == templateID {
			return true
		}
	}
	return false
}

// GetByID implements store.TaskStore.
func (m *MockTaskStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.Tasks[id]
	if !ok || t.UserID != userID {
		return nil, store.ErrTaskNotFound
	}
	c := *t
	return &c, nil
}

// Update implements store.TaskStore.
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.Tasks[task.ID]
	if !ok || t.UserID != task.UserID {
		return store.ErrTaskNotFound
	}
	c := *task
	c.UpdatedAt = time.Now().UTC()
	m.Tasks[task.ID] = &c
	return nil
}

// UpdateStatus implements store.TaskStore.
func (m *MockTaskStore) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status domain.TaskStatus) error {
	if !status.Valid() {
		return domain.ErrInvalidTaskStatus
	}
	return m.mutate(userID, id, func(t *domain.Task) { t.Status = status })
}

// UpdateQuadrant implements store.TaskStore.
func (m *MockTaskStore) UpdateQuadrant(ctx context.Context, userID, id uuid.UUID, quadrant domain.Quadrant) error {
	if !quadrant.Valid() {
		return domain.ErrInvalidQuadrant
	}
	return m.mutate(userID, id, func(t *domain.Task) { t.Quadrant = quadrant })
}

func (m *MockTaskStore) mutate(userID, id uuid.UUID, fn func(*domain.Task)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.Tasks[id]
	if !ok || t.UserID != userID {
		return store.ErrTaskNotFound
	}
	fn(t)
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// Delete implements store.TaskStore.
func (m *MockTaskStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.Tasks[id]
	if !ok || t.UserID != userID {
		return store.ErrTaskNotFound
	}
	delete(m.Tasks, id)
	return nil
}

// MaterializedTemplateIDs implements store.TaskStore.
func (m *MockTaskStore) MaterializedTemplateIDs(ctx context.Context, userID uuid.UUID, date domain.Date) ([]uuid.UUID, error) {
	if m.MaterializedTemplateIDsFn != nil {
		return m.MaterializedTemplateIDsFn(ctx, userID, date)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MaterializedTemplateIDsError != nil {
		return nil, m.MaterializedTemplateIDsError
	}
	ids := []uuid.UUID{}
	for _, t := range m.Tasks {
		if t.UserID == userID && t.Date == date && t.SourceTemplateID != nil {
			ids = append(ids, *t.SourceTemplateID)
		}
	}
	return ids, nil
}

// ListPendingOrOnDate implements store.TaskStore.
func (m *MockTaskStore) ListPendingOrOnDate(ctx context.Context, userID uuid.UUID, date domain.Date) ([]domain.Task, error) {
	return m.list(userID, func(t *domain.Task) bool {
		return t.Status == domain.TaskStatusPending || t.Date == date
	})
}

// ListOnDate implements store.TaskStore.
func (m *MockTaskStore) ListOnDate(ctx context.Context, userID uuid.UUID, date domain.Date) ([]domain.Task, error) {
	return m.list(userID, func(t *domain.Task) bool { return t.Date == date })
}

// CountOnDate implements store.TaskStore.
func (m *MockTaskStore) CountOnDate(ctx context.Context, userID uuid.UUID, date domain.Date) (int, error) {
	tasks, err := m.ListOnDate(ctx, userID, date)
	return len(tasks), err
}

// ListForReport implements store.TaskStore.
func (m *MockTaskStore) ListForReport(
	ctx context.Context,
	userID uuid.UUID,
	from, to domain.Date,
	tz string,
) ([]domain.Task, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, err
	}
	return m.list(userID, func(t *domain.Task) bool {
		d := t.ReportDate(loc)
		return !d.Before(from) && !d.After(to)
	})
}

func (m *MockTaskStore) list(userID uuid.UUID, keep func(*domain.Task) bool) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	out := []domain.Task{}
	for _, t := range m.Tasks {
		if t.UserID == userID && keep(t) {
			out = append(out, *t)
		}
	}
	sortTasks(out)
	return out, nil
}

// WithTx implements store.TaskStore.
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}

func sortTasks(tasks []domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID.String() < tasks[j].ID.String()
	})
}
