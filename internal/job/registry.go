package job

import (
	"fmt"
	"sync"
)

// Factory rebuilds an executable job from its persisted record.
type Factory func(rec Record) (Job, error)

// Registry maps job types to factories. Runner uses it to rehydrate jobs
// recovered from the store after a restart.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds jobType to f, replacing any previous factory.
func (r *Registry) Register(jobType string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[jobType] = f
}

// Build rehydrates rec. Returns ErrUnknownType when no factory is bound.
func (r *Registry) Build(rec Record) (Job, error) {
	r.mu.RLock()
	f, ok := r.factories[rec.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, rec.Type)
	}
	return f(rec)
}
