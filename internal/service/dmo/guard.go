package dmo

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
)

// Key identifies one materialization: a user's board on one date.
type Key struct {
	UserID uuid.UUID
	Date   domain.Date
}

// InProgressGuard is a concurrency-safe set of keys currently being
// materialized. It suppresses overlapping calls for the same key within one
// process; it is not a distributed lock.
type InProgressGuard struct {
	mu   sync.Mutex
	keys map[Key]struct{}
	hold time.Duration
}

// NewInProgressGuard creates a guard. A positive hold keeps a key marked for
// that long after Release, absorbing bursts of repeated loads.
func NewInProgressGuard(hold time.Duration) *InProgressGuard {
	if hold < 0 {
		hold = 0
	}
	return &InProgressGuard{keys: make(map[Key]struct{}), hold: hold}
}

// TryAcquire marks key as in progress. It returns false when the key is
// already held.
func (g *InProgressGuard) TryAcquire(key Key) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, held := g.keys[key]; held {
		return false
	}
	g.keys[key] = struct{}{}
	return true
}

// Release unmarks key, immediately or after the configured hold.
func (g *InProgressGuard) Release(key Key) {
	if g.hold > 0 {
		time.AfterFunc(g.hold, func() { g.remove(key) })
		return
	}
	g.remove(key)
}

// Held reports whether key is currently marked.
func (g *InProgressGuard) Held(key Key) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, held := g.keys[key]
	return held
}

func (g *InProgressGuard) remove(key Key) {
	g.mu.Lock()
	delete(g.keys, key)
	g.mu.Unlock()
}
