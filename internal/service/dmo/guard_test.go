package dmo

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestInProgressGuard(t *testing.T) {
	t.Parallel()

	g := NewInProgressGuard(0)
	a := Key{UserID: uuid.New(), Date: domain.NewDate(2025, time.March, 10)}
	b := Key{UserID: a.UserID, Date: a.Date.AddDays(1)}

	assert.True(t, g.TryAcquire(a))
	assert.False(t, g.TryAcquire(a), "second acquire of a held key")
	assert.True(t, g.TryAcquire(b), "keys are independent per date")

	g.Release(a)
	assert.False(t, g.Held(a))
	assert.True(t, g.TryAcquire(a))
}

func TestInProgressGuardSingleWinner(t *testing.T) {
	t.Parallel()

	g := NewInProgressGuard(0)
	key := Key{UserID: uuid.New(), Date: domain.NewDate(2025, time.March, 10)}

	var wins int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if g.TryAcquire(key) {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins)
}

func TestInProgressGuardHold(t *testing.T) {
	t.Parallel()

	g := NewInProgressGuard(50 * time.Millisecond)
	key := Key{UserID: uuid.New(), Date: domain.NewDate(2025, time.March, 10)}

	assert.True(t, g.TryAcquire(key))
	g.Release(key)
	assert.True(t, g.Held(key), "key stays held during the hold window")
	assert.Eventually(t, func() bool { return !g.Held(key) }, time.Second, 5*time.Millisecond)
}
