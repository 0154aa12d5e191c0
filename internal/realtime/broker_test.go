package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBroker(t *testing.T) (*Broker, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client, err := NewClient(context.Background(), "redis://"+s.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewBroker(client, "", nil), s
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(context.Background(), "not a url")
	assert.Error(t, err)

	s := miniredis.RunT(t)
	addr := s.Addr()
	s.Close()
	_, err = NewClient(context.Background(), "redis://"+addr)
	assert.Error(t, err, "server is gone")
}

func TestBrokerPublishSubscribe(t *testing.T) {
	broker, _ := setupBroker(t)
	ctx := context.Background()

	sub, err := broker.Subscribe(ctx)
	require.NoError(t, err)
	defer sub.Close()

	item := domain.ActivityItem{
		Completion: domain.Completion{
			ID:          uuid.New(),
			UserID:      uuid.New(),
			TaskID:      uuid.New(),
			TaskTitle:   "Morning run",
			Quadrant:    domain.QuadrantSchedule,
			CompletedAt: time.Date(2025, 3, 10, 6, 30, 0, 0, time.UTC),
		},
		UserName: "lan",
	}
	require.NoError(t, broker.Publish(ctx, item))

	select {
	case got := <-sub.Items():
		assert.Equal(t, item.ID, got.ID)
		assert.Equal(t, "Morning run", got.TaskTitle)
		assert.Equal(t, "lan", got.UserName)
		assert.True(t, item.CompletedAt.Equal(got.CompletedAt))
	case <-time.After(2 * time.Second):
		t.Fatal("no item received")
	}
}

func TestBrokerSkipsMalformedMessages(t *testing.T) {
	broker, s := setupBroker(t)
	ctx := context.Background()

	sub, err := broker.Subscribe(ctx)
	require.NoError(t, err)
	defer sub.Close()

	s.Publish(DefaultChannel, "{not json")
	item := domain.ActivityItem{Completion: domain.Completion{ID: uuid.New()}}
	require.NoError(t, broker.Publish(ctx, item))

	select {
	case got := <-sub.Items():
		assert.Equal(t, item.ID, got.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no item received")
	}
}

func TestSubscriptionEndsWithContext(t *testing.T) {
	broker, _ := setupBroker(t)
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := broker.Subscribe(ctx)
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-sub.Items():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not end")
	}
}

func TestSubscriptionClose(t *testing.T) {
	broker, _ := setupBroker(t)

	sub, err := broker.Subscribe(context.Background())
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	_, ok := <-sub.Items()
	assert.False(t, ok)
	assert.NotPanics(t, func() { _ = sub.Close() })
}

func TestNewBrokerPanicsOnNilClient(t *testing.T) {
	assert.Panics(t, func() { NewBroker(nil, "", nil) })
}
