package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	userID := uuid.New()
	payload := PostPayload{PostID: uuid.New()}

	event, err := NewEvent(TypeJournalPostSaved, userID, payload)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeJournalPostSaved, event.Type)
	assert.Equal(t, userID, event.UserID)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	var decoded PostPayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload.PostID, decoded.PostID)
}

func TestNewEventRejectsUnencodablePayload(t *testing.T) {
	_, err := NewEvent(TypeTaskCompleted, uuid.New(), make(chan int))
	assert.Error(t, err)
}

func TestEmit(t *testing.T) {
	t.Run("nil emitter", func(t *testing.T) {
		assert.NoError(t, Emit(context.Background(), nil, TypeTaskCompleted, uuid.New(), nil))
	})

	t.Run("builds and emits", func(t *testing.T) {
		handler := &MockEventHandler{}
		emitter := NewInMemoryEventEmitter(testLogger())
		emitter.RegisterHandler(handler)

		completionID := uuid.New()
		err := Emit(context.Background(), emitter, TypeTaskCompleted, uuid.New(),
			CompletionPayload{TaskID: uuid.New(), CompletionID: &completionID})
		require.NoError(t, err)

		require.NotNil(t, handler.LastEvent)
		var decoded CompletionPayload
		require.NoError(t, handler.LastEvent.UnmarshalPayload(&decoded))
		require.NotNil(t, decoded.CompletionID)
		assert.Equal(t, completionID, *decoded.CompletionID)
	})
}

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	mu sync.Mutex
	// The last event received by this handler
	LastEvent *Event
	// Error to return from HandleEvent
	HandlerError error
	// Count of events handled
	HandledCount int
}

// HandleEvent implements the EventHandler interface
func (h *MockEventHandler) HandleEvent(ctx context.Context, event *Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestEventHandler(t *testing.T) {
	handler := &MockEventHandler{}

	event, err := NewEvent(TypeTaskReopened, uuid.New(), CompletionPayload{TaskID: uuid.New()})
	require.NoError(t, err)

	err = handler.HandleEvent(context.Background(), event)
	assert.NoError(t, err)
	assert.Equal(t, 1, handler.HandledCount)
	assert.Equal(t, event, handler.LastEvent)

	expectedErr := errors.New("handler error")
	handler.HandlerError = expectedErr
	err = handler.HandleEvent(context.Background(), event)
	assert.Equal(t, expectedErr, err)
	assert.Equal(t, 2, handler.HandledCount)
}
