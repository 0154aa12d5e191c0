package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the services.
const (
	TypeTaskCompleted      = "task.completed"
	TypeTaskReopened       = "task.reopened"
	TypeJournalPostSaved   = "journal.post_saved"
	TypeJournalPostDeleted = "journal.post_deleted"
)

// Event is something that happened to one user's data.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// UserID owns the affected records
	UserID uuid.UUID `json:"user_id"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// CompletionPayload accompanies task.completed and task.reopened.
type CompletionPayload struct {
	TaskID       uuid.UUID  `json:"task_id"`
	CompletionID *uuid.UUID `json:"completion_id,omitempty"`
}

// PostPayload accompanies journal post events.
type PostPayload struct {
	PostID uuid.UUID `json:"post_id"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an Event with the specified type and payload.
func NewEvent(eventType string, userID uuid.UUID, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		UserID:    userID,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}

// Emit builds an event and hands it to emitter. A nil emitter is a no-op.
func Emit(ctx context.Context, emitter EventEmitter, eventType string, userID uuid.UUID, payload interface{}) error {
	if emitter == nil {
		return nil
	}
	event, err := NewEvent(eventType, userID, payload)
	if err != nil {
		return err
	}
	return emitter.EmitEvent(ctx, event)
}
