package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validation errors for journal records
var (
	ErrTopicNameEmpty = errors.New("topic name cannot be empty")
	ErrPostTitleEmpty = errors.New("post title cannot be empty")
	ErrPostTopicEmpty = errors.New("post topic cannot be empty")
	ErrInvalidMood    = errors.New("mood must be between 1 and 5")
)

// JournalTopic groups journal posts. A public topic can be read by anyone
// holding its share token.
type JournalTopic struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Name       string    `json:"name"`
	IsPublic   bool      `json:"is_public"`
	ShareToken *string   `json:"share_token,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewJournalTopic creates a private topic.
func NewJournalTopic(userID uuid.UUID, name string) (*JournalTopic, error) {
	now := time.Now().UTC()
	topic := &JournalTopic{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := topic.Validate(); err != nil {
		return nil, err
	}
	return topic, nil
}

// Validate checks if the JournalTopic has valid data.
func (t *JournalTopic) Validate() error {
	if t.ID == uuid.Nil || t.UserID == uuid.Nil {
		return ErrInvalidID
	}
	if t.Name == "" {
		return ErrTopicNameEmpty
	}
	return nil
}

// JournalPost is one entry. Content is sanitized HTML.
type JournalPost struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	TopicID   uuid.UUID `json:"topic_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Mood      *int      `json:"mood,omitempty"`
	EntryDate Date      `json:"entry_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks if the JournalPost has valid data.
func (p *JournalPost) Validate() error {
	if p.ID == uuid.Nil || p.UserID == uuid.Nil {
		return ErrInvalidID
	}
	if p.TopicID == uuid.Nil {
		return ErrPostTopicEmpty
	}
	if strings.TrimSpace(p.Title) == "" {
		return ErrPostTitleEmpty
	}
	if p.Mood != nil && (*p.Mood < 1 || *p.Mood > 5) {
		return ErrInvalidMood
	}
	if p.EntryDate.IsZero() {
		return NewValidationError("entry_date", "is required", ErrValidation)
	}
	return nil
}
