package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrBucketItemTitleEmpty is returned for an item without a title.
var ErrBucketItemTitleEmpty = errors.New("bucketlist item title cannot be empty")

// BucketlistItem is a life experience the user wants to have.
type BucketlistItem struct {
	ID          uuid.UUID   `json:"id"`
	UserID      uuid.UUID   `json:"user_id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	ImageURL    string      `json:"image_url,omitempty"`
	IsCompleted bool        `json:"is_completed"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	OrderIndex  int         `json:"order_index"`
	TagIDs      []uuid.UUID `json:"tag_ids"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Validate checks if the BucketlistItem has valid data.
func (b *BucketlistItem) Validate() error {
	if b.ID == uuid.Nil || b.UserID == uuid.Nil {
		return ErrInvalidID
	}
	if strings.TrimSpace(b.Title) == "" {
		return ErrBucketItemTitleEmpty
	}
	return nil
}

// SetCompleted flips the completion flag and stamps or clears CompletedAt.
func (b *BucketlistItem) SetCompleted(done bool, now time.Time) {
	b.IsCompleted = done
	if done {
		t := now.UTC()
		b.CompletedAt = &t
	} else {
		b.CompletedAt = nil
	}
	b.UpdatedAt = now.UTC()
}
