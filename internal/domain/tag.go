package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TagCategory separates task tags from bucketlist tags.
type TagCategory string

// Tag categories.
const (
	TagCategoryTask       TagCategory = "task"
	TagCategoryBucketlist TagCategory = "bucketlist"
)

// Validation errors for Tag
var (
	ErrTagNameEmpty       = errors.New("tag name cannot be empty")
	ErrInvalidTagCategory = errors.New("invalid tag category")
)

// Tag is a user-defined label with a color and an optional icon.
type Tag struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	Name      string      `json:"name"`
	Color     string      `json:"color"`
	Icon      string      `json:"icon,omitempty"`
	Category  TagCategory `json:"category"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewTag creates a tag. An empty category defaults to task.
func NewTag(userID uuid.UUID, name, color, icon string, category TagCategory) (*Tag, error) {
	if category == "" {
		category = TagCategoryTask
	}
	tag := &Tag{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		Color:     color,
		Icon:      icon,
		Category:  category,
		CreatedAt: time.Now().UTC(),
	}
	if err := tag.Validate(); err != nil {
		return nil, err
	}
	return tag, nil
}

// Validate checks if the Tag has valid data.
func (t *Tag) Validate() error {
	if t.ID == uuid.Nil || t.UserID == uuid.Nil {
		return ErrInvalidID
	}
	if t.Name == "" {
		return ErrTagNameEmpty
	}
	if t.Category != TagCategoryTask && t.Category != TagCategoryBucketlist {
		return ErrInvalidTagCategory
	}
	return nil
}
