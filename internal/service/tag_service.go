package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/store"
)

// TagInput carries the editable fields of a tag.
type TagInput struct {
	Name     string
	Color    string
	Icon     string
	Category domain.TagCategory
}

// TagService manages task and bucketlist tags.
type TagService struct {
	tags   store.TagStore
	logger *slog.Logger
}

// NewTagService creates a TagService.
func NewTagService(tags store.TagStore, logger *slog.Logger) *TagService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TagService{tags: tags, logger: logger.With("component", "tag_service")}
}

// List returns the user's tags, optionally of one category.
func (s *TagService) List(ctx context.Context, userID uuid.UUID, category *domain.TagCategory) ([]*domain.Tag, error) {
	return s.tags.List(ctx, userID, category)
}

// Create adds a tag.
func (s *TagService) Create(ctx context.Context, userID uuid.UUID, in TagInput) (*domain.Tag, error) {
	tag, err := domain.NewTag(userID, in.Name, in.Color, in.Icon, in.Category)
	if err != nil {
		return nil, err
	}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, NewServiceError("tag", "create", err)
	}
	return tag, nil
}

// Update edits a tag. The category is only changed when given.
func (s *TagService) Update(ctx context.Context, userID, id uuid.UUID, in TagInput) (*domain.Tag, error) {
	tag, err := s.tags.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	tag.Name = strings.TrimSpace(in.Name)
	tag.Color = in.Color
	tag.Icon = in.Icon
	if in.Category != "" {
		tag.Category = in.Category
	}
	if err := tag.Validate(); err != nil {
		return nil, err
	}
	if err := s.tags.Update(ctx, tag); err != nil {
		return nil, NewServiceError("tag", "update", err)
	}
	return tag, nil
}

// Delete removes a tag. Tasks and templates carrying it lose the tag.
func (s *TagService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.tags.Delete(ctx, userID, id)
}
