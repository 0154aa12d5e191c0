package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/store"
)

// BucketItemInput carries the editable fields of a bucketlist item.
type BucketItemInput struct {
	Title       string
	Description string
	ImageURL    string
	OrderIndex  *int
	TagIDs      []uuid.UUID
}

// BucketlistService manages the user's bucketlist.
type BucketlistService struct {
	items  store.BucketlistStore
	tags   store.TagStore
	now    func() time.Time
	logger *slog.Logger
}

// NewBucketlistService creates a BucketlistService.
func NewBucketlistService(items store.BucketlistStore, tags store.TagStore, logger *slog.Logger) *BucketlistService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BucketlistService{
		items:  items,
		tags:   tags,
		now:    time.Now,
		logger: logger.With("component", "bucketlist_service"),
	}
}

// List returns the user's items by order index.
func (s *BucketlistService) List(ctx context.Context, userID uuid.UUID) ([]*domain.BucketlistItem, error) {
	return s.items.List(ctx, userID)
}

// Create adds an item.
func (s *BucketlistService) Create(ctx context.Context, userID uuid.UUID, in BucketItemInput) (*domain.BucketlistItem, error) {
	if in.OrderIndex == nil {
		existing, err := s.items.List(ctx, userID)
		if err != nil {
			return nil, NewServiceError("bucketlist", "create", err)
		}
		n := len(existing)
		in.OrderIndex = &n
	}
	now := s.now().UTC()
	item := &domain.BucketlistItem{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
	}
	if err := s.apply(ctx, item, in, now); err != nil {
		return nil, err
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, NewServiceError("bucketlist", "create", err)
	}
	return item, nil
}

// Update edits an item. The completed state is left alone.
func (s *BucketlistService) Update(ctx context.Context, userID, id uuid.UUID, in BucketItemInput) (*domain.BucketlistItem, error) {
	item, err := s.items.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, item, in, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.items.Update(ctx, item); err != nil {
		return nil, NewServiceError("bucketlist", "update", err)
	}
	return item, nil
}

// Toggle flips an item between open and completed.
func (s *BucketlistService) Toggle(ctx context.Context, userID, id uuid.UUID) (*domain.BucketlistItem, error) {
	item, err := s.items.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	item.SetCompleted(!item.IsCompleted, s.now())
	if err := s.items.Update(ctx, item); err != nil {
		return nil, NewServiceError("bucketlist", "toggle", err)
	}
	return item, nil
}

// Delete removes an item.
func (s *BucketlistService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.items.Delete(ctx, userID, id)
}

// apply copies in onto item. Tags must be the user's bucketlist tags.
func (s *BucketlistService) apply(ctx context.Context, item *domain.BucketlistItem, in BucketItemInput, now time.Time) error {
	tagIDs := make([]uuid.UUID, 0, len(in.TagIDs))
	seen := make(map[uuid.UUID]bool, len(in.TagIDs))
	for _, id := range in.TagIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		tag, err := s.tags.GetByID(ctx, item.UserID, id)
		if err != nil {
			if store.IsNotFoundError(err) {
				return invalid("unknown tag")
			}
			return NewServiceError("bucketlist", "check tag", err)
		}
		if tag.Category != domain.TagCategoryBucketlist {
			return invalid("tag %q is not a bucketlist tag", tag.Name)
		}
		tagIDs = append(tagIDs, id)
	}

	item.Title = strings.TrimSpace(in.Title)
	item.Description = strings.TrimSpace(in.Description)
	item.ImageURL = strings.TrimSpace(in.ImageURL)
	item.TagIDs = tagIDs
	if in.OrderIndex != nil {
		item.OrderIndex = *in.OrderIndex
	}
	item.UpdatedAt = now
	return item.Validate()
}
