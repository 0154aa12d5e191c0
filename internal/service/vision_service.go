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

// GoalInput carries the editable fields of a vision goal.
type GoalInput struct {
	Category    domain.GoalCategory
	Title       string
	Description string
	OrderIndex  *int
}

// GoalGroup is one category of the vision board.
type GoalGroup struct {
	Category domain.GoalCategory  `json:"category"`
	Goals    []*domain.VisionGoal `json:"goals"`
}

// VisionService manages the vision board.
type VisionService struct {
	goals  store.VisionStore
	now    func() time.Time
	logger *slog.Logger
}

// NewVisionService creates a VisionService.
func NewVisionService(goals store.VisionStore, logger *slog.Logger) *VisionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &VisionService{goals: goals, now: time.Now, logger: logger.With("component", "vision_service")}
}

// Board returns the user's goals grouped by category. Every category is
// present, in display order, even when empty.
func (s *VisionService) Board(ctx context.Context, userID uuid.UUID) ([]GoalGroup, error) {
	goals, err := s.goals.List(ctx, userID)
	if err != nil {
		return nil, NewServiceError("vision", "list", err)
	}
	byCategory := make(map[domain.GoalCategory][]*domain.VisionGoal)
	for _, g := range goals {
		byCategory[g.Category] = append(byCategory[g.Category], g)
	}

	groups := make([]GoalGroup, 0, len(domain.GoalCategories()))
	for _, c := range domain.GoalCategories() {
		list := byCategory[c]
		if list == nil {
			list = []*domain.VisionGoal{}
		}
		groups = append(groups, GoalGroup{Category: c, Goals: list})
	}
	return groups, nil
}

// Create adds a goal at the end of the board unless an order is given.
func (s *VisionService) Create(ctx context.Context, userID uuid.UUID, in GoalInput) (*domain.VisionGoal, error) {
	now := s.now().UTC()
	goal := &domain.VisionGoal{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
	}
	if in.OrderIndex == nil {
		existing, err := s.goals.List(ctx, userID)
		if err != nil {
			return nil, NewServiceError("vision", "create", err)
		}
		n := len(existing)
		in.OrderIndex = &n
	}
	applyGoal(goal, in, now)
	if err := goal.Validate(); err != nil {
		return nil, err
	}
	if err := s.goals.Create(ctx, goal); err != nil {
		return nil, NewServiceError("vision", "create", err)
	}
	return goal, nil
}

// Update edits a goal.
func (s *VisionService) Update(ctx context.Context, userID, id uuid.UUID, in GoalInput) (*domain.VisionGoal, error) {
	goal, err := s.goals.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	applyGoal(goal, in, s.now().UTC())
	if err := goal.Validate(); err != nil {
		return nil, err
	}
	if err := s.goals.Update(ctx, goal); err != nil {
		return nil, NewServiceError("vision", "update", err)
	}
	return goal, nil
}

// Toggle flips a goal's completed flag.
func (s *VisionService) Toggle(ctx context.Context, userID, id uuid.UUID) (*domain.VisionGoal, error) {
	goal, err := s.goals.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	goal.IsCompleted = !goal.IsCompleted
	goal.UpdatedAt = s.now().UTC()
	if err := s.goals.Update(ctx, goal); err != nil {
		return nil, NewServiceError("vision", "toggle", err)
	}
	return goal, nil
}

// Delete removes a goal.
func (s *VisionService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.goals.Delete(ctx, userID, id)
}

func applyGoal(goal *domain.VisionGoal, in GoalInput, now time.Time) {
	goal.Category = in.Category
	goal.Title = strings.TrimSpace(in.Title)
	goal.Description = strings.TrimSpace(in.Description)
	if in.OrderIndex != nil {
		goal.OrderIndex = *in.OrderIndex
	}
	goal.UpdatedAt = now
}
