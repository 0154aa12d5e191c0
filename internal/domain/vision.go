package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GoalCategory is a life area on the vision board.
type GoalCategory string

// Goal categories, in display order.
const (
	GoalCategoryFinance             GoalCategory = "finance"
	GoalCategoryWork                GoalCategory = "work"
	GoalCategoryPersonalDevelopment GoalCategory = "personal_development"
	GoalCategoryHealth              GoalCategory = "health"
	GoalCategoryRelationships       GoalCategory = "relationships"
	GoalCategoryExperiences         GoalCategory = "experiences"
)

// GoalCategories returns every category in display order.
func GoalCategories() []GoalCategory {
	return []GoalCategory{
		GoalCategoryFinance,
		GoalCategoryWork,
		GoalCategoryPersonalDevelopment,
		GoalCategoryHealth,
		GoalCategoryRelationships,
		GoalCategoryExperiences,
	}
}

// Valid reports whether c is a known category.
func (c GoalCategory) Valid() bool {
	for _, known := range GoalCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// Validation errors for VisionGoal
var (
	ErrGoalTitleEmpty      = errors.New("goal title cannot be empty")
	ErrInvalidGoalCategory = errors.New("invalid goal category")
)

// VisionGoal is a long-term goal pinned to the vision board.
type VisionGoal struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	Category    GoalCategory `json:"category"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	IsCompleted bool         `json:"is_completed"`
	OrderIndex  int          `json:"order_index"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Validate checks if the VisionGoal has valid data.
func (g *VisionGoal) Validate() error {
	if g.ID == uuid.Nil || g.UserID == uuid.Nil {
		return ErrInvalidID
	}
	if strings.TrimSpace(g.Title) == "" {
		return ErrGoalTitleEmpty
	}
	if !g.Category.Valid() {
		return ErrInvalidGoalCategory
	}
	return nil
}
