package domain

import (
	"time"

	"github.com/google/uuid"
)

// Completion records one task being marked done. Title and quadrant are
// copied so the activity feed and leaderboards survive task edits.
type Completion struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	TaskID      uuid.UUID `json:"task_id"`
	TaskTitle   string    `json:"task_title"`
	Quadrant    Quadrant  `json:"quadrant"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewCompletion snapshots task at completedAt.
func NewCompletion(task *Task, completedAt time.Time) *Completion {
	return &Completion{
		ID:          uuid.New(),
		UserID:      task.UserID,
		TaskID:      task.ID,
		TaskTitle:   task.Title,
		Quadrant:    task.Quadrant,
		CompletedAt: completedAt.UTC(),
	}
}

// ActivityItem is a completion joined with the completing user's name.
type ActivityItem struct {
	Completion
	UserName string `json:"user_name"`
}
