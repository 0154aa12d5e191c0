// Package board decides which tasks appear on a user's board for a given
// day and how they are arranged. Everything here is pure: no I/O, no
// clocks, no errors.
package board

import (
	"sort"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
)

// FilterVisible keeps the rows that belong on the board for viewed:
//
//   - done rows only on their own date
//   - pending template rows only on their own date
//   - pending ad-hoc rows on every date, carried forward until done
//
// Rows with any other status are dropped. Input order is preserved and the
// input slice is not modified.
func FilterVisible(rows []domain.Task, viewed domain.Date) []domain.Task {
	visible := make([]domain.Task, 0, len(rows))
	for _, row := range rows {
		if IsVisible(&row, viewed) {
			visible = append(visible, row)
		}
	}
	return visible
}

// IsVisible applies the FilterVisible rule to a single row.
func IsVisible(row *domain.Task, viewed domain.Date) bool {
	switch row.Status {
	case domain.TaskStatusDone:
		return row.Date == viewed
	case domain.TaskStatusPending:
		if row.FromTemplate() {
			return row.Date == viewed
		}
		return true
	default:
		return false
	}
}

// SortWithinQuadrant orders tasks in place: pending before done, then tasks
// with a deadline before tasks without, then earlier deadlines first. Ties
// keep their incoming order.
func SortWithinQuadrant(tasks []domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return less(&tasks[i], &tasks[j])
	})
}

func less(a, b *domain.Task) bool {
	if a.IsDone() != b.IsDone() {
		return !a.IsDone()
	}
	if a.HasDeadline() != b.HasDeadline() {
		return a.HasDeadline()
	}
	if a.HasDeadline() {
		return a.DeadlineAt.Before(*b.DeadlineAt)
	}
	return false
}

// Column is one quadrant of the board.
type Column struct {
	Quadrant domain.Quadrant `json:"quadrant"`
	Label    string          `json:"label"`
	Subtitle string          `json:"subtitle"`
	Tasks    []domain.Task   `json:"tasks"`
}

// Board is the four columns of a day in canonical quadrant order.
type Board struct {
	Date    domain.Date `json:"date"`
	Columns []Column    `json:"columns"`
}

// Column returns the column for q.
func (b *Board) Column(q domain.Quadrant) *Column {
	for i := range b.Columns {
		if b.Columns[i].Quadrant == q {
			return &b.Columns[i]
		}
	}
	return nil
}

// Len counts the tasks across all columns.
func (b *Board) Len() int {
	n := 0
	for _, c := range b.Columns {
		n += len(c.Tasks)
	}
	return n
}

// Options narrows what Arrange places on the board.
type Options struct {
	// TagID keeps only tasks carrying this tag when non-nil.
	TagID *uuid.UUID
}

// Arrange filters rows for viewed, applies opts, and groups the result
// into sorted quadrant columns. Every quadrant gets a column, possibly
// empty. Rows with an unknown quadrant are dropped.
func Arrange(rows []domain.Task, viewed domain.Date, opts Options) Board {
	visible := FilterVisible(rows, viewed)

	byQuadrant := make(map[domain.Quadrant][]domain.Task, 4)
	for _, t := range visible {
		if opts.TagID != nil && (t.TagID == nil || *t.TagID != *opts.TagID) {
			continue
		}
		byQuadrant[t.Quadrant] = append(byQuadrant[t.Quadrant], t)
	}

	b := Board{Date: viewed, Columns: make([]Column, 0, 4)}
	for _, q := range domain.Quadrants() {
		tasks := byQuadrant[q]
		if tasks == nil {
			tasks = []domain.Task{}
		}
		SortWithinQuadrant(tasks)
		b.Columns = append(b.Columns, Column{
			Quadrant: q,
			Label:    q.Label(),
			Subtitle: q.Subtitle(),
			Tasks:    tasks,
		})
	}
	return b
}
