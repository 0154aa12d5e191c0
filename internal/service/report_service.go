package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/platform/logger"
	"github.com/phrazzld/dmo-api/internal/store"
)

// ReportFilter selects the interval a report covers.
type ReportFilter string

// Report filters.
const (
	ReportToday ReportFilter = "today"
	ReportWeek  ReportFilter = "week"
	ReportMonth ReportFilter = "month"
	ReportYear  ReportFilter = "year"
)

// ParseReportFilter maps s to a filter. Unknown values select the week.
func ParseReportFilter(s string) ReportFilter {
	switch f := ReportFilter(s); f {
	case ReportToday, ReportWeek, ReportMonth, ReportYear:
		return f
	default:
		return ReportWeek
	}
}

// NoFocus is the focus of a report without completed tasks.
const NoFocus = "--"

// progressDays is the length of the trailing window charted for the
// today and week filters.
const progressDays = 7

// Report summarizes a user's tasks over an interval. Tasks count toward
// the day of their deadline when one is set, otherwise their own date.
type Report struct {
	Filter     ReportFilter    `json:"filter"`
	From       domain.Date     `json:"from"`
	To         domain.Date     `json:"to"`
	Total      int             `json:"total"`
	DoneCount  int             `json:"done_count"`
	Efficiency float64         `json:"efficiency"`
	Focus      string          `json:"focus"`
	Matrix     []MatrixCell    `json:"matrix"`
	Progress   []ProgressPoint `json:"progress"`
	History    []HistoryRow    `json:"history"`
}

// MatrixCell is the number of done tasks in one quadrant.
type MatrixCell struct {
	Quadrant domain.Quadrant `json:"quadrant"`
	Label    string          `json:"label"`
	Done     int             `json:"done"`
}

// ProgressPoint is one bar of the progress chart.
type ProgressPoint struct {
	Label string `json:"label"`
	Done  int    `json:"done"`
}

// HistoryRow is the done/total tally of one day.
type HistoryRow struct {
	Date  domain.Date `json:"date"`
	Count string      `json:"count"`
	Rate  int         `json:"rate"`
}

// ReportService computes productivity reports.
type ReportService struct {
	tasks  store.TaskStore
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
}

// NewReportService creates a ReportService. Days are calendar days in loc.
func NewReportService(tasks store.TaskStore, loc *time.Location, logger *slog.Logger) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		tasks:  tasks,
		loc:    loc,
		now:    time.Now,
		logger: logger.With("component", "report_service"),
	}
}

// interval returns the inclusive day range of filter around today.
func (s *ReportService) interval(filter ReportFilter, today domain.Date) (domain.Date, domain.Date) {
	switch filter {
	case ReportToday:
		return today, today
	case ReportMonth:
		return monthStart(today), monthEnd(today)
	case ReportYear:
		return yearStart(today), yearEnd(today)
	default:
		start := weekStart(today, time.Monday)
		return start, start.AddDays(6)
	}
}

// GetReport builds the report of userID for filter.
func (s *ReportService) GetReport(ctx context.Context, userID uuid.UUID, filter ReportFilter) (*Report, error) {
	filter = ParseReportFilter(string(filter))
	today := domain.DateOf(s.now().In(s.loc))
	from, to := s.interval(filter, today)

	trailing := filter == ReportToday || filter == ReportWeek
	queryFrom, queryTo := from, to
	if trailing {
		queryFrom = minDate(from, today.AddDays(-(progressDays - 1)))
		queryTo = maxDate(to, today)
	}

	rows, err := s.tasks.ListForReport(ctx, userID, queryFrom, queryTo, s.loc.String())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load report tasks",
			"error", err,
			"user_id", userID,
			"filter", filter)
		return nil, NewServiceError("report", "load", err)
	}

	var inRange []reportTask
	all := make([]reportTask, 0, len(rows))
	for i := range rows {
		rt := reportTask{day: rows[i].ReportDate(s.loc), done: rows[i].IsDone(), quadrant: rows[i].Quadrant}
		all = append(all, rt)
		if !rt.day.Before(from) && !rt.day.After(to) {
			inRange = append(inRange, rt)
		}
	}

	r := &Report{
		Filter:  filter,
		From:    from,
		To:      to,
		Total:   len(inRange),
		Focus:   NoFocus,
		History: []HistoryRow{},
	}

	doneByQuadrant := make(map[domain.Quadrant]int)
	for _, t := range inRange {
		if t.done {
			r.DoneCount++
			doneByQuadrant[t.quadrant]++
		}
	}
	if r.Total > 0 {
		r.Efficiency = math.Round(float64(r.DoneCount)/float64(r.Total)*1000) / 10
	}

	best := 0
	for _, q := range domain.Quadrants() {
		n := doneByQuadrant[q]
		r.Matrix = append(r.Matrix, MatrixCell{Quadrant: q, Label: q.Label(), Done: n})
		if n > best {
			best = n
			r.Focus = string(q)
		}
	}

	if trailing {
		r.Progress = trailingProgress(all, today)
	} else {
		r.Progress = groupedProgress(inRange, filter == ReportYear)
	}
	r.History = history(inRange)
	return r, nil
}

type reportTask struct {
	day      domain.Date
	done     bool
	quadrant domain.Quadrant
}

// trailingProgress counts done tasks on each of the last seven days.
func trailingProgress(tasks []reportTask, today domain.Date) []ProgressPoint {
	done := make(map[domain.Date]int)
	for _, t := range tasks {
		if t.done {
			done[t.day]++
		}
	}
	out := make([]ProgressPoint, 0, progressDays)
	for i := progressDays - 1; i >= 0; i-- {
		d := today.AddDays(-i)
		out = append(out, ProgressPoint{Label: dayLabel(d), Done: done[d]})
	}
	return out
}

// groupedProgress counts done tasks per day (or per month when byMonth),
// listing every bucket that has a task in chronological order.
func groupedProgress(tasks []reportTask, byMonth bool) []ProgressPoint {
	type bucket struct {
		first domain.Date
		label string
		done  int
	}
	buckets := make(map[string]*bucket)
	for _, t := range tasks {
		label := dayLabel(t.day)
		if byMonth {
			label = t.day.Month().String()[:3]
		}
		b, ok := buckets[label]
		if !ok {
			b = &bucket{first: t.day, label: label}
			buckets[label] = b
		}
		if t.day.Before(b.first) {
			b.first = t.day
		}
		if t.done {
			b.done++
		}
	}

	sorted := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		sorted = append(sorted, b)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].first.Before(sorted[j].first) })

	out := make([]ProgressPoint, 0, len(sorted))
	for _, b := range sorted {
		out = append(out, ProgressPoint{Label: b.label, Done: b.done})
	}
	return out
}

// history tallies each day with tasks, newest first.
func history(tasks []reportTask) []HistoryRow {
	type tally struct{ done, total int }
	days := make(map[domain.Date]*tally)
	for _, t := range tasks {
		c, ok := days[t.day]
		if !ok {
			c = &tally{}
			days[t.day] = c
		}
		c.total++
		if t.done {
			c.done++
		}
	}

	out := make([]HistoryRow, 0, len(days))
	for d, c := range days {
		out = append(out, HistoryRow{
			Date:  d,
			Count: fmt.Sprintf("%d/%d", c.done, c.total),
			Rate:  int(math.Round(float64(c.done) * 100 / float64(c.total))),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func dayLabel(d domain.Date) string {
	return fmt.Sprintf("%02d/%02d", d.Day(), int(d.Month()))
}
