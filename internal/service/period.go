package service

import (
	"time"

	"github.com/phrazzld/dmo-api/internal/domain"
)

// weekStart returns the first day of d's week, weeks starting on first.
func weekStart(d domain.Date, first time.Weekday) domain.Date {
	offset := (int(d.Weekday()) - int(first) + 7) % 7
	return d.AddDays(-offset)
}

func monthStart(d domain.Date) domain.Date {
	return domain.NewDate(d.Year(), d.Month(), 1)
}

func monthEnd(d domain.Date) domain.Date {
	return domain.NewDate(d.Year(), d.Month()+1, 0)
}

func yearStart(d domain.Date) domain.Date {
	return domain.NewDate(d.Year(), time.January, 1)
}

func yearEnd(d domain.Date) domain.Date {
	return domain.NewDate(d.Year(), time.December, 31)
}

func minDate(a, b domain.Date) domain.Date {
	if b.Before(a) {
		return b
	}
	return a
}

func maxDate(a, b domain.Date) domain.Date {
	if b.After(a) {
		return b
	}
	return a
}
