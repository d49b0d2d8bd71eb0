// Package week maps calendar dates onto training-week numbers. The training
// calendar is anchored at a configured start Monday; week 1 covers that
// Monday through Friday.
package week

import (
	"fmt"
	"time"
)

// Calendar computes week numbers relative to the training start date.
type Calendar struct {
	start time.Time
}

// NewCalendar builds a calendar anchored at start, which must be a Monday.
func NewCalendar(start time.Time) (Calendar, error) {
	start = Truncate(start)
	if start.Weekday() != time.Monday {
		return Calendar{}, fmt.Errorf("training start %s is not a Monday", start.Format("2006-01-02"))
	}
	return Calendar{start: start}, nil
}

// MustCalendar is NewCalendar for statically known dates (tests, defaults).
func MustCalendar(start time.Time) Calendar {
	c, err := NewCalendar(start)
	if err != nil {
		panic(err)
	}
	return c
}

// Start returns the calendar's anchor Monday.
func (c Calendar) Start() time.Time { return c.start }

// ForDate returns the 1-based training week containing d. Dates before the
// anchor yield week numbers <= 0; callers decide whether those are valid.
func (c Calendar) ForDate(d time.Time) int {
	days := int(Truncate(d).Sub(c.start).Hours() / 24)
	if days >= 0 {
		return days/7 + 1
	}
	// Integer division truncates toward zero; shift so earlier weeks count back.
	return (days+1)/7 - 1 + 1
}

// Range returns the Monday and Friday bounding training week n.
func (c Calendar) Range(n int) (start, end time.Time) {
	start = c.start.AddDate(0, 0, (n-1)*7)
	end = start.AddDate(0, 0, 4)
	return start, end
}

// Truncate normalises a timestamp to UTC midnight so date comparisons and
// unique constraints behave regardless of the caller's zone.
func Truncate(d time.Time) time.Time {
	y, m, day := d.UTC().Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// IsWorkday reports whether d falls Monday through Friday.
func IsWorkday(d time.Time) bool {
	wd := d.UTC().Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// DayName returns the English weekday name used in reports and snapshots.
func DayName(d time.Time) string { return d.UTC().Weekday().String() }
