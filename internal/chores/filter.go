// Package chores derives read-only views from a group's chore snapshot and
// computes occurrence schedules for repeating chores. Everything here is a
// pure function over immutable snapshot values; callers re-apply filters
// whenever a new snapshot arrives or the selected filter changes.
package chores

import (
	"time"

	"hearth/internal/core"
)

const (
	FilterAll          Filter = "all"
	FilterWeek         Filter = "week"
	FilterCompleted    Filter = "completed"
	FilterPastDeadline Filter = "pastDeadline"
)

// Filter selects one of the chore list views.
type Filter string

// Valid reports whether the filter is one of the supported views.
func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterWeek, FilterCompleted, FilterPastDeadline:
		return true
	}
	return false
}

// Apply returns the chores matching the filter at the given instant. The
// input slice is never mutated; FilterAll returns a copy so callers can hold
// the result across snapshot replacements.
func Apply(f Filter, list []core.Chore, now time.Time) []core.Chore {
	out := make([]core.Chore, 0, len(list))
	switch f {
	case FilterWeek:
		start, end := WeekOf(now)
		for _, c := range list {
			if c.DueDate.IsZero() {
				continue
			}
			if !c.DueDate.Before(start) && c.DueDate.Before(end) {
				out = append(out, c)
			}
		}
	case FilterCompleted:
		for _, c := range list {
			if c.Completed {
				out = append(out, c)
			}
		}
	case FilterPastDeadline:
		for _, c := range list {
			if c.Completed || c.DueDate.IsZero() {
				continue
			}
			if c.DueDate.Before(now) {
				out = append(out, c)
			}
		}
	default:
		out = append(out, list...)
	}
	return out
}

// WeekOf returns the Monday-aligned calendar week containing t, in t's
// location: [Monday 00:00, next Monday 00:00).
func WeekOf(t time.Time) (start, end time.Time) {
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	year, month, day := t.AddDate(0, 0, -offset).Date()
	start = time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 7)
}
