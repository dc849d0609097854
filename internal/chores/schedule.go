package chores

import (
	"time"

	"hearth/internal/core"
)

// OccurrenceStepper advances a due date by one repetition interval. Each
// repeat policy has its own stepper; the anchor is the chore's original due
// date, which monthly stepping needs to recover day-of-month after clamping.
type OccurrenceStepper interface {
	Step(due time.Time, anchor time.Time, steps int) time.Time
}

type dailyStepper struct{}

func (dailyStepper) Step(due, _ time.Time, steps int) time.Time {
	return due.AddDate(0, 0, steps)
}

type weeklyStepper struct{}

func (weeklyStepper) Step(due, _ time.Time, steps int) time.Time {
	return due.AddDate(0, 0, 7*steps)
}

type monthlyStepper struct{}

// Step adds calendar months, clamping the anchor day to the target month's
// last day (Jan 31 -> Feb 28 -> Mar 31, not Mar 3).
func (monthlyStepper) Step(due, anchor time.Time, steps int) time.Time {
	year, month, _ := due.Date()
	hour, min, sec := due.Clock()
	target := time.Date(year, month+time.Month(steps), 1, hour, min, sec, due.Nanosecond(), due.Location())
	day := anchor.Day()
	if last := lastDayOfMonth(target); day > last {
		day = last
	}
	return target.AddDate(0, 0, day-1)
}

var occurrenceSteppers = map[core.RepeatPolicy]OccurrenceStepper{
	core.RepeatDaily:   dailyStepper{},
	core.RepeatWeekly:  weeklyStepper{},
	core.RepeatMonthly: monthlyStepper{},
}

// NextOccurrence returns the first scheduled due date strictly after now for
// a repeating chore anchored at due. The second return is false for
// non-repeating policies and chores without a due date.
func NextOccurrence(repeat core.RepeatPolicy, due time.Time, now time.Time) (time.Time, bool) {
	stepper, ok := occurrenceSteppers[repeat]
	if !ok || due.IsZero() {
		return time.Time{}, false
	}
	next := stepper.Step(due, due, 1)
	for !next.After(now) {
		next = stepper.Step(next, due, 1)
	}
	return next, true
}

func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
