package chores

import (
	"testing"
	"time"

	"hearth/internal/core"
)

// Wednesday 2026-01-14 10:00 UTC; the containing week is Mon 12th - Mon 19th.
var now = time.Date(2026, 1, 14, 10, 0, 0, 0, time.UTC)

func chore(id string, due time.Time, completed bool) core.Chore {
	return core.Chore{ID: id, Title: id, AssignedTo: "u1", Repeat: core.RepeatNever, DueDate: due, Completed: completed}
}

func choreIDs(list []core.Chore) map[string]bool {
	out := make(map[string]bool, len(list))
	for _, c := range list {
		out[c.ID] = true
	}
	return out
}

func TestWeekOf(t *testing.T) {
	start, end := WeekOf(now)
	if want := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("week start = %v, want %v", start, want)
	}
	if want := time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC); !end.Equal(want) {
		t.Errorf("week end = %v, want %v", end, want)
	}

	// A Monday belongs to its own week.
	monday := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	start, _ = WeekOf(monday)
	if !start.Equal(monday) {
		t.Errorf("WeekOf(monday) start = %v, want %v", start, monday)
	}

	// A Sunday belongs to the week that started the previous Monday.
	sunday := time.Date(2026, 1, 18, 23, 0, 0, 0, time.UTC)
	start, _ = WeekOf(sunday)
	if want := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("WeekOf(sunday) start = %v, want %v", start, want)
	}
}

func TestApply(t *testing.T) {
	list := []core.Chore{
		chore("due-yesterday", now.AddDate(0, 0, -1), false),
		chore("due-tomorrow", now.AddDate(0, 0, 1), false),
		chore("due-next-month", now.AddDate(0, 1, 0), false),
		chore("done-last-week", now.AddDate(0, 0, -9), true),
		chore("no-due-date", time.Time{}, false),
	}

	tests := []struct {
		filter Filter
		want   []string
	}{
		{FilterAll, []string{"due-yesterday", "due-tomorrow", "due-next-month", "done-last-week", "no-due-date"}},
		{FilterWeek, []string{"due-yesterday", "due-tomorrow"}},
		{FilterCompleted, []string{"done-last-week"}},
		{FilterPastDeadline, []string{"due-yesterday"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			got := choreIDs(Apply(tt.filter, list, now))
			if len(got) != len(tt.want) {
				t.Fatalf("Apply(%s) returned %d chores, want %d: %v", tt.filter, len(got), len(tt.want), got)
			}
			for _, id := range tt.want {
				if !got[id] {
					t.Errorf("Apply(%s) missing %s", tt.filter, id)
				}
			}
		})
	}
}

func TestApplyIsIdempotentAndNonDestructive(t *testing.T) {
	list := []core.Chore{
		chore("a", now.AddDate(0, 0, -1), false),
		chore("b", now.AddDate(0, 0, 1), true),
	}

	all := Apply(FilterAll, list, now)
	if len(all) != len(list) {
		t.Fatalf("FilterAll is not identity: %d vs %d", len(all), len(list))
	}
	again := Apply(FilterPastDeadline, Apply(FilterPastDeadline, list, now), now)
	if len(again) != 1 || again[0].ID != "a" {
		t.Errorf("pastDeadline not idempotent: %v", choreIDs(again))
	}
	if list[0].ID != "a" || list[1].ID != "b" {
		t.Error("Apply mutated its input")
	}
}

func TestPastDeadlineNeverIncludesCompleted(t *testing.T) {
	c := chore("overdue", now.AddDate(0, 0, -3), false)
	if got := Apply(FilterPastDeadline, []core.Chore{c}, now); len(got) != 1 {
		t.Fatalf("pending overdue chore missing from pastDeadline")
	}

	// Toggling completion moves it from pastDeadline to completed,
	// regardless of how old the due date is.
	c.Completed = true
	if got := Apply(FilterPastDeadline, []core.Chore{c}, now); len(got) != 0 {
		t.Error("completed chore leaked into pastDeadline")
	}
	if got := Apply(FilterCompleted, []core.Chore{c}, now); len(got) != 1 {
		t.Error("completed chore missing from completed view")
	}
}
