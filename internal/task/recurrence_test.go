package task

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 15, 30, 0, 0, time.UTC)
}

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name  string
		rule  Recurrence
		day   *int
		today time.Time
		want  string
	}{
		{"daily", RecurrenceDaily, nil, date(2025, 3, 14), "2025-03-15"},
		{"daily across year end", RecurrenceDaily, nil, date(2025, 12, 31), "2026-01-01"},
		{"weekly Friday from Saturday", RecurrenceWeekly, IntPtr(5), date(2025, 3, 15), "2025-03-21"},
		{"weekly same weekday wraps a week", RecurrenceWeekly, IntPtr(5), date(2025, 3, 14), "2025-03-21"},
		{"weekly Monday from Friday", RecurrenceWeekly, IntPtr(1), date(2025, 3, 14), "2025-03-17"},
		{"weekly without day keeps weekday", RecurrenceWeekly, nil, date(2025, 3, 14), "2025-03-21"},
		{"monthly same day", RecurrenceMonthly, IntPtr(14), date(2025, 3, 14), "2025-04-14"},
		{"monthly 31 clamps to 30", RecurrenceMonthly, IntPtr(31), date(2025, 3, 31), "2025-04-30"},
		{"monthly 31 from January clamps to February", RecurrenceMonthly, IntPtr(31), date(2025, 1, 31), "2025-02-28"},
		{"monthly leap February", RecurrenceMonthly, IntPtr(30), date(2024, 1, 30), "2024-02-29"},
		{"monthly December rolls year", RecurrenceMonthly, IntPtr(5), date(2025, 12, 20), "2026-01-05"},
		{"monthly without day", RecurrenceMonthly, nil, date(2025, 5, 31), "2025-06-30"},
		{"unknown rule", Recurrence("yearly"), nil, date(2025, 3, 14), "2025-03-15"},
		{"no rule", "", nil, date(2025, 3, 14), "2025-03-15"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NextOccurrence(tc.rule, tc.day, tc.today)
			if Day(got) != tc.want {
				t.Errorf("NextOccurrence = %s, want %s", Day(got), tc.want)
			}
		})
	}
}

func TestNextOccurrence_WeeklyFridayFromSaturdayIsSixDays(t *testing.T) {
	sat := date(2025, 3, 15)
	got := NextOccurrence(RecurrenceWeekly, IntPtr(5), sat)
	if diff := got.Sub(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)); diff != 6*24*time.Hour {
		t.Errorf("gap = %v, want 6 days", diff)
	}
}

func TestRecurrenceLabel(t *testing.T) {
	tests := []struct {
		rule Recurrence
		day  *int
		want string
	}{
		{RecurrenceDaily, nil, "daily"},
		{RecurrenceWeekly, IntPtr(5), "weekly on Fri"},
		{RecurrenceWeekly, nil, "weekly"},
		{RecurrenceMonthly, IntPtr(15), "monthly on day 15"},
		{"", nil, ""},
	}
	for _, tc := range tests {
		if got := RecurrenceLabel(tc.rule, tc.day); got != tc.want {
			t.Errorf("RecurrenceLabel(%q) = %q, want %q", tc.rule, got, tc.want)
		}
	}
}

// --- ParseRecurrence ---

func TestParseRecurrence(t *testing.T) {
	tests := []struct {
		input string
		want  Recurrence
	}{
		{"d", RecurrenceDaily},
		{"DAILY", RecurrenceDaily},
		{"w", RecurrenceWeekly},
		{"week", RecurrenceWeekly},
		{"M", RecurrenceMonthly},
	}
	for _, tc := range tests {
		got, err := ParseRecurrence(tc.input)
		if err != nil || got != tc.want {
			t.Errorf("ParseRecurrence(%q) = %q, %v", tc.input, got, err)
		}
	}
	for _, bad := range []string{"yearly", "", "biweekly"} {
		if _, err := ParseRecurrence(bad); err == nil {
			t.Errorf("ParseRecurrence(%q): expected error", bad)
		}
	}
}
