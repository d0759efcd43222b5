package planner

import (
	"context"
	"testing"
	"time"

	"github.com/rnwolfe/rack/internal/task"
)

func days(now time.Time, offsets ...int) []time.Time {
	var out []time.Time
	for _, o := range offsets {
		out = append(out, now.AddDate(0, 0, o))
	}
	return out
}

func TestCompletionStreak(t *testing.T) {
	tests := []struct {
		name             string
		completions      []time.Time
		current, longest int
	}{
		{"none", nil, 0, 0},
		{"today only", days(friday, 0), 1, 1},
		{"yesterday keeps streak alive", days(friday, -1, -2), 2, 2},
		{"gap breaks current", days(friday, -2, -3, -4), 0, 3},
		{"duplicates collapse", days(friday, 0, 0, -1), 2, 2},
		{"longest in the past", days(friday, 0, -5, -6, -7, -8), 1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur, longest := CompletionStreak(tt.completions, friday)
			if cur != tt.current || longest != tt.longest {
				t.Errorf("CompletionStreak = %d/%d, want %d/%d", cur, longest, tt.current, tt.longest)
			}
		})
	}
}

func TestStats(t *testing.T) {
	f := newFixture(t, friday)
	ctx := context.Background()

	f.put(t, task.Task{ID: "a", Description: "a", Status: task.StatusInbox})
	f.put(t, task.Task{ID: "b", Description: "b", Status: task.StatusInbox})
	f.put(t, task.Task{ID: "sub", Description: "sub", Status: task.StatusInbox, ParentID: "a"})
	f.put(t, task.Task{ID: "late", Description: "late", Status: task.StatusToday, ScheduledFor: "2025-03-12"})
	top := f.put(t, task.Task{ID: "top", Description: "top", Status: task.StatusToday, IsTop3: true, Top3Date: fridayISO})

	earlier := friday.Add(-2 * time.Hour)
	yesterday := friday.AddDate(0, 0, -1)
	f.put(t, task.Task{ID: "d1", Description: "d1", Status: task.StatusDone, CompletedAt: &earlier, Actual: task.IntPtr(25)})
	f.put(t, task.Task{ID: "d2", Description: "d2", Status: task.StatusDone, CompletedAt: &yesterday, Actual: task.IntPtr(60)})

	_ = f.p.AddCalibrationEntry(ctx, "Work", 30, 45)
	_ = f.p.AddCalibrationEntry(ctx, "Work", 30, 45)

	st, err := f.p.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Open[task.StatusInbox] != 2 || st.Open[task.StatusToday] != 2 {
		t.Errorf("Open = %v", st.Open)
	}
	if st.CompletedToday != 1 || st.MinutesToday != 25 {
		t.Errorf("CompletedToday/MinutesToday = %d/%d", st.CompletedToday, st.MinutesToday)
	}
	if st.Overdue != 1 {
		t.Errorf("Overdue = %d", st.Overdue)
	}
	if st.Streak != 2 || st.LongestStreak != 2 {
		t.Errorf("Streak = %d/%d", st.Streak, st.LongestStreak)
	}
	if len(st.Categories) != 1 || st.Categories[0].Tag != "Work" || st.Categories[0].Factor != 1.5 || st.Categories[0].Samples != 2 {
		t.Errorf("Categories = %+v", st.Categories)
	}
	if len(st.Top3) != 1 || st.Top3[0].ID != top.ID {
		t.Errorf("Top3 = %v", ids(st.Top3))
	}
	if st.Usable != 288 {
		t.Errorf("Usable = %d", st.Usable)
	}
}
