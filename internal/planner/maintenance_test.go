package planner

import (
	"context"
	"testing"

	"github.com/rnwolfe/rack/internal/task"
)

func TestRunDailyMaintenancePromotesAndClears(t *testing.T) {
	f := newFixture(t, friday)
	ctx := context.Background()

	dueSoon := f.put(t, task.Task{ID: "due", Description: "due in a week", Status: task.StatusNext, DueDate: "2025-03-21"})
	dueLater := f.put(t, task.Task{ID: "later", Description: "due in eight days", Status: task.StatusNext, DueDate: "2025-03-22"})
	overdue := f.put(t, task.Task{ID: "overdue", Description: "scheduled yesterday", Status: task.StatusNext, ScheduledFor: "2025-03-13"})
	staleTop := f.put(t, task.Task{ID: "stale", Description: "yesterday's focus", Status: task.StatusToday,
		IsTop3: true, Top3Date: "2025-03-13", Top3Order: 2})
	lockedTop := f.put(t, task.Task{ID: "locked", Description: "pinned", Status: task.StatusToday,
		IsTop3: true, Top3Date: "2025-03-13", Top3Locked: true})
	doneTask := f.put(t, task.Task{ID: "done", Description: "finished", Status: task.StatusDone, ScheduledFor: "2025-03-01"})

	rep, err := f.p.RunDailyMaintenance(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if rep.OverdueCount != 1 || rep.RolledCount != 2 || rep.ClearedTop3Count != 1 {
		t.Errorf("report = %+v", rep)
	}

	for _, id := range []string{dueSoon.ID, overdue.ID} {
		got := f.get(t, id)
		if got.Status != task.StatusToday || got.ScheduledFor != fridayISO {
			t.Errorf("%s = %s/%s, want today/%s", id, got.Status, got.ScheduledFor, fridayISO)
		}
	}
	if got := f.get(t, dueLater.ID); got.Status != task.StatusNext {
		t.Errorf("task due beyond the horizon moved to %s", got.Status)
	}
	if got := f.get(t, staleTop.ID); got.IsTop3 || got.Top3Date != "" || got.Top3Order != 0 {
		t.Errorf("stale membership not cleared: %+v", got)
	}
	if got := f.get(t, lockedTop.ID); !got.IsTop3 {
		t.Error("locked membership should survive")
	}
	if got := f.get(t, doneTask.ID); got.Status != task.StatusDone {
		t.Error("done tasks are never touched")
	}
}

func TestRunDailyMaintenanceAutoClearOff(t *testing.T) {
	f := newFixture(t, friday)
	f.set.s.AutoClearTop3 = false
	f.put(t, task.Task{ID: "stale", Description: "x", Status: task.StatusToday, IsTop3: true, Top3Date: "2025-03-13"})

	rep, err := f.p.RunDailyMaintenance(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rep.ClearedTop3Count != 0 || !f.get(t, "stale").IsTop3 {
		t.Errorf("auto-clear disabled but membership cleared: %+v", rep)
	}
}

func TestRunDailyMaintenanceCarryoverRespectsCapacity(t *testing.T) {
	f := newFixture(t, friday)
	ctx := context.Background()
	_ = f.p.SetCapacityOverride(ctx, 110)

	// 35 of 110 minutes already committed today.
	f.put(t, rated("today", 3, 3, 3, 0, 0, 0, 30, task.ConfidenceHigh))

	high := rated("high", 5, 5, 1, 2, 2, 2, 30, task.ConfidenceHigh) // 35
	high.Status = task.StatusTomorrow
	f.put(t, high)
	mid := rated("mid", 4, 4, 1, 1, 1, 1, 30, task.ConfidenceHigh) // 35
	mid.Status = task.StatusTomorrow
	f.put(t, mid)
	low := rated("low", 2, 2, 1, 0, 0, 0, 30, task.ConfidenceHigh) // 35, no room left
	low.Status = task.StatusTomorrow
	f.put(t, low)
	f.put(t, task.Task{ID: "loose", Description: "no estimate", Status: task.StatusTomorrow})
	scheduled := rated("sched", 5, 5, 1, 2, 2, 2, 30, task.ConfidenceHigh)
	scheduled.Status, scheduled.ScheduledFor = task.StatusTomorrow, "2025-03-15"
	f.put(t, scheduled)

	rep, err := f.p.RunDailyMaintenance(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if rep.CarriedCount != 2+1 || rep.DeferredCount != 1 {
		t.Errorf("report = %+v, want 3 carried and 1 deferred", rep)
	}
	want := map[string]task.Status{
		"high":  task.StatusToday,
		"mid":   task.StatusToday,
		"low":   task.StatusTomorrow,
		"loose": task.StatusToday,
		"sched": task.StatusTomorrow,
	}
	for id, st := range want {
		if got := f.get(t, id).Status; got != st {
			t.Errorf("%s status = %s, want %s", id, got, st)
		}
	}
	if f.set.rollover != fridayISO {
		t.Errorf("last rollover = %q", f.set.rollover)
	}
}

func TestRunDailyMaintenanceIdempotent(t *testing.T) {
	f := newFixture(t, friday)
	ctx := context.Background()
	_ = f.p.SetCapacityOverride(ctx, 40)

	f.put(t, task.Task{ID: "overdue", Description: "x", Status: task.StatusNext, ScheduledFor: "2025-03-10"})
	a := rated("a", 5, 5, 1, 2, 2, 2, 30, task.ConfidenceHigh)
	a.Status = task.StatusTomorrow
	f.put(t, a)
	b := rated("b", 4, 4, 1, 2, 2, 2, 30, task.ConfidenceHigh)
	b.Status = task.StatusTomorrow
	f.put(t, b)

	first, err := f.p.RunDailyMaintenance(ctx)
	if err != nil {
		t.Fatal(err)
	}
	after, _ := f.tasks.All(ctx)

	second, err := f.p.RunDailyMaintenance(ctx)
	if err != nil {
		t.Fatal(err)
	}
	again, _ := f.tasks.All(ctx)

	if first.DeferredCount != 1 || first.RolledCount != 1 {
		t.Errorf("first run = %+v", first)
	}
	if second.RolledCount != 0 || second.DeferredCount != 0 || second.CarriedCount != 0 || second.ClearedTop3Count != 0 {
		t.Errorf("second run changed something: %+v", second)
	}
	for i := range after {
		if after[i].Status != again[i].Status || after[i].ScheduledFor != again[i].ScheduledFor {
			t.Errorf("%s changed on second run", after[i].ID)
		}
	}
}

func TestRunDailyMaintenanceTomorrowTaskAddedLaterStays(t *testing.T) {
	f := newFixture(t, friday)
	ctx := context.Background()

	if _, err := f.p.RunDailyMaintenance(ctx); err != nil {
		t.Fatal(err)
	}
	f.put(t, task.Task{ID: "t", Description: "for tomorrow", Status: task.StatusTomorrow})
	if _, err := f.p.RunDailyMaintenance(ctx); err != nil {
		t.Fatal(err)
	}
	if got := f.get(t, "t").Status; got != task.StatusTomorrow {
		t.Errorf("task filed for tomorrow during the day moved to %s", got)
	}
}
