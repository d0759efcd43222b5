package planner

import (
	"context"
	"fmt"
	"sort"

	"github.com/rnwolfe/rack/internal/task"
)

// ProtectedHorizonDays is how far ahead a due date pulls a task into today.
const ProtectedHorizonDays = 7

// MaintenanceReport counts what daily maintenance changed.
type MaintenanceReport struct {
	OverdueCount     int
	RolledCount      int // promoted to today by due or scheduled date
	DeferredCount    int // tomorrow tasks left out for lack of capacity
	ClearedTop3Count int
	CarriedCount     int // tomorrow tasks promoted within capacity
}

// RunDailyMaintenance rolls the plan forward to today. It is safe to call on
// every activation: a second run on the same day changes nothing.
//
// Tasks due within a week or scheduled for today or earlier are promoted to
// today regardless of capacity. Stale unlocked Top-3 memberships are cleared
// when auto-clear is on. Once per day, tomorrow's unscheduled tasks are
// carried into today by priority while they fit the remaining capacity.
func (p *Planner) RunDailyMaintenance(ctx context.Context) (MaintenanceReport, error) {
	var rep MaintenanceReport
	s, err := p.settings.Load(ctx)
	if err != nil {
		return rep, fmt.Errorf("loading settings: %w", err)
	}
	all, err := p.allTasks(ctx)
	if err != nil {
		return rep, err
	}
	today := p.today()
	horizon := task.AddDays(today, ProtectedHorizonDays)

	var carry []task.Task
	for i := range all {
		t := &all[i]
		if t.IsDone() {
			continue
		}
		if task.IsOverdue(*t, today) {
			rep.OverdueCount++
		}

		changed := false
		if t.Status != task.StatusToday &&
			((t.DueDate != "" && t.DueDate <= horizon) || (t.ScheduledFor != "" && t.ScheduledFor <= today)) {
			t.Status = task.StatusToday
			t.ScheduledFor = today
			rep.RolledCount++
			changed = true
		}
		if s.AutoClearTop3 && t.IsTop3 && t.Top3Date != today && !t.Top3Locked {
			t.ClearTop3()
			rep.ClearedTop3Count++
			changed = true
		}
		if changed {
			if err := p.put(ctx, t); err != nil {
				return rep, err
			}
		}
		if t.Status == task.StatusTomorrow && t.ScheduledFor == "" {
			carry = append(carry, *t)
		}
	}

	if !s.AutoRollScheduled {
		return rep, nil
	}
	last, err := p.settings.LastRollover(ctx)
	if err != nil {
		return rep, fmt.Errorf("reading last rollover: %w", err)
	}
	if last == today {
		return rep, nil
	}
	if err := p.carryOver(ctx, all, carry, today, &rep); err != nil {
		return rep, err
	}
	if err := p.settings.SetLastRollover(ctx, today); err != nil {
		return rep, fmt.Errorf("recording rollover: %w", err)
	}
	return rep, nil
}

// carryOver promotes tomorrow's candidates by priority while they fit the
// capacity left after today's committed work. Unestimated tasks always fit.
func (p *Planner) carryOver(ctx context.Context, all, carry []task.Task, today string, rep *MaintenanceReport) error {
	if len(carry) == 0 {
		return nil
	}
	usable, err := p.UsableCapacity(ctx, true)
	if err != nil {
		return err
	}
	buf := p.newBuffer()
	remaining := usable
	for _, t := range TodayItems(all, today) {
		m, err := buf.minutesOrZero(ctx, t)
		if err != nil {
			return err
		}
		remaining -= m
	}

	sort.SliceStable(carry, func(i, j int) bool {
		return task.PriorityScore(carry[i]) > task.PriorityScore(carry[j])
	})
	for _, t := range carry {
		m, ok, err := buf.minutes(ctx, t)
		if err != nil {
			return err
		}
		if ok && m > remaining {
			rep.DeferredCount++
			continue
		}
		remaining -= m
		t.Status = task.StatusToday
		if err := p.put(ctx, &t); err != nil {
			return err
		}
		rep.CarriedCount++
	}
	return nil
}

// Notable reports whether the run changed or found anything worth showing.
func (r MaintenanceReport) Notable() bool {
	return r.OverdueCount+r.RolledCount+r.DeferredCount+r.ClearedTop3Count+r.CarriedCount > 0
}
