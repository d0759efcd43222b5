package planner

import (
	"context"
	"fmt"

	"github.com/rnwolfe/rack/internal/task"
)

// MaxTrackedMinutes bounds elapsed time taken from a start stamp. Longer
// spans are assumed to be a forgotten timer.
const MaxTrackedMinutes = 480

// CompleteOptions tune CompleteTask.
type CompleteOptions struct {
	Actual         *int // explicit minutes spent
	SkipRecurrence bool
}

// Completion is the outcome of completing a task.
type Completion struct {
	Task       task.Task
	Next       *task.Task // spawned occurrence of a recurring task
	Actual     int
	Calibrated bool
}

// CompleteTask marks a task done. Actual time comes from opts, else the
// elapsed time since StartTask (1 to MaxTrackedMinutes), else the estimate.
// A calibration sample is recorded when both estimate and actual are known,
// and a recurring task spawns its next occurrence.
func (p *Planner) CompleteTask(ctx context.Context, id string, opts CompleteOptions) (Completion, error) {
	t, err := p.tasks.Get(ctx, id)
	if err != nil {
		return Completion{}, err
	}
	if t.IsDone() {
		return Completion{}, &task.ValidationError{Field: "status", Reason: "task is already done"}
	}
	now := p.now()

	actual := 0
	switch {
	case opts.Actual != nil:
		actual = max(0, *opts.Actual)
	case t.StartedAt != nil && elapsedInRange(int(now.Sub(*t.StartedAt).Minutes())):
		actual = int(now.Sub(*t.StartedAt).Minutes())
	case t.Estimate != nil:
		actual = *t.Estimate
	}

	c := Completion{Actual: actual}
	if t.Estimate != nil && *t.Estimate > 0 && actual > 0 {
		if err := p.AddCalibrationEntry(ctx, t.CategoryTag(), *t.Estimate, actual); err != nil {
			return c, fmt.Errorf("recording calibration: %w", err)
		}
		c.Calibrated = true
	}

	if t.Recurrence != "" && !opts.SkipRecurrence {
		next := *t
		next.ID = task.NewID()
		next.Status = task.StatusNext
		next.ClearTop3()
		next.ScheduledFor = task.Day(task.NextOccurrence(t.Recurrence, t.RecurrenceDay, now))
		next.DueDate = ""
		next.Actual = nil
		next.CompletedAt = nil
		next.StartedAt = nil
		next.CreatedAt = now
		if err := p.put(ctx, &next); err != nil {
			return c, err
		}
		c.Next = &next
	}

	t.Status = task.StatusDone
	t.CompletedAt = &now
	t.Actual = &actual
	t.StartedAt = nil
	t.ClearTop3()
	if err := p.put(ctx, t); err != nil {
		return c, err
	}
	c.Task = *t
	return c, nil
}

func elapsedInRange(m int) bool {
	return m >= 1 && m <= MaxTrackedMinutes
}
