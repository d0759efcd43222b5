package planner

import (
	"context"
	"sort"

	"github.com/rnwolfe/rack/internal/task"
)

// Rerack tuning.
const (
	// DensityBoostMinutes weights the short-task bonus in Density.
	DensityBoostMinutes = 10.0
	// LowDensity is the value per minute below which an overflow is
	// explained as low impact.
	LowDensity = 0.15
	// TooLongShare is the share of the ceiling above which an overflow is
	// explained as too long.
	TooLongShare = 0.7
)

// Overflow reasons.
const (
	ReasonLowDensity = "low impact per minute"
	ReasonTooLong    = "too long for remaining time"
	ReasonOutranked  = "outranked by higher-value work"
	ReasonOutOfTime  = "does not fit before the end of the day"
)

// Density is the value-per-minute score used to rank flexible work. Zero
// minutes falls back to the raw priority.
func Density(priority, minutes int) float64 {
	if minutes <= 0 {
		return float64(priority)
	}
	m := float64(minutes)
	return float64(priority) / m * (1 + DensityBoostMinutes/m)
}

// RerackInput is a rated task entering the rerack core.
type RerackInput struct {
	Task      task.Task
	Minutes   int
	Protected bool
}

// RerackItem is a task the plan keeps.
type RerackItem struct {
	Task      task.Task
	Minutes   int
	Protected bool
	Density   float64
}

// OverflowItem is a task that did not fit, with the reason why.
type OverflowItem struct {
	Task    task.Task
	Minutes int
	Density float64
	Reason  string
}

// RerackPlan is the outcome of a rerack. Nothing is persisted.
type RerackPlan struct {
	Capacity          int // ceiling the plan was built against
	Keep              []RerackItem
	Overflow          []OverflowItem
	Unrated           []task.Task
	UsedMinutes       int // protected + flexible kept
	ProtectedMinutes  int
	ProtectedOverflow bool // protected work alone exceeds Capacity
	OverrunMinutes    int  // actual over estimate for the completed task
}

// Rerack fits rated work into capacity. Protected tasks are always kept and
// charged first; flexible tasks are then added by density until capacity
// runs out. Unrated tasks are passed through untouched.
func Rerack(capacity int, rated []RerackInput, unrated []task.Task, defaultReason string) RerackPlan {
	plan := RerackPlan{Capacity: capacity, Unrated: unrated}

	var flexible []RerackItem
	for _, in := range rated {
		item := RerackItem{
			Task:      in.Task,
			Minutes:   in.Minutes,
			Protected: in.Protected,
			Density:   Density(task.PriorityScore(in.Task), in.Minutes),
		}
		if in.Protected {
			plan.Keep = append(plan.Keep, item)
			plan.ProtectedMinutes += in.Minutes
			continue
		}
		flexible = append(flexible, item)
	}
	plan.ProtectedOverflow = plan.ProtectedMinutes > capacity
	plan.UsedMinutes = plan.ProtectedMinutes

	sort.SliceStable(flexible, func(i, j int) bool { return flexible[i].Density > flexible[j].Density })

	remaining := capacity - plan.ProtectedMinutes
	for _, item := range flexible {
		if item.Minutes <= remaining {
			plan.Keep = append(plan.Keep, item)
			plan.UsedMinutes += item.Minutes
			remaining -= item.Minutes
			continue
		}
		reason := defaultReason
		switch {
		case item.Density < LowDensity:
			reason = ReasonLowDensity
		case float64(item.Minutes) > TooLongShare*float64(capacity):
			reason = ReasonTooLong
		}
		plan.Overflow = append(plan.Overflow, OverflowItem{
			Task:    item.Task,
			Minutes: item.Minutes,
			Density: item.Density,
			Reason:  reason,
		})
	}
	return plan
}

// RerackAfterCompletion replans the rest of today after completedID is done.
// The ceiling is usable capacity less the minutes already spent on tasks
// completed today.
func (p *Planner) RerackAfterCompletion(ctx context.Context, completedID string, lockedIDs []string) (RerackPlan, error) {
	all, err := p.allTasks(ctx)
	if err != nil {
		return RerackPlan{}, err
	}
	usable, err := p.UsableCapacity(ctx, true)
	if err != nil {
		return RerackPlan{}, err
	}
	ceiling := max(0, usable-p.consumedToday(all))

	plan, err := p.rerack(ctx, all, completedID, lockedIDs, ceiling, ReasonOutranked)
	if err != nil {
		return plan, err
	}
	for _, t := range all {
		if t.ID == completedID && t.Actual != nil && t.Estimate != nil {
			plan.OverrunMinutes = max(0, *t.Actual-*t.Estimate)
		}
	}
	return plan, nil
}

// RerackForTimePressure replans today against the tighter of the remaining
// time budget and the wall-clock minutes left before the workday ends.
func (p *Planner) RerackForTimePressure(ctx context.Context, lockedIDs []string) (RerackPlan, error) {
	all, err := p.allTasks(ctx)
	if err != nil {
		return RerackPlan{}, err
	}
	usable, err := p.UsableCapacity(ctx, true)
	if err != nil {
		return RerackPlan{}, err
	}
	left, err := p.RemainingDayMinutes(ctx)
	if err != nil {
		return RerackPlan{}, err
	}
	ceiling := max(0, min(usable-p.consumedToday(all), left))
	return p.rerack(ctx, all, "", lockedIDs, ceiling, ReasonOutOfTime)
}

// consumedToday sums minutes spent on tasks completed today, by actual
// time, falling back to the estimate.
func (p *Planner) consumedToday(all []task.Task) int {
	today := p.today()
	var total int
	for _, t := range all {
		if !t.IsDone() || t.CompletedAt == nil || task.Day(t.CompletedAt.In(p.now().Location())) != today {
			continue
		}
		switch {
		case t.Actual != nil:
			total += *t.Actual
		case t.Estimate != nil:
			total += *t.Estimate
		}
	}
	return total
}

func (p *Planner) rerack(ctx context.Context, all []task.Task, exclude string, lockedIDs []string, ceiling int, defaultReason string) (RerackPlan, error) {
	today := p.today()
	locked := make(map[string]bool, len(lockedIDs))
	for _, id := range lockedIDs {
		locked[id] = true
	}

	remaining := TodayItems(all, today)
	task.SortByPriority(remaining, today)

	buf := p.newBuffer()
	var rated []RerackInput
	var unrated []task.Task
	for _, t := range remaining {
		if t.ID == exclude {
			continue
		}
		if !task.IsRated(t) {
			unrated = append(unrated, t)
			continue
		}
		m, err := buf.minutesOrZero(ctx, t)
		if err != nil {
			return RerackPlan{}, err
		}
		rated = append(rated, RerackInput{
			Task:    t,
			Minutes: m,
			Protected: (t.DueDate != "" && t.DueDate <= today) ||
				(t.HasValidTop3(today) && t.Top3Locked) ||
				locked[t.ID],
		})
	}
	return Rerack(ceiling, rated, unrated, defaultReason), nil
}
