package planner

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rnwolfe/rack/internal/settings"
	"github.com/rnwolfe/rack/internal/task"
)

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// BaseCapacity is the configured capacity for the day containing now.
func BaseCapacity(s settings.Settings, now time.Time) int {
	if IsWeekend(now) {
		return s.WeekendCapacity
	}
	return s.WeekdayCapacity
}

// UsableFromBase withholds the slack percentage from base.
func UsableFromBase(base, slackPercent int) int {
	return int(math.Round(float64(base) * (1 - float64(slackPercent)/100)))
}

// MinutesUntil returns whole minutes from now until endHour:00 today, never
// negative.
func MinutesUntil(now time.Time, endHour int) int {
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		Add(time.Duration(endHour) * time.Hour)
	if !end.After(now) {
		return 0
	}
	return int(end.Sub(now) / time.Minute)
}

// UsableCapacity returns today's plannable minutes. With includeOverride,
// an override stored for today replaces the computed value outright.
func (p *Planner) UsableCapacity(ctx context.Context, includeOverride bool) (int, error) {
	s, err := p.settings.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading settings: %w", err)
	}
	if includeOverride {
		o, err := p.settings.Override(ctx)
		if err != nil {
			return 0, fmt.Errorf("loading capacity override: %w", err)
		}
		if o != nil && o.Date == p.today() {
			return o.Minutes, nil
		}
	}
	return UsableFromBase(BaseCapacity(s, p.now()), s.SlackPercent), nil
}

// RemainingDayMinutes returns wall-clock minutes left before the workday ends.
func (p *Planner) RemainingDayMinutes(ctx context.Context) (int, error) {
	s, err := p.settings.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading settings: %w", err)
	}
	return MinutesUntil(p.now(), s.WorkdayEndHour), nil
}

// SetCapacityOverride caps today's usable capacity at minutes.
func (p *Planner) SetCapacityOverride(ctx context.Context, minutes int) error {
	return p.settings.SetOverride(ctx, p.today(), minutes)
}

// ClearCapacityOverride drops any capacity override.
func (p *Planner) ClearCapacityOverride(ctx context.Context) error {
	return p.settings.ClearOverride(ctx)
}

// CapacityReport summarizes today's time budget.
type CapacityReport struct {
	Date         string
	Weekend      bool
	Base         int
	SlackPercent int
	Usable       int  // after slack, or the override
	Overridden   bool // Usable comes from a same-day override
	Committed    int  // buffered minutes of today's open tasks
	Free         int  // Usable - Committed, may be negative
	Remaining    int  // wall-clock minutes until workday end
}

// Capacity returns the capacity snapshot for today.
func (p *Planner) Capacity(ctx context.Context) (CapacityReport, error) {
	s, err := p.settings.Load(ctx)
	if err != nil {
		return CapacityReport{}, fmt.Errorf("loading settings: %w", err)
	}
	now := p.now()
	r := CapacityReport{
		Date:         task.Day(now),
		Weekend:      IsWeekend(now),
		Base:         BaseCapacity(s, now),
		SlackPercent: s.SlackPercent,
		Remaining:    MinutesUntil(now, s.WorkdayEndHour),
	}
	r.Usable = UsableFromBase(r.Base, s.SlackPercent)
	o, err := p.settings.Override(ctx)
	if err != nil {
		return r, fmt.Errorf("loading capacity override: %w", err)
	}
	if o != nil && o.Date == r.Date {
		r.Usable = o.Minutes
		r.Overridden = true
	}

	all, err := p.allTasks(ctx)
	if err != nil {
		return r, err
	}
	buf := p.newBuffer()
	for _, t := range TodayItems(all, r.Date) {
		m, err := buf.minutesOrZero(ctx, t)
		if err != nil {
			return r, err
		}
		r.Committed += m
	}
	r.Free = r.Usable - r.Committed
	return r, nil
}
