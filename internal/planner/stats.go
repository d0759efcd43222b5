package planner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rnwolfe/rack/internal/task"
)

// Stats is a read-only snapshot of the task list and calibration history.
type Stats struct {
	Date           string
	Open           map[task.Status]int // top-level open tasks per status
	CompletedToday int
	MinutesToday   int // actual, else estimated, minutes of today's completions
	Overdue        int
	Streak         int
	LongestStreak  int
	Categories     []CategoryStats
	Top3           []task.Task
	Usable         int
}

// CategoryStats is the learned correction for one category.
type CategoryStats struct {
	Tag     string
	Factor  float64
	Samples int // entries inside the calibration window
}

// Stats computes the stats snapshot.
func (p *Planner) Stats(ctx context.Context) (Stats, error) {
	all, err := p.allTasks(ctx)
	if err != nil {
		return Stats{}, err
	}
	now := p.now()
	today := task.Day(now)
	st := Stats{
		Date: today,
		Open: make(map[task.Status]int),
		Top3: Top3Members(all, today),
	}

	var completions []time.Time
	for _, t := range all {
		if t.IsDone() {
			if t.CompletedAt != nil {
				completions = append(completions, *t.CompletedAt)
			}
			continue
		}
		if t.ParentID == "" {
			st.Open[t.Status]++
		}
		if task.IsOverdue(t, today) {
			st.Overdue++
		}
	}
	st.MinutesToday = p.consumedToday(all)
	for _, c := range completions {
		if task.Day(c.In(now.Location())) == today {
			st.CompletedToday++
		}
	}
	st.Streak, st.LongestStreak = CompletionStreak(completions, now)

	for _, tag := range task.Tags {
		entries, err := p.calibration.Recent(ctx, tag, CalibrationWindow)
		if err != nil {
			return st, fmt.Errorf("reading calibration for %s: %w", tag, err)
		}
		if len(entries) == 0 {
			continue
		}
		st.Categories = append(st.Categories, CategoryStats{
			Tag:     tag,
			Factor:  CalibrationFactor(entries),
			Samples: len(entries),
		})
	}

	if st.Usable, err = p.UsableCapacity(ctx, true); err != nil {
		return st, err
	}
	return st, nil
}

// CompletionStreak returns the current and longest runs of consecutive
// calendar days with at least one completion. The current streak stays alive
// through today if yesterday had a completion.
func CompletionStreak(completions []time.Time, now time.Time) (current, longest int) {
	seen := make(map[string]bool)
	var days []string
	for _, c := range completions {
		d := task.Day(c.In(now.Location()))
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return 0, 0
	}
	sort.Strings(days)

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if task.AddDays(days[i-1], 1) == days[i] {
			run++
			longest = max(longest, run)
		} else {
			run = 1
		}
	}

	today := task.Day(now)
	last := days[len(days)-1]
	if last != today && last != task.AddDays(today, -1) {
		return 0, longest
	}
	current = 1
	for i := len(days) - 1; i > 0; i-- {
		if task.AddDays(days[i-1], 1) != days[i] {
			break
		}
		current++
	}
	return current, longest
}
