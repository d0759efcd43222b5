package planner

import (
	"context"
	"sort"

	"github.com/rnwolfe/rack/internal/task"
)

// InToday reports whether t belongs to today's working set: a top-level,
// open task that is either in the today bucket or scheduled for today or
// earlier.
func InToday(t task.Task, today string) bool {
	if t.ParentID != "" || t.IsDone() {
		return false
	}
	return t.Status == task.StatusToday || (t.ScheduledFor != "" && t.ScheduledFor <= today)
}

// TodayItems filters tasks down to today's working set, preserving order.
func TodayItems(tasks []task.Task, today string) []task.Task {
	var out []task.Task
	for _, t := range tasks {
		if InToday(t, today) {
			out = append(out, t)
		}
	}
	return out
}

// Top3Members returns tasks holding valid Top-3 membership for today,
// ordered by their Top-3 slot.
func Top3Members(tasks []task.Task, today string) []task.Task {
	var out []task.Task
	for _, t := range tasks {
		if t.HasValidTop3(today) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Top3Order < out[j].Top3Order })
	return out
}

// TodayView is the "today" screen: the Top-3 focus set followed by the rest
// of today's tasks in priority order.
type TodayView struct {
	Date  string
	Top3  []task.Task
	Items []task.Task // today's tasks not in Top3, tiered sort
}

// Today returns today's working set.
func (p *Planner) Today(ctx context.Context) (TodayView, error) {
	all, err := p.allTasks(ctx)
	if err != nil {
		return TodayView{}, err
	}
	today := p.today()
	v := TodayView{Date: today, Top3: Top3Members(all, today)}
	for _, t := range TodayItems(all, today) {
		if !t.HasValidTop3(today) {
			v.Items = append(v.Items, t)
		}
	}
	task.SortByPriority(v.Items, today)
	return v, nil
}
