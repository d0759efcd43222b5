package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rnwolfe/rack/internal/planner"
	"github.com/rnwolfe/rack/internal/task"
	"github.com/rnwolfe/rack/internal/ui"
)

// shortIDLen is how much of a task id is shown and accepted as a prefix.
const shortIDLen = 8

// minPrefixLen is the shortest id prefix resolveID accepts.
const minPrefixLen = 4

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// resolveID maps a full id or a unique id prefix to a task id.
func resolveID(ctx context.Context, a *app, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("missing task id; use %s to see ids", ui.Accent.Render("rack task list"))
	}
	if _, err := a.tasks.Get(ctx, ref); err == nil {
		return ref, nil
	} else if !errors.Is(err, task.ErrNotFound) {
		return "", err
	}
	if len(ref) < minPrefixLen {
		return "", fmt.Errorf("%q: %w (ids need at least %d characters)", ref, task.ErrNotFound, minPrefixLen)
	}

	all, err := a.tasks.All(ctx)
	if err != nil {
		return "", err
	}
	var hits []string
	for _, t := range all {
		if strings.HasPrefix(t.ID, ref) {
			hits = append(hits, t.ID)
		}
	}
	switch len(hits) {
	case 0:
		return "", fmt.Errorf("%q: %w", ref, task.ErrNotFound)
	case 1:
		return hits[0], nil
	}
	return "", fmt.Errorf("id %q is ambiguous (%d tasks match); use more characters", ref, len(hits))
}

// taskLine renders a task as a single list row.
func taskLine(t task.Task, today string, minutes int) string {
	mark := " "
	switch {
	case t.IsDone():
		mark = ui.Success.Render(ui.IconDone)
	case t.HasValidTop3(today):
		mark = ui.Accent.Render(ui.IconTop3)
	case task.IsOverdue(t, today):
		mark = ui.Error.Render("!")
	}

	desc := t.Description
	if t.IsDone() {
		desc = ui.Muted.Render(desc)
	}

	var extra []string
	if s, ok := task.CalculateScore(t); ok {
		extra = append(extra, ui.Muted.Render(fmt.Sprintf("%d", s.Priority)))
	} else {
		extra = append(extra, ui.Muted.Render("unrated"))
	}
	for _, b := range task.Badges(t) {
		extra = append(extra, ui.Badge(string(b)))
	}
	if minutes > 0 {
		extra = append(extra, ui.Subtitle.Render(ui.Minutes(minutes)))
	}
	if t.DueDate != "" {
		due := "due " + t.DueDate
		if t.DueDate <= today && !t.IsDone() {
			due = ui.Error.Render(due)
		} else {
			due = ui.Muted.Render(due)
		}
		extra = append(extra, due)
	}
	if t.Recurrence != "" {
		extra = append(extra, ui.Muted.Render(ui.IconRecur+" "+task.RecurrenceLabel(t.Recurrence, t.RecurrenceDay)))
	}
	if t.Top3Locked && t.HasValidTop3(today) {
		extra = append(extra, ui.IconLock)
	}

	return fmt.Sprintf("  %s %s  %s  %s", mark, ui.Muted.Render(shortID(t.ID)), desc, strings.Join(extra, " "))
}

// printTasks prints tasks with their buffered minutes.
func printTasks(ctx context.Context, a *app, tasks []task.Task) error {
	today := task.Day(a.planner.Now())
	for _, t := range tasks {
		m, _, err := a.planner.BufferedMinutes(ctx, t)
		if err != nil {
			return err
		}
		fmt.Println(taskLine(t, today, m))
	}
	return nil
}

func printTaskDetail(ctx context.Context, a *app, t task.Task) error {
	today := task.Day(a.planner.Now())
	fmt.Println(taskLine(t, today, 0))
	fmt.Println()
	ui.Kv("ID", t.ID)
	ui.Kv("Status", string(t.Status))
	ui.Kv("Tag", t.CategoryTag())
	if s, ok := task.CalculateScore(t); ok {
		ui.Kv("Score", fmt.Sprintf("%d (ACE %d + LMT %d)", s.Priority, s.ACE, s.LMT))
	}
	ui.Kv("Ratings", ratingsLine(t.Ratings))
	if t.Estimate != nil {
		m, _, err := a.planner.BufferedMinutes(ctx, t)
		if err != nil {
			return err
		}
		conf := string(t.Confidence)
		if conf == "" {
			conf = "unset"
		}
		ui.Kv("Estimate", fmt.Sprintf("%s (%s confidence, %s buffered)", ui.Minutes(*t.Estimate), conf, ui.Minutes(m)))
	}
	if t.Actual != nil {
		ui.Kv("Actual", ui.Minutes(*t.Actual))
	}
	if t.ScheduledFor != "" {
		ui.Kv("Scheduled", t.ScheduledFor)
	}
	if t.DueDate != "" {
		ui.Kv("Due", t.DueDate)
	}
	if t.Recurrence != "" {
		ui.Kv("Repeats", task.RecurrenceLabel(t.Recurrence, t.RecurrenceDay))
	}
	if t.ParentID != "" {
		ui.Kv("Parent", shortID(t.ParentID))
	}
	if t.IsTop3 {
		lock := ""
		if t.Top3Locked {
			lock = " " + ui.IconLock
		}
		ui.Kv("Top 3", fmt.Sprintf("#%d on %s%s", t.Top3Order+1, t.Top3Date, lock))
	}
	if t.StartedAt != nil {
		ui.Kv("Started", t.StartedAt.Local().Format("15:04"))
	}
	ui.Kv("Created", t.CreatedAt.Local().Format("2006-01-02 15:04"))
	if t.CompletedAt != nil {
		ui.Kv("Completed", t.CompletedAt.Local().Format("2006-01-02 15:04"))
	}

	subs, err := a.planner.Subtasks(ctx, t.ID)
	if err != nil {
		return err
	}
	if len(subs) > 0 {
		fmt.Println()
		ui.Puts(ui.Subtitle.Render("  Subtasks"))
		if err := printTasks(ctx, a, subs); err != nil {
			return err
		}
	}
	return nil
}

func ratingsLine(r task.Ratings) string {
	v := func(p *int) string {
		if p == nil {
			return "-"
		}
		return fmt.Sprintf("%d", *p)
	}
	return fmt.Sprintf("A %s  C %s  E %s  ·  L %s  M %s  T %s",
		v(r.Impact), v(r.Consequences), v(r.Friction),
		v(r.Leverage), v(r.EnergyMatch), v(r.TimeCriticality))
}

// printPlan renders a rerack plan.
func printPlan(plan planner.RerackPlan, today string) {
	ui.Kv("Capacity", fmt.Sprintf("%s %s / %s",
		ui.Bar(plan.UsedMinutes, plan.Capacity, 20),
		ui.Minutes(plan.UsedMinutes), ui.Minutes(plan.Capacity)))
	if plan.ProtectedOverflow {
		ui.Warn(fmt.Sprintf("Protected work alone needs %s, more than the %s left.",
			ui.Minutes(plan.ProtectedMinutes), ui.Minutes(plan.Capacity)))
	}
	if plan.OverrunMinutes > 0 {
		ui.Inf(fmt.Sprintf("That one ran %s over its estimate.", ui.Minutes(plan.OverrunMinutes)))
	}

	if len(plan.Keep) > 0 {
		fmt.Println()
		ui.Puts(ui.Subtitle.Render("  Keep"))
		for _, k := range plan.Keep {
			line := taskLine(k.Task, today, k.Minutes)
			if k.Protected && !(k.Task.Top3Locked && k.Task.HasValidTop3(today)) {
				line += " " + ui.IconLock
			}
			fmt.Println(line)
		}
	}
	if len(plan.Overflow) > 0 {
		fmt.Println()
		ui.Puts(ui.Subtitle.Render("  Doesn't fit"))
		for _, o := range plan.Overflow {
			fmt.Println(taskLine(o.Task, today, o.Minutes))
			fmt.Printf("      %s %s\n", ui.IconArrow, ui.Muted.Render(o.Reason))
		}
	}
	if len(plan.Unrated) > 0 {
		fmt.Println()
		ui.Puts(ui.Subtitle.Render("  Unrated"))
		for _, t := range plan.Unrated {
			fmt.Println(taskLine(t, today, 0))
		}
	}
}
