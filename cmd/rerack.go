package cmd

import (
	"fmt"
	"strings"

	"github.com/rnwolfe/rack/internal/hook"
	"github.com/rnwolfe/rack/internal/planner"
	"github.com/rnwolfe/rack/internal/task"
	"github.com/rnwolfe/rack/internal/ui"
	"github.com/spf13/cobra"
)

var (
	rerackLock  []string
	rerackDefer bool
)

var rerackCmd = &cobra.Command{
	Use:   "rerack",
	Short: "Replan what still fits in today",
	Long: `Replan today against the time you have left.

The ceiling is the tighter of the remaining capacity budget and the minutes
left before the workday ends. Tasks due today, locked Top 3 tasks and any
--lock ids are protected and always kept; everything else is kept by value
per minute until the ceiling is hit. Each task that doesn't fit gets a reason.

Nothing changes unless --defer is given, which moves the tasks that don't fit
to tomorrow.`,
	RunE: hook.Wrap("rerack", runRerack),
}

func init() {
	rerackCmd.Flags().StringSliceVar(&rerackLock, "lock", nil, "Task ids to protect for this rerack")
	rerackCmd.Flags().BoolVar(&rerackDefer, "defer", false, "Move tasks that don't fit to tomorrow")
}

func runRerack(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}

	var locked []string
	for _, ref := range rerackLock {
		if strings.TrimSpace(ref) == "" {
			continue
		}
		id, err := resolveID(ctx, a, ref)
		if err != nil {
			return fmt.Errorf("--lock: %w", err)
		}
		locked = append(locked, id)
	}

	plan, err := a.planner.RerackForTimePressure(ctx, locked)
	if err != nil {
		return err
	}

	ui.Header("Rerack")
	printPlan(plan, task.Day(a.planner.Now()))
	if len(plan.Keep)+len(plan.Overflow)+len(plan.Unrated) == 0 {
		ui.Inf("Nothing planned for today.")
	}

	if rerackDefer && len(plan.Overflow) > 0 {
		if err := deferOverflow(cmd, a, plan); err != nil {
			return err
		}
	} else if len(plan.Overflow) > 0 {
		ui.Tip(fmt.Sprintf("%s moves what doesn't fit to tomorrow.", ui.Accent.Render("rack rerack --defer")))
	}
	fmt.Println()
	return nil
}

func deferOverflow(cmd *cobra.Command, a *app, plan planner.RerackPlan) error {
	ctx := commandContext(cmd)
	today := task.Day(a.planner.Now())
	horizon := task.AddDays(today, planner.ProtectedHorizonDays)
	moved, kept := 0, 0
	for _, o := range plan.Overflow {
		// Maintenance would pull these straight back into today.
		if o.Task.DueDate != "" && o.Task.DueDate <= horizon {
			kept++
			continue
		}
		u := task.Update{Status: task.Set(task.StatusTomorrow)}
		if o.Task.ScheduledFor != "" {
			u.ScheduledFor = task.Clear[string]()
		}
		if _, err := a.planner.UpdateTask(ctx, o.Task.ID, u); err != nil {
			return fmt.Errorf("deferring %s: %w", shortID(o.Task.ID), err)
		}
		if o.Task.HasValidTop3(today) {
			if _, err := a.planner.SetTop3(ctx, o.Task.ID, false, false); err != nil {
				return err
			}
		}
		moved++
	}
	fmt.Println()
	ui.Ok(fmt.Sprintf("Moved %d task(s) to tomorrow.", moved))
	if kept > 0 {
		ui.Inf(fmt.Sprintf("%d due within %d days stayed in today.", kept, planner.ProtectedHorizonDays))
	}
	return nil
}
