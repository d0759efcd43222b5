package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rnwolfe/rack/internal/hook"
	"github.com/rnwolfe/rack/internal/planner"
	"github.com/rnwolfe/rack/internal/tips"
	"github.com/rnwolfe/rack/internal/ui"
	"github.com/spf13/cobra"
)

var todayCmd = &cobra.Command{
	Use:     "today",
	Aliases: []string{"td"},
	Short:   "Today's plan: Top 3, the rest, and how much fits",
	RunE:    hook.Wrap("today", runToday),
}

func runToday(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	return printToday(ctx, a)
}

func printToday(ctx context.Context, a *app) error {
	view, err := a.planner.Today(ctx)
	if err != nil {
		return err
	}
	capRep, err := a.planner.Capacity(ctx)
	if err != nil {
		return err
	}

	printMaintenance(a.maintenance)
	printCapacityLine(capRep)

	ui.Header(ui.IconTop3 + " Top 3")
	if len(view.Top3) == 0 {
		ui.Inf("Empty. " + ui.Accent.Render("rack top3 apply") + " picks for you.")
	} else if err := printTasks(ctx, a, view.Top3); err != nil {
		return err
	}

	if len(view.Items) > 0 {
		ui.Header(fmt.Sprintf("%s Today (%d)", ui.IconToday, len(view.Items)))
		if err := printTasks(ctx, a, view.Items); err != nil {
			return err
		}
	}
	if capRep.Free < 0 {
		ui.Tip(fmt.Sprintf("over by %s; %s shows what to drop.",
			ui.Minutes(-capRep.Free), ui.Accent.Render("rack rerack")))
	}
	fmt.Println()
	return nil
}

func printCapacityLine(r planner.CapacityReport) {
	label := ui.Minutes(r.Usable)
	if r.Overridden {
		label += ui.Muted.Render(" (override)")
	}
	ui.Kv("Capacity", fmt.Sprintf("%s %s / %s", ui.Bar(r.Committed, r.Usable, 20), ui.Minutes(r.Committed), label))
	free := ui.Minutes(r.Free) + " free"
	if r.Free < 0 {
		free = ui.Error.Render(ui.Minutes(-r.Free) + " over")
	}
	ui.Kv("Left", fmt.Sprintf("%s %s %s until end of day", free, ui.IconDot, ui.Minutes(r.Remaining)))
}

// printMaintenance reports what the activation pass changed, if anything.
func printMaintenance(r planner.MaintenanceReport) {
	if !r.Notable() {
		return
	}
	if r.RolledCount > 0 {
		ui.Inf(fmt.Sprintf("%s %d task(s) moved into today (due soon or scheduled).", ui.IconArrow, r.RolledCount))
	}
	if r.CarriedCount > 0 {
		ui.Inf(fmt.Sprintf("%s %d task(s) carried over from tomorrow.", ui.IconArrow, r.CarriedCount))
	}
	if r.DeferredCount > 0 {
		ui.Inf(fmt.Sprintf("%s %d task(s) left in tomorrow; today is full.", ui.IconArrow, r.DeferredCount))
	}
	if r.ClearedTop3Count > 0 {
		ui.Inf(fmt.Sprintf("%s Cleared %d stale Top 3 slot(s).", ui.IconArrow, r.ClearedTop3Count))
	}
	if r.OverdueCount > 0 {
		ui.Warn(fmt.Sprintf("%d overdue task(s).", r.OverdueCount))
	}
}

// runDashboard shows the at-a-glance overview when you just type `rack`.
func runDashboard(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}

	fmt.Println(ui.Greet(a.cfg.User.Name))
	ui.Kv(ui.IconToday+" Today", time.Now().Format("Monday, January 2"))
	if err := printToday(ctx, a); err != nil {
		return err
	}

	all, err := a.tasks.All(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		ui.Tip(fmt.Sprintf("%s to capture your first task.", ui.Accent.Render(`rack task add "something"`)))
	} else {
		ui.Tip(tips.Daily(time.Now()))
	}
	fmt.Println()
	return nil
}
