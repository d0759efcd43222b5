package cmd

import (
	"fmt"

	"github.com/rnwolfe/rack/internal/hook"
	"github.com/rnwolfe/rack/internal/task"
	"github.com/rnwolfe/rack/internal/ui"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Open work, today's progress, streaks and estimate calibration",
	Long: `Show a snapshot of where things stand.

Calibration compares estimates with actual time per category over the last
20 completions. A factor above 1.00 means that category runs long, and its
estimates are padded by that much when planning.`,
	RunE: hook.Wrap("stats", runStats),
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	st, err := a.planner.Stats(ctx)
	if err != nil {
		return fmt.Errorf("computing stats: %w", err)
	}

	ui.Header("Stats " + st.Date)
	ui.Kv("Done today", fmt.Sprintf("%d (%s)", st.CompletedToday, ui.Minutes(st.MinutesToday)))
	ui.Kv("Capacity", fmt.Sprintf("%s %s / %s", ui.Bar(st.MinutesToday, st.Usable, 20), ui.Minutes(st.MinutesToday), ui.Minutes(st.Usable)))
	streak := fmt.Sprintf("%d day(s)", st.Streak)
	if st.Streak >= 3 {
		streak = ui.IconFire + " " + streak
	}
	ui.Kv("Streak", fmt.Sprintf("%s %s best %d", streak, ui.IconDot, st.LongestStreak))
	if st.Overdue > 0 {
		ui.Kv("Overdue", ui.Error.Render(fmt.Sprintf("%d", st.Overdue)))
	}

	ui.Header("Open")
	for _, s := range task.Statuses {
		if s == task.StatusDone || st.Open[s] == 0 {
			continue
		}
		ui.Kv(string(s), fmt.Sprintf("%d", st.Open[s]))
	}

	if len(st.Top3) > 0 {
		ui.Header(ui.IconTop3 + " Top 3")
		today := task.Day(a.planner.Now())
		for _, t := range st.Top3 {
			fmt.Println(taskLine(t, today, 0))
		}
	}

	ui.Header("Calibration")
	if len(st.Categories) == 0 {
		ui.Inf("No history yet. Finish estimated tasks to start learning.")
	}
	for _, c := range st.Categories {
		factor := fmt.Sprintf("%.2f", c.Factor)
		switch {
		case c.Factor > 1.05:
			factor = ui.Warning.Render(factor)
		case c.Factor < 0.95:
			factor = ui.Success.Render(factor)
		}
		ui.Kv(c.Tag, fmt.Sprintf("%s %s %d sample(s)", factor, ui.IconDot, c.Samples))
	}
	fmt.Println()
	return nil
}
