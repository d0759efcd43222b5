package cmd

import (
	"fmt"
	"strings"

	"github.com/rnwolfe/rack/internal/hook"
	"github.com/rnwolfe/rack/internal/task"
	"github.com/rnwolfe/rack/internal/tui"
	"github.com/rnwolfe/rack/internal/ui"
	"github.com/spf13/cobra"
)

var findInteractive bool

var findCmd = &cobra.Command{
	Use:     "find [keyword]",
	Aliases: []string{"f", "search"},
	Short:   "Fuzzy-find open tasks",
	RunE:    hook.Wrap("find", runFind),
}

func init() {
	findCmd.Flags().BoolVarP(&findInteractive, "interactive", "i", false, "Pick a match interactively and show it")
}

func runFind(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	keyword := strings.Join(args, " ")

	matches, err := a.planner.FindTasks(ctx, keyword)
	if err != nil {
		return err
	}

	if findInteractive {
		if !tui.IsTTY() {
			return fmt.Errorf("--interactive needs a terminal")
		}
		items := make([]tui.TaskItem, len(matches))
		for i, m := range matches {
			minutes, _, err := a.planner.BufferedMinutes(ctx, m.Task)
			if err != nil {
				return err
			}
			items[i] = tui.TaskItem{Task: m.Task, Minutes: minutes}
		}
		chosen, err := tui.PickTask(items, tui.WithTitle("Find a task"))
		if err != nil || chosen == nil {
			return err
		}
		fmt.Println()
		if err := printTaskDetail(ctx, a, *chosen); err != nil {
			return err
		}
		fmt.Println()
		return nil
	}

	if len(matches) == 0 {
		ui.Inf(fmt.Sprintf("No open task matches %q.", keyword))
		return nil
	}
	tasks := make([]task.Task, len(matches))
	for i, m := range matches {
		tasks[i] = m.Task
	}
	fmt.Println()
	if err := printTasks(ctx, a, tasks); err != nil {
		return err
	}
	fmt.Println()
	return nil
}
