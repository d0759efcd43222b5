package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rnwolfe/rack/internal/hook"
	"github.com/rnwolfe/rack/internal/planner"
	"github.com/rnwolfe/rack/internal/task"
	"github.com/rnwolfe/rack/internal/tui"
	"github.com/rnwolfe/rack/internal/ui"
	"github.com/spf13/cobra"
)

var top3Cmd = &cobra.Command{
	Use:   "top3",
	Short: "Today's three focus tasks",
	Long: `The Top 3 is the short list of what deserves focus today.

Suggestions fill it with rated tasks for today (urgent first, then by score),
never more than one monster (a big or uncertain task) at a time and never
more than fits today's capacity. Tasks you add by hand are locked in and
survive later suggestions.`,
	RunE: hook.Wrap("top3.show", runTop3Show),
}

func init() {
	top3Cmd.AddCommand(top3ShowCmd)
	top3Cmd.AddCommand(top3SuggestCmd)
	top3Cmd.AddCommand(top3ApplyCmd)
	top3Cmd.AddCommand(top3SetCmd)
	top3Cmd.AddCommand(top3UnsetCmd)
	top3Cmd.AddCommand(top3PickCmd)
}

var top3ShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show today's Top 3",
	RunE:  hook.Wrap("top3.show", runTop3Show),
}

var top3SuggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Preview a suggested Top 3 without changing anything",
	RunE:  hook.Wrap("top3.suggest", runTop3Suggest),
}

var top3ApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Replace today's unlocked Top 3 with the suggestion",
	RunE:  hook.Wrap("top3.apply", runTop3Apply),
}

var top3SetCmd = &cobra.Command{
	Use:     "set <id>",
	Aliases: []string{"add", "lock"},
	Short:   "Lock a task into today's Top 3",
	Args:    cobra.ExactArgs(1),
	RunE:    hook.Wrap("top3.set", runTop3Set),
}

var top3UnsetCmd = &cobra.Command{
	Use:     "unset <id>",
	Aliases: []string{"rm", "drop"},
	Short:   "Remove a task from the Top 3",
	Args:    cobra.ExactArgs(1),
	RunE:    hook.Wrap("top3.unset", runTop3Unset),
}

var top3PickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Pick a Top 3 task interactively",
	RunE:  hook.Wrap("top3.pick", runTop3Pick),
}

func runTop3Show(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	view, err := a.planner.Today(ctx)
	if err != nil {
		return err
	}

	ui.Header(ui.IconTop3 + " Top 3")
	if len(view.Top3) == 0 {
		ui.Inf("No focus tasks yet.")
		ui.Tip(fmt.Sprintf("%s fills it for you.", ui.Accent.Render("rack top3 apply")))
		fmt.Println()
		return nil
	}
	if err := printTasks(ctx, a, view.Top3); err != nil {
		return err
	}
	fmt.Println()
	return nil
}

func runTop3Suggest(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	s, err := a.planner.SuggestTop3(ctx)
	if err != nil {
		return err
	}
	printSuggestion(ctx, a, s, "Suggested Top 3")
	ui.Tip(fmt.Sprintf("%s to use it.", ui.Accent.Render("rack top3 apply")))
	fmt.Println()
	return nil
}

func runTop3Apply(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	s, err := a.planner.ApplyTop3Suggestion(ctx)
	if err != nil {
		return err
	}
	printSuggestion(ctx, a, s, "Top 3 set")
	fmt.Println()
	return nil
}

func printSuggestion(ctx context.Context, a *app, s planner.Suggestion, title string) {
	ui.Header(ui.IconTop3 + " " + title)
	today := task.Day(a.planner.Now())
	for _, t := range s.Suggested {
		m, _, err := a.planner.BufferedMinutes(ctx, t)
		if err != nil {
			m = 0
		}
		fmt.Println(taskLine(t, today, m))
	}
	if s.Message != "" {
		fmt.Println()
		ui.Inf(s.Message)
	}
	ui.Kv("Capacity", fmt.Sprintf("%s %s / %s",
		ui.Bar(s.UsedMinutes, s.Capacity, 20), ui.Minutes(s.UsedMinutes), ui.Minutes(s.Capacity)))
}

func runTop3Set(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	id, err := resolveID(ctx, a, args[0])
	if err != nil {
		return err
	}
	return lockTop3(ctx, a, id)
}

// lockTop3 adds a task to the Top 3 by hand and explains a refusal.
func lockTop3(ctx context.Context, a *app, id string) error {
	t, err := a.planner.SetTop3(ctx, id, true, true)
	var ce *planner.ConstraintError
	if errors.As(err, &ce) {
		switch ce.Code {
		case planner.CodeMonsterLimit:
			return fmt.Errorf("%s %s", ui.IconMonster, ce.Message)
		case planner.CodeTop3Full:
			return fmt.Errorf("%s (%s)", ce.Message, ui.Accent.Render("rack top3 unset <id>"))
		}
	}
	if err != nil {
		return err
	}
	ui.Ok(fmt.Sprintf("%s #%d %s %s", ui.IconTop3, t.Top3Order+1, t.Description, ui.IconLock))
	return nil
}

func runTop3Unset(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	id, err := resolveID(ctx, a, args[0])
	if err != nil {
		return err
	}
	t, err := a.planner.SetTop3(ctx, id, false, true)
	if err != nil {
		return err
	}
	ui.Ok(fmt.Sprintf("Dropped from Top 3: %s", t.Description))
	return nil
}

func runTop3Pick(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	if !tui.IsTTY() {
		return fmt.Errorf("top3 pick needs a terminal; use %s instead", ui.Accent.Render("rack top3 set <id>"))
	}

	view, err := a.planner.Today(ctx)
	if err != nil {
		return err
	}
	var items []tui.TaskItem
	for _, t := range view.Items {
		if !task.IsRated(t) {
			continue
		}
		m, _, err := a.planner.BufferedMinutes(ctx, t)
		if err != nil {
			return err
		}
		items = append(items, tui.TaskItem{Task: t, Minutes: m})
	}
	if len(items) == 0 {
		ui.Inf("No rated tasks for today to pick from.")
		return nil
	}

	chosen, err := tui.PickTask(items, tui.WithTitle(ui.IconTop3+" Pick a focus task"))
	if err != nil {
		return err
	}
	if chosen == nil {
		return nil
	}
	return lockTop3(ctx, a, chosen.ID)
}
