package cmd

import (
	"fmt"

	"github.com/rnwolfe/rack/internal/hook"
	"github.com/rnwolfe/rack/internal/ui"
	"github.com/spf13/cobra"
)

var capacityCmd = &cobra.Command{
	Use:     "capacity",
	Aliases: []string{"cap"},
	Short:   "Today's time budget",
	RunE:    hook.Wrap("capacity.show", runCapacityShow),
}

func init() {
	capacityCmd.AddCommand(capacitySetCmd)
	capacityCmd.AddCommand(capacityClearCmd)
}

var capacitySetCmd = &cobra.Command{
	Use:   "set <minutes>",
	Short: "Override today's usable capacity (e.g. 240 or 4h)",
	Args:  cobra.ExactArgs(1),
	RunE:  hook.Wrap("capacity.set", runCapacitySet),
}

var capacityClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop today's capacity override",
	RunE:  hook.Wrap("capacity.clear", runCapacityClear),
}

func runCapacityShow(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	r, err := a.planner.Capacity(ctx)
	if err != nil {
		return err
	}

	day := "Weekday"
	if r.Weekend {
		day = "Weekend"
	}
	ui.Header("Capacity " + r.Date)
	ui.Kv(day, ui.Minutes(r.Base))
	ui.Kv("Slack", fmt.Sprintf("%d%%", r.SlackPercent))
	fmt.Println()
	printCapacityLine(r)
	fmt.Println()
	return nil
}

func runCapacitySet(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	m, err := parseMinutes(args[0])
	if err != nil {
		return err
	}
	if err := a.planner.SetCapacityOverride(ctx, m); err != nil {
		return err
	}
	ui.Ok(fmt.Sprintf("Capacity for today set to %s", ui.Minutes(m)))
	return nil
}

func runCapacityClear(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	if err := a.planner.ClearCapacityOverride(ctx); err != nil {
		return err
	}
	ui.Ok("Capacity override cleared")
	return nil
}
