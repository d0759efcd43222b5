package cmd

import (
	"fmt"
	"time"

	"github.com/rnwolfe/rack/internal/hook"
	"github.com/rnwolfe/rack/internal/tips"
	"github.com/rnwolfe/rack/internal/ui"
	"github.com/spf13/cobra"
)

var tipsShowAll bool

var tipsCmd = &cobra.Command{
	Use:   "tips",
	Short: "Discover what rack can do",
	Long:  `Show short tips for getting the most out of rack.`,
	RunE:  hook.Wrap("tips", runTips),
}

func init() {
	tipsCmd.Flags().BoolVarP(&tipsShowAll, "all", "a", false, "List all tips")
}

func runTips(_ *cobra.Command, _ []string) error {
	if tipsShowAll {
		fmt.Println()
		fmt.Println(ui.Title.Render("  rack tips"))
		fmt.Println()
		for _, tip := range tips.All() {
			fmt.Printf("  %s %s\n", ui.Accent.Render("✦"), ui.Muted.Render(tip))
		}
		fmt.Println()
		return nil
	}

	tip := tips.Daily(time.Now())
	fmt.Println()
	ui.Tip(tip)
	fmt.Println()
	fmt.Printf("  %s\n", ui.Muted.Render("Run `rack tips --all` to see all tips."))
	fmt.Println()
	return nil
}
