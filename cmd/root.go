package cmd

import (
	"os"

	"github.com/rnwolfe/rack/internal/config"
	"github.com/rnwolfe/rack/internal/hook"
	"github.com/rnwolfe/rack/internal/logging"
	"github.com/rnwolfe/rack/internal/ui"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rack",
	Short: "Decide what deserves today",
	Long: `rack: rate your tasks, fit them to the time you have, and keep three in focus.

Run with no arguments for today's overview.`,
	RunE: hook.Wrap("rack", runDashboard),
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	cfg, err := config.Load()
	if err != nil {
		ui.Err("loading config: " + err.Error())
		os.Exit(1)
	}
	lg := logging.FromConfig(cfg, os.Stderr, "cli")

	// Hook failures are non-fatal; the CLI works without them.
	if err := registerHooks(hook.DefaultRegistry, lg); err != nil {
		lg.Warn("registering hooks", "err", err)
	}

	err = rootCmd.Execute()
	closeApp()
	if err != nil {
		ui.Err(err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(top3Cmd)
	rootCmd.AddCommand(rerackCmd)
	rootCmd.AddCommand(capacityCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(tipsCmd)
	rootCmd.AddCommand(versionCmd)
}
