package cmd

import (
	"fmt"

	"github.com/rnwolfe/rack/internal/hook"
	"github.com/rnwolfe/rack/internal/settings"
	"github.com/rnwolfe/rack/internal/ui"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Planner settings: capacity, slack, workday end",
	RunE:  hook.Wrap("settings.list", runSettingsList),
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsUnsetCmd)
	settingsCmd.AddCommand(settingsListCmd)
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a setting",
	Args:  cobra.ExactArgs(1),
	RunE:  hook.Wrap("settings.get", runSettingsGet),
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  hook.Wrap("settings.set", runSettingsSet),
}

var settingsUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Reset a setting to its default",
	Args:  cobra.ExactArgs(1),
	RunE:  hook.Wrap("settings.unset", runSettingsUnset),
}

var settingsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List every setting",
	RunE:    hook.Wrap("settings.list", runSettingsList),
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	k, ok := settings.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown setting %q; valid keys: %v", args[0], settings.KeyNames())
	}
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	s, err := a.settings.Load(ctx)
	if err != nil {
		return err
	}
	fmt.Println(k.Get(s))
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	if err := a.settings.Set(ctx, args[0], args[1]); err != nil {
		return err
	}
	s, err := a.settings.Load(ctx)
	if err != nil {
		return err
	}
	k, _ := settings.Lookup(args[0])
	ui.Ok(fmt.Sprintf("%s = %s", args[0], k.Get(s)))
	return nil
}

func runSettingsUnset(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	if err := a.settings.Unset(ctx, args[0]); err != nil {
		return err
	}
	k, _ := settings.Lookup(args[0])
	ui.Ok(fmt.Sprintf("%s reset to %s", args[0], k.DefaultStr))
	return nil
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	s, err := a.settings.Load(ctx)
	if err != nil {
		return err
	}

	ui.Header("Settings")
	for _, name := range settings.KeyNames() {
		k, _ := settings.Lookup(name)
		val := fmt.Sprintf("%-6s", k.Get(s))
		if k.Get(s) != k.DefaultStr {
			val = ui.Accent.Render(val)
		}
		fmt.Printf("  %s %s %s\n", ui.KeyStyle.Render(fmt.Sprintf("%-22s", name)), val, ui.Muted.Render(k.Desc))
	}

	o, err := a.settings.Override(ctx)
	if err != nil {
		return err
	}
	if o != nil {
		fmt.Println()
		ui.Kv("Override", fmt.Sprintf("%s on %s", ui.Minutes(o.Minutes), o.Date))
	}
	fmt.Println()
	return nil
}
