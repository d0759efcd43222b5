package cmd

import (
	"fmt"
	"strings"

	"github.com/rnwolfe/rack/internal/config"
	"github.com/rnwolfe/rack/internal/hook"
	"github.com/rnwolfe/rack/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and manage the config file",
	Long: `View and manage ~/.config/rack/config.toml: your name, logging and backups.

Planner settings such as capacity and slack live in the database; see
'rack settings'.`,
	RunE: hook.Wrap("config", runConfigShow),
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configListCmd)
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print configuration file path",
	RunE:  hook.Wrap("config.path", runConfigPath),
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long:  "Set a configuration value. Supported keys:\n" + configKeyHelp(),
	Args:  cobra.ExactArgs(2),
	RunE:  hook.Wrap("config.set", runConfigSet),
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  hook.Wrap("config.get", runConfigGet),
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Reset a configuration value to its default",
	Args:  cobra.ExactArgs(1),
	RunE:  hook.Wrap("config.unset", runConfigUnset),
}

var configListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List every configuration key",
	RunE:    hook.Wrap("config.list", runConfigList),
}

func configKeyHelp() string {
	var b strings.Builder
	for _, name := range config.ValidKeyNames() {
		entry, _ := config.LookupKey(name)
		fmt.Fprintf(&b, "  %-24s %s\n", name, entry.Desc)
	}
	return b.String()
}

func lookupConfigKey(key string) (*config.KeyEntry, error) {
	entry, ok := config.LookupKey(key)
	if !ok {
		return nil, fmt.Errorf("unknown config key %q; valid keys: %s",
			key, strings.Join(config.ValidKeyNames(), ", "))
	}
	return entry, nil
}

func runConfigPath(_ *cobra.Command, _ []string) error {
	fmt.Println(config.GetPaths().ConfigFile)
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	entry, err := lookupConfigKey(key)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := entry.Set(cfg, value); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	ui.Ok(fmt.Sprintf("%s = %s", key, entry.Get(cfg)))
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	entry, err := lookupConfigKey(args[0])
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	fmt.Println(entry.Get(cfg))
	return nil
}

func runConfigUnset(_ *cobra.Command, args []string) error {
	key := args[0]
	entry, err := lookupConfigKey(key)
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	entry.Unset(cfg)
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	ui.Ok(fmt.Sprintf("%s reset to %q", key, entry.DefaultStr))
	return nil
}

func runConfigList(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	ui.Header("Config keys")
	for _, name := range config.ValidKeyNames() {
		entry, _ := config.LookupKey(name)
		val := entry.Get(cfg)
		if val == "" {
			val = ui.Muted.Render("(unset)")
		}
		fmt.Printf("  %s %s %s\n", ui.KeyStyle.Render(fmt.Sprintf("%-24s", name)), ui.Muted.Render(fmt.Sprintf("%-6s", entry.Type)), val)
		fmt.Printf("  %-24s %s\n", "", ui.Muted.Render(entry.Desc))
	}
	fmt.Println()
	return nil
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	paths := config.GetPaths()

	name := cfg.User.Name
	if name == "" {
		name = ui.Muted.Render("(unset)")
	}
	backups := "off"
	if cfg.Backup.IsEnabled() {
		backups = fmt.Sprintf("keep %d, after %ds quiet", cfg.Backup.KeepOrDefault(), cfg.Backup.DebounceOrDefault())
	}

	ui.Header("Configuration")
	fmt.Println()
	ui.Kv("Name", name)
	ui.Kv("Log", fmt.Sprintf("%s / %s", cfg.Log.Level, cfg.Log.Format))
	ui.Kv("Backups", backups)
	fmt.Println()
	ui.Kv("Config", paths.ConfigFile)
	ui.Kv("Data", paths.DBFile)
	ui.Kv("Backups", cfg.Backup.DirOr(paths.BackupDir))
	fmt.Println()
	ui.Tip(fmt.Sprintf("Edit directly: %s", ui.Accent.Render("$EDITOR "+paths.ConfigFile)))
	fmt.Println()
	return nil
}
