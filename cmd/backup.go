package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/rnwolfe/rack/internal/backup"
	"github.com/rnwolfe/rack/internal/hook"
	"github.com/rnwolfe/rack/internal/ui"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Rolling snapshot backups",
	Long: `rack writes a snapshot backup a little while after each change and keeps
the newest few (see 'rack config list' for backup.*). When the env var named by
backup.passphrase_env is set, backups are encrypted with age.`,
	RunE: hook.Wrap("backup.list", runBackupList),
}

func init() {
	backupCmd.AddCommand(backupNowCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
}

var backupNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Write a backup immediately",
	Args:  cobra.NoArgs,
	RunE:  hook.Wrap("backup.now", runBackupNow),
}

var backupListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List backups, newest first",
	Args:    cobra.NoArgs,
	RunE:    hook.Wrap("backup.list", runBackupList),
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore [name|path|latest]",
	Short: "Replace everything with a backup",
	Args:  cobra.MaximumNArgs(1),
	RunE:  hook.Wrap("backup.restore", runBackupRestore),
}

func runBackupNow(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	path, err := a.backup.Run(ctx)
	if err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	lock := ""
	if a.backup.Encrypted() {
		lock = " " + ui.IconLock
	}
	ui.Ok(fmt.Sprintf("%s Backed up to %s%s", ui.IconBackup, path, lock))
	return nil
}

func runBackupList(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	entries, err := a.backup.List()
	if err != nil {
		return err
	}

	ui.Header(ui.IconBackup + " Backups")
	if len(entries) == 0 {
		ui.Inf("No backups yet.")
		ui.Tip(fmt.Sprintf("%s writes one now.", ui.Accent.Render("rack backup now")))
		fmt.Println()
		return nil
	}
	for _, e := range entries {
		lock := ""
		if e.Encrypted {
			lock = " " + ui.IconLock
		}
		fmt.Printf("  %s  %s  %s%s\n",
			e.Name,
			ui.Muted.Render(humanize.Time(e.Time)),
			ui.Muted.Render(humanize.Bytes(uint64(e.Size))),
			lock)
	}
	fmt.Println()
	ui.Kv("Directory", a.backup.Dir())
	fmt.Println()
	return nil
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}

	name := "latest"
	if len(args) == 1 {
		name = args[0]
	}
	path, err := a.backup.Resolve(name)
	if errors.Is(err, backup.ErrNoBackups) {
		return fmt.Errorf("%w in %s", err, a.backup.Dir())
	}
	if err != nil {
		return err
	}

	rep, err := a.backup.Restore(ctx, path, a.importer)
	if errors.Is(err, backup.ErrWrongPassphrase) {
		return fmt.Errorf("%w; set the passphrase in $%s", err, a.cfg.Backup.PassphraseEnv)
	}
	if err != nil {
		return err
	}
	ui.Inf(fmt.Sprintf("Restored from %s", filepath.Base(path)))
	printImportReport(rep)
	return nil
}
