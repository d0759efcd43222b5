package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/rnwolfe/rack/internal/backup"
	"github.com/rnwolfe/rack/internal/config"
	"github.com/rnwolfe/rack/internal/hook"
	"github.com/rnwolfe/rack/internal/settings"
	"github.com/rnwolfe/rack/internal/store"
	"github.com/rnwolfe/rack/internal/ui"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check your rack setup for problems",
	Long:  `Run a suite of health checks and report what's working (and what isn't).`,
	RunE:  hook.Wrap("doctor", runDoctor),
}

// checkResult holds the outcome of a single health check.
type checkResult struct {
	name    string
	ok      bool
	detail  string
	fixHint string
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	cfg, err := config.Load()
	if err != nil {
		cfg = nil
	}

	results := []checkResult{
		checkConfig(),
		checkStore(ctx),
		checkBackups(cfg),
		checkEncryption(cfg),
	}

	fmt.Println()

	allPassed := true
	for _, r := range results {
		printCheck(r)
		if !r.ok {
			allPassed = false
		}
	}

	fmt.Println()

	if !allPassed {
		return fmt.Errorf("one or more checks failed; see suggestions above")
	}
	return nil
}

func printCheck(r checkResult) {
	label := fmt.Sprintf("%-16s", r.name)
	if r.ok {
		icon := ui.Success.Render(ui.IconOk)
		fmt.Printf("  %s %s %s\n", icon, ui.KeyStyle.Render(label), ui.Muted.Render(r.detail))
	} else {
		icon := ui.Error.Render(ui.IconError)
		fmt.Printf("  %s %s %s\n", icon, ui.KeyStyle.Render(label), r.detail)
		if r.fixHint != "" {
			fmt.Printf("  %s %s %s\n", "  ", "                ", ui.Muted.Render(ui.IconArrow+" "+r.fixHint))
		}
	}
}

func checkConfig() checkResult {
	paths := config.GetPaths()
	if !config.Initialized() {
		return checkResult{
			name:   "Config",
			ok:     true,
			detail: "no config file, using defaults",
		}
	}
	if _, err := config.Load(); err != nil {
		return checkResult{
			name:    "Config",
			ok:      false,
			detail:  fmt.Sprintf("parse error: %v", err),
			fixHint: fmt.Sprintf("Check %s for syntax errors", paths.ConfigFile),
		}
	}
	return checkResult{
		name:   "Config",
		ok:     true,
		detail: paths.ConfigFile + " found and valid",
	}
}

// checkStore opens the database, then checks the planner settings it holds.
func checkStore(ctx context.Context) checkResult {
	db, err := store.Open()
	if err != nil {
		return checkResult{
			name:    "Store",
			ok:      false,
			detail:  fmt.Sprintf("cannot open database: %v", err),
			fixHint: "Check available disk space, or restore with " + ui.Accent.Render("rack backup restore"),
		}
	}
	defer db.Close()

	s, err := settings.NewStore(db.Conn()).Load(ctx)
	if err != nil {
		return checkResult{
			name:    "Store",
			ok:      false,
			detail:  fmt.Sprintf("cannot read settings: %v", err),
			fixHint: "Restore with " + ui.Accent.Render("rack backup restore"),
		}
	}
	if s.WeekdayCapacity == 0 && s.WeekendCapacity == 0 {
		return checkResult{
			name:    "Store",
			ok:      false,
			detail:  "capacity is zero on every day, nothing can be planned",
			fixHint: "Run " + ui.Accent.Render("rack settings set weekday_capacity 360"),
		}
	}
	return checkResult{
		name:   "Store",
		ok:     true,
		detail: "SQLite database opens and responds",
	}
}

func checkBackups(cfg *config.Config) checkResult {
	if cfg == nil {
		return checkResult{name: "Backups", ok: true, detail: "status unknown"}
	}
	if !cfg.Backup.IsEnabled() {
		return checkResult{
			name:   "Backups",
			ok:     true,
			detail: fmt.Sprintf("Disabled (enable: %s)", ui.Accent.Render("rack config set backup.enabled true")),
		}
	}

	dir := cfg.Backup.DirOr(config.GetPaths().BackupDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return checkResult{
			name:    "Backups",
			ok:      false,
			detail:  fmt.Sprintf("cannot create %s: %v", dir, err),
			fixHint: "Point backups elsewhere with " + ui.Accent.Render("rack config set backup.dir <path>"),
		}
	}
	probe, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return checkResult{
			name:    "Backups",
			ok:      false,
			detail:  fmt.Sprintf("%s is not writable", dir),
			fixHint: "Point backups elsewhere with " + ui.Accent.Render("rack config set backup.dir <path>"),
		}
	}
	probe.Close()
	os.Remove(probe.Name())

	entries, err := newBackupManager(cfg, nil).List()
	if err != nil {
		return checkResult{name: "Backups", ok: false, detail: err.Error()}
	}
	if len(entries) == 0 {
		return checkResult{name: "Backups", ok: true, detail: "none yet in " + dir}
	}
	return checkResult{
		name:   "Backups",
		ok:     true,
		detail: fmt.Sprintf("%d kept, latest %s", len(entries), humanize.Time(entries[0].Time)),
	}
}

// checkEncryption reports whether backups are encrypted and whether the
// newest encrypted backup opens with the current passphrase.
func checkEncryption(cfg *config.Config) checkResult {
	if cfg == nil {
		return checkResult{name: "Encryption", ok: true, detail: "status unknown"}
	}
	env := cfg.Backup.PassphraseEnv
	if env == "" {
		env = config.DefaultPassphraseEnv
	}
	m := newBackupManager(cfg, nil)
	entries, _ := m.List()

	var latestEncrypted string
	for _, e := range entries {
		if e.Encrypted {
			latestEncrypted = e.Path
			break
		}
	}

	if !m.Encrypted() {
		if latestEncrypted != "" {
			return checkResult{
				name:    "Encryption",
				ok:      false,
				detail:  fmt.Sprintf("$%s is unset but %s is encrypted", env, filepath.Base(latestEncrypted)),
				fixHint: fmt.Sprintf("Export $%s to restore encrypted backups", env),
			}
		}
		return checkResult{
			name:   "Encryption",
			ok:     true,
			detail: fmt.Sprintf("Off (set $%s to encrypt backups)", env),
		}
	}

	if latestEncrypted != "" {
		if _, err := m.Read(latestEncrypted); errors.Is(err, backup.ErrWrongPassphrase) {
			return checkResult{
				name:    "Encryption",
				ok:      false,
				detail:  fmt.Sprintf("$%s does not open %s", env, filepath.Base(latestEncrypted)),
				fixHint: "Use the passphrase the backups were written with",
			}
		}
	}
	return checkResult{
		name:   "Encryption",
		ok:     true,
		detail: fmt.Sprintf("On via $%s (age)", env),
	}
}
