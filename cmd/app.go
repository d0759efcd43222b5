package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/rnwolfe/rack/internal/backup"
	"github.com/rnwolfe/rack/internal/config"
	"github.com/rnwolfe/rack/internal/logging"
	"github.com/rnwolfe/rack/internal/planner"
	"github.com/rnwolfe/rack/internal/settings"
	"github.com/rnwolfe/rack/internal/snapshot"
	"github.com/rnwolfe/rack/internal/store"
	"github.com/rnwolfe/rack/internal/task"
)

// app is everything a command needs for one process run. It is opened on
// first use and closed by Execute (or the test cleanup) after the command
// and its notify hooks have finished.
type app struct {
	cfg         *config.Config
	log         *slog.Logger
	db          *store.DB
	tasks       *task.Store
	calibration *task.CalibrationStore
	settings    *settings.Store
	planner     *planner.Planner
	exporter    *snapshot.Exporter
	importer    *snapshot.Importer
	backup      *backup.Manager
	autoBackup  bool

	// maintenance is what the activation pass changed.
	maintenance planner.MaintenanceReport
}

var (
	appMu   sync.Mutex
	current *app
)

// openApp returns the process-wide app, opening the store and running daily
// maintenance the first time it is called.
func openApp(ctx context.Context) (*app, error) {
	appMu.Lock()
	defer appMu.Unlock()
	if current != nil {
		return current, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	lg := logging.FromConfig(cfg, os.Stderr, "cli")

	db, err := store.Open()
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	a := &app{
		cfg:         cfg,
		log:         lg,
		db:          db,
		tasks:       task.NewStore(db.Conn()),
		calibration: task.NewCalibrationStore(db.Conn()),
		settings:    settings.NewStore(db.Conn()),
		autoBackup:  cfg.Backup.IsEnabled(),
	}
	a.planner = planner.New(a.tasks, a.calibration, a.settings)
	a.exporter = snapshot.NewExporter(a.tasks, a.calibration, a.settings)
	a.importer = snapshot.NewImporter(db, a.tasks, a.calibration, a.settings)
	a.backup = newBackupManager(cfg, a.exporter)

	rep, err := a.planner.RunDailyMaintenance(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("daily maintenance: %w", err)
	}
	a.maintenance = rep
	if rep.Notable() {
		lg.Debug("daily maintenance",
			"overdue", rep.OverdueCount,
			"rolled", rep.RolledCount,
			"carried", rep.CarriedCount,
			"deferred", rep.DeferredCount,
			"cleared_top3", rep.ClearedTop3Count)
	}
	if rep.RolledCount+rep.CarriedCount+rep.ClearedTop3Count > 0 {
		a.notifyBackup()
	}

	current = a
	return a, nil
}

func newBackupManager(cfg *config.Config, src backup.Source) *backup.Manager {
	env := cfg.Backup.PassphraseEnv
	if env == "" {
		env = config.DefaultPassphraseEnv
	}
	return backup.New(src, backup.Options{
		Dir:        cfg.Backup.DirOr(config.GetPaths().BackupDir),
		Keep:       cfg.Backup.KeepOrDefault(),
		Debounce:   time.Duration(cfg.Backup.DebounceOrDefault()) * time.Second,
		Passphrase: os.Getenv(env),
		Logger:     logging.FromConfig(cfg, os.Stderr, "backup"),
	})
}

// notifyBackup re-arms the debounced auto-backup when it is enabled.
func (a *app) notifyBackup() {
	if a.autoBackup {
		a.backup.Notify()
	}
}

// closeApp flushes any pending backup and closes the store.
func closeApp() {
	appMu.Lock()
	a := current
	current = nil
	appMu.Unlock()
	if a == nil {
		return
	}
	a.backup.Flush(context.Background())
	if err := a.db.Close(); err != nil {
		a.log.Debug("closing store", "err", err)
	}
}

// activeApp returns the open app, or nil when no command has opened one.
func activeApp() *app {
	appMu.Lock()
	defer appMu.Unlock()
	return current
}
