package cmd

import (
	"log/slog"
	"strings"

	"github.com/rnwolfe/rack/internal/hook"
)

// mutatingCommands are the commands that change stored data. Each re-arms
// the auto-backup when it succeeds.
var mutatingCommands = []string{
	"task.add", "task.edit", "task.rate", "task.rm", "task.done", "task.start",
	"top3.apply", "top3.set", "top3.unset", "top3.pick",
	"rerack",
	"capacity.set", "capacity.clear",
	"settings.set", "settings.unset",
	"import", "backup.restore",
}

// registerHooks installs rack's built-in hooks: a notify hook per mutating
// command that re-arms the backup, and a trace hook that logs every command.
func registerHooks(reg *hook.Registry, lg *slog.Logger) error {
	reg.SetLogger(lg)
	for _, name := range mutatingCommands {
		err := reg.Register(hook.Hook{
			Pattern: name,
			Stage:   hook.StageNotify,
			Mode:    hook.ModeNotify,
			Name:    "backup-" + strings.ReplaceAll(name, ".", "-"),
			Source:  "backup",
			Handler: func(ctx *hook.Context) (*hook.Context, error) {
				if a := activeApp(); a != nil {
					a.notifyBackup()
				}
				return ctx, nil
			},
		})
		if err != nil {
			return err
		}
	}

	return reg.Register(hook.Hook{
		Pattern: "*",
		Stage:   hook.StagePreexec,
		Mode:    hook.ModeTransform,
		Name:    "trace",
		Source:  "rack",
		Handler: func(ctx *hook.Context) (*hook.Context, error) {
			lg.Debug("command", "name", ctx.Command, "args", ctx.Args, "flags", ctx.Flags)
			return ctx, nil
		},
	})
}
