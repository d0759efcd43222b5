package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rnwolfe/rack/internal/hook"
	"github.com/rnwolfe/rack/internal/snapshot"
	"github.com/rnwolfe/rack/internal/ui"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
	importFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every task, setting and calibration entry as JSON or YAML",
	Long: `Write a full snapshot: tasks, routines, settings and calibration history.

The format follows --format, or the --output file extension, and defaults to
JSON. Without --output the snapshot goes to stdout.`,
	Args: cobra.NoArgs,
	RunE: hook.Wrap("export", runExport),
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace everything with a snapshot",
	Long: `Replace all tasks, routines, settings and calibration history with a
snapshot file ("-" reads stdin).

Snapshot versions 1 through 4 are accepted. Unusable records are dropped and
out-of-range fields are reset; the summary says how many. The replace is
all-or-nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: hook.Wrap("import", runImport),
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "json or yaml")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to a file instead of stdout")
	importCmd.Flags().StringVar(&importFormat, "format", "", "json or yaml (default from the file extension)")
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}

	format, err := pickFormat(exportFormat, exportOutput)
	if err != nil {
		return err
	}

	if exportOutput == "" {
		return a.exporter.Export(ctx, os.Stdout, format)
	}

	if err := os.MkdirAll(filepath.Dir(exportOutput), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.OpenFile(exportOutput, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", exportOutput, err)
	}
	if err := a.exporter.Export(ctx, f, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", exportOutput, err)
	}
	ui.Ok(fmt.Sprintf("Exported to %s (%s)", exportOutput, format))
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx)
	if err != nil {
		return err
	}

	path := args[0]
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	src := path
	if path == "-" {
		src = ""
	}
	format, err := pickFormat(importFormat, src)
	if err != nil {
		return err
	}

	rep, err := a.importer.Import(ctx, r, format)
	if err != nil {
		return err
	}
	printImportReport(rep)
	return nil
}

// pickFormat resolves an explicit --format, falling back to the path's
// extension and then JSON.
func pickFormat(flag, path string) (snapshot.Format, error) {
	if flag != "" {
		return snapshot.ParseFormat(flag)
	}
	if path != "" {
		return snapshot.FormatForPath(path), nil
	}
	return snapshot.FormatJSON, nil
}

func printImportReport(rep *snapshot.Report) {
	ui.Ok(fmt.Sprintf("Imported %d task(s), %d calibration entr(ies), %d routine(s), %d setting(s)",
		rep.Tasks, rep.Calibration, rep.Routines, rep.Settings))
	if rep.Version < snapshot.Version {
		ui.Inf(fmt.Sprintf("Upgraded from snapshot version %d.", rep.Version))
	}
	if rep.Dropped > 0 {
		ui.Warn(fmt.Sprintf("Dropped %d unusable record(s) or value(s).", rep.Dropped))
	}
	if rep.Regenerated > 0 {
		ui.Inf(fmt.Sprintf("Gave %d record(s) a fresh id.", rep.Regenerated))
	}
	if rep.Coerced > 0 {
		ui.Inf(fmt.Sprintf("Reset %d out-of-range field(s).", rep.Coerced))
	}
}
