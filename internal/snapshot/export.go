package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rnwolfe/rack/internal/settings"
	"github.com/rnwolfe/rack/internal/task"
)

// Exporter reads every collection into a Document.
type Exporter struct {
	tasks       *task.Store
	calibration *task.CalibrationStore
	settings    *settings.Store
	now         func() time.Time
}

// NewExporter creates an exporter over the given stores.
func NewExporter(tasks *task.Store, calibration *task.CalibrationStore, s *settings.Store) *Exporter {
	return &Exporter{tasks: tasks, calibration: calibration, settings: s, now: time.Now}
}

// Build collects the current data set.
func (e *Exporter) Build(ctx context.Context) (*Document, error) {
	tasks, err := e.tasks.All(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := e.calibration.All(ctx)
	if err != nil {
		return nil, err
	}
	resolved, err := e.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	values := resolved.Values()
	if o, err := e.settings.Override(ctx); err != nil {
		return nil, fmt.Errorf("loading capacity override: %w", err)
	} else if o != nil {
		values[settings.KeyCapacityOverride] = map[string]any{"date": o.Date, "minutes": o.Minutes}
	}
	if d, err := e.settings.LastRollover(ctx); err != nil {
		return nil, fmt.Errorf("loading rollover date: %w", err)
	} else if d != "" {
		values[settings.KeyLastRollover] = d
	}
	var routines []Routine
	if _, err := e.settings.GetJSON(ctx, settings.KeyRoutines, &routines); err != nil {
		return nil, fmt.Errorf("loading routines: %w", err)
	}

	doc := &Document{
		Version:     Version,
		ExportedAt:  stamp(e.now()),
		Tasks:       make([]TaskRecord, 0, len(tasks)),
		Routines:    routines,
		Settings:    values,
		Calibration: make([]CalibrationRecord, 0, len(entries)),
	}
	if doc.Routines == nil {
		doc.Routines = []Routine{}
	}
	for _, t := range tasks {
		doc.Tasks = append(doc.Tasks, taskRecord(t))
	}
	for _, c := range entries {
		doc.Calibration = append(doc.Calibration, calibrationRecord(c))
	}
	return doc, nil
}

// Export writes the current data set to w.
func (e *Exporter) Export(ctx context.Context, w io.Writer, format Format) error {
	doc, err := e.Build(ctx)
	if err != nil {
		return err
	}
	return Encode(w, doc, format)
}

// Encode writes doc in the given format.
func Encode(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	}
}
