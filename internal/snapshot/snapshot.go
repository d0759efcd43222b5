// Package snapshot exports and imports the full rack data set as a single
// versioned JSON or YAML document.
package snapshot

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rnwolfe/rack/internal/task"
)

// Version is the document version written by Export. Import accepts
// MinVersion through Version.
const (
	Version    = 4
	MinVersion = 1
)

var (
	// ErrUnsupportedVersion is returned for missing, unknown or future versions.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	// ErrMalformed is returned when the document is not an object.
	ErrMalformed = errors.New("malformed snapshot")
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. "yml" is accepted.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q: use json or yaml", s)
}

// FormatForPath picks a format from a file extension, defaulting to JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Document is the snapshot wire shape.
type Document struct {
	Version     int                 `json:"version" yaml:"version"`
	ExportedAt  string              `json:"exported_at" yaml:"exported_at"`
	Tasks       []TaskRecord        `json:"tasks" yaml:"tasks"`
	Routines    []Routine           `json:"routines" yaml:"routines"`
	Settings    map[string]any      `json:"settings" yaml:"settings"`
	Calibration []CalibrationRecord `json:"calibration" yaml:"calibration"`
}

// TaskRecord is a task as written to a snapshot.
type TaskRecord struct {
	ID              string `json:"id" yaml:"id"`
	Description     string `json:"description" yaml:"description"`
	Status          string `json:"status" yaml:"status"`
	Impact          *int   `json:"impact,omitempty" yaml:"impact,omitempty"`
	Consequences    *int   `json:"consequences,omitempty" yaml:"consequences,omitempty"`
	Friction        *int   `json:"friction,omitempty" yaml:"friction,omitempty"`
	Leverage        *int   `json:"leverage,omitempty" yaml:"leverage,omitempty"`
	EnergyMatch     *int   `json:"energy_match,omitempty" yaml:"energy_match,omitempty"`
	TimeCriticality *int   `json:"time_criticality,omitempty" yaml:"time_criticality,omitempty"`
	Estimate        *int   `json:"estimate,omitempty" yaml:"estimate,omitempty"`
	Confidence      string `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Actual          *int   `json:"actual,omitempty" yaml:"actual,omitempty"`
	ScheduledFor    string `json:"scheduled_for,omitempty" yaml:"scheduled_for,omitempty"`
	DueDate         string `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	IsTop3          bool   `json:"is_top3,omitempty" yaml:"is_top3,omitempty"`
	Top3Order       int    `json:"top3_order" yaml:"top3_order"`
	Top3Date        string `json:"top3_date,omitempty" yaml:"top3_date,omitempty"`
	Top3Locked      bool   `json:"top3_locked,omitempty" yaml:"top3_locked,omitempty"`
	Recurrence      string `json:"recurrence,omitempty" yaml:"recurrence,omitempty"`
	RecurrenceDay   *int   `json:"recurrence_day,omitempty" yaml:"recurrence_day,omitempty"`
	ParentID        string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Tag             string `json:"tag,omitempty" yaml:"tag,omitempty"`
	CreatedAt       string `json:"created_at" yaml:"created_at"`
	UpdatedAt       string `json:"updated_at" yaml:"updated_at"`
	CompletedAt     string `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	StartedAt       string `json:"started_at,omitempty" yaml:"started_at,omitempty"`
}

// CalibrationRecord is a calibration entry as written to a snapshot.
type CalibrationRecord struct {
	ID          string `json:"id" yaml:"id"`
	Tag         string `json:"tag" yaml:"tag"`
	Estimate    int    `json:"estimate" yaml:"estimate"`
	Actual      int    `json:"actual" yaml:"actual"`
	CompletedAt string `json:"completed_at" yaml:"completed_at"`
}

// Report summarizes an import.
type Report struct {
	Version     int
	Tasks       int
	Calibration int
	Routines    int
	Settings    int
	// Dropped counts records or values discarded as unusable.
	Dropped int
	// Regenerated counts ids replaced because they were empty or collided.
	Regenerated int
	// Coerced counts fields reset because they were out of range or unknown.
	Coerced int
}

func taskRecord(t task.Task) TaskRecord {
	return TaskRecord{
		ID:              t.ID,
		Description:     t.Description,
		Status:          string(t.Status),
		Impact:          t.Impact,
		Consequences:    t.Consequences,
		Friction:        t.Friction,
		Leverage:        t.Leverage,
		EnergyMatch:     t.EnergyMatch,
		TimeCriticality: t.TimeCriticality,
		Estimate:        t.Estimate,
		Confidence:      string(t.Confidence),
		Actual:          t.Actual,
		ScheduledFor:    t.ScheduledFor,
		DueDate:         t.DueDate,
		IsTop3:          t.IsTop3,
		Top3Order:       t.Top3Order,
		Top3Date:        t.Top3Date,
		Top3Locked:      t.Top3Locked,
		Recurrence:      string(t.Recurrence),
		RecurrenceDay:   t.RecurrenceDay,
		ParentID:        t.ParentID,
		Tag:             t.Tag,
		CreatedAt:       stamp(t.CreatedAt),
		UpdatedAt:       stamp(t.UpdatedAt),
		CompletedAt:     stampPtr(t.CompletedAt),
		StartedAt:       stampPtr(t.StartedAt),
	}
}

func calibrationRecord(e task.CalibrationEntry) CalibrationRecord {
	return CalibrationRecord{
		ID:          e.ID,
		Tag:         e.Tag,
		Estimate:    e.Estimate,
		Actual:      e.Actual,
		CompletedAt: stamp(e.CompletedAt),
	}
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func stampPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return stamp(*t)
}
