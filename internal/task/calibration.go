package task

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CalibrationEntry is an immutable record of how long a task in a category
// actually took against its estimate.
type CalibrationEntry struct {
	ID          string
	Tag         string
	Estimate    int
	Actual      int
	CompletedAt time.Time
}

// CalibrationStore persists the append-only calibration history.
type CalibrationStore struct {
	db *sql.DB
}

// NewCalibrationStore creates a new calibration store.
func NewCalibrationStore(db *sql.DB) *CalibrationStore {
	return &CalibrationStore{db: db}
}

// Add appends an entry. A missing id or timestamp is filled in.
func (s *CalibrationStore) Add(ctx context.Context, e CalibrationEntry) error {
	if err := addEntry(ctx, s.db, e); err != nil {
		return fmt.Errorf("recording calibration entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries for tag, newest first.
func (s *CalibrationStore) Recent(ctx context.Context, tag string, limit int) ([]CalibrationEntry, error) {
	return s.query(ctx,
		`SELECT id, tag, estimate, actual, completed_at FROM calibration_entries
		 WHERE tag = ? ORDER BY completed_at DESC, id DESC LIMIT ?`, tag, limit)
}

// All returns the full history, oldest first.
func (s *CalibrationStore) All(ctx context.Context) ([]CalibrationEntry, error) {
	return s.query(ctx,
		`SELECT id, tag, estimate, actual, completed_at FROM calibration_entries ORDER BY completed_at ASC, id ASC`)
}

// ReplaceAllTx deletes every entry and writes entries inside tx.
func (s *CalibrationStore) ReplaceAllTx(ctx context.Context, tx *sql.Tx, entries []CalibrationEntry) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM calibration_entries`); err != nil {
		return fmt.Errorf("clearing calibration entries: %w", err)
	}
	for _, e := range entries {
		if err := addEntry(ctx, tx, e); err != nil {
			return fmt.Errorf("writing calibration entry %s: %w", e.ID, err)
		}
	}
	return nil
}

func (s *CalibrationStore) query(ctx context.Context, query string, args ...any) ([]CalibrationEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing calibration entries: %w", err)
	}
	defer rows.Close()

	var out []CalibrationEntry
	for rows.Next() {
		var e CalibrationEntry
		var completed string
		if err := rows.Scan(&e.ID, &e.Tag, &e.Estimate, &e.Actual, &completed); err != nil {
			return nil, err
		}
		e.CompletedAt = parseTime(completed)
		out = append(out, e)
	}
	return out, rows.Err()
}

func addEntry(ctx context.Context, db execer, e CalibrationEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CompletedAt.IsZero() {
		e.CompletedAt = time.Now()
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO calibration_entries (id, tag, estimate, actual, completed_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Tag, e.Estimate, e.Actual, formatTime(e.CompletedAt),
	)
	return err
}
