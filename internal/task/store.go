package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

const taskColumns = `id, description, status, impact, consequences, friction, leverage, energy_match,
	time_criticality, estimate, confidence, actual, scheduled_for, due_date, is_top3, top3_order,
	top3_date, top3_locked, recurrence, recurrence_day, parent_id, tag, created_at, updated_at,
	completed_at, started_at`

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Store handles task persistence. All() is served from a snapshot that is
// dropped on every write made through the store.
type Store struct {
	db *sql.DB

	mu       sync.Mutex
	snapshot []Task
}

// NewStore creates a new task store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Invalidate drops the cached snapshot.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.snapshot = nil
	s.mu.Unlock()
}

// Get returns a single task by id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading task %s: %w", id, err)
	}
	return t, nil
}

// Put inserts or replaces a task.
func (s *Store) Put(ctx context.Context, t Task) error {
	defer s.Invalidate()
	if err := putTask(ctx, s.db, t); err != nil {
		return fmt.Errorf("writing task %s: %w", t.ID, err)
	}
	return nil
}

// Delete removes a task. Deleting an unknown id returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	defer s.Invalidate()
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

// All returns every task. The result is a copy; callers may mutate it.
func (s *Store) All(ctx context.Context) ([]Task, error) {
	s.mu.Lock()
	cached := s.snapshot
	s.mu.Unlock()
	if cached != nil {
		return append([]Task(nil), cached...), nil
	}

	tasks, err := s.query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []Task{}
	}

	s.mu.Lock()
	s.snapshot = tasks
	s.mu.Unlock()
	return append([]Task(nil), tasks...), nil
}

// ByTag returns every task in a category.
func (s *Store) ByTag(ctx context.Context, tag string) ([]Task, error) {
	return s.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE COALESCE(NULLIF(tag, ''), ?) = ? ORDER BY created_at ASC`, DefaultTag, tag)
}

// ReplaceAllTx deletes every task and writes tasks inside tx.
func (s *Store) ReplaceAllTx(ctx context.Context, tx *sql.Tx, tasks []Task) error {
	defer s.Invalidate()
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clearing tasks: %w", err)
	}
	for _, t := range tasks {
		if err := putTask(ctx, tx, t); err != nil {
			return fmt.Errorf("writing task %s: %w", t.ID, err)
		}
	}
	return nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func putTask(ctx context.Context, db execer, t Task) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR REPLACE INTO tasks (`+taskColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Description, string(t.Status),
		nullInt(t.Impact), nullInt(t.Consequences), nullInt(t.Friction),
		nullInt(t.Leverage), nullInt(t.EnergyMatch), nullInt(t.TimeCriticality),
		nullInt(t.Estimate), nullString(string(t.Confidence)), nullInt(t.Actual),
		nullString(t.ScheduledFor), nullString(t.DueDate),
		boolInt(t.IsTop3), t.Top3Order, nullString(t.Top3Date), boolInt(t.Top3Locked),
		nullString(string(t.Recurrence)), nullInt(t.RecurrenceDay),
		nullString(t.ParentID), nullString(t.Tag),
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
		nullTime(t.CompletedAt), nullTime(t.StartedAt),
	)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*Task, error) {
	var t Task
	var status string
	var impact, consequences, friction, leverage, energy, timeCrit, estimate, actual, recDay sql.NullInt64
	var confidence, scheduled, due, top3Date, recurrence, parent, tag sql.NullString
	var isTop3, locked int
	var created, updated string
	var completed, started sql.NullString

	err := row.Scan(&t.ID, &t.Description, &status,
		&impact, &consequences, &friction, &leverage, &energy, &timeCrit,
		&estimate, &confidence, &actual, &scheduled, &due,
		&isTop3, &t.Top3Order, &top3Date, &locked,
		&recurrence, &recDay, &parent, &tag,
		&created, &updated, &completed, &started)
	if err != nil {
		return nil, err
	}

	t.Status = Status(status)
	t.Impact = intPtr(impact)
	t.Consequences = intPtr(consequences)
	t.Friction = intPtr(friction)
	t.Leverage = intPtr(leverage)
	t.EnergyMatch = intPtr(energy)
	t.TimeCriticality = intPtr(timeCrit)
	t.Estimate = intPtr(estimate)
	t.Actual = intPtr(actual)
	t.RecurrenceDay = intPtr(recDay)
	t.Confidence = Confidence(confidence.String)
	t.ScheduledFor = scheduled.String
	t.DueDate = due.String
	t.IsTop3 = isTop3 == 1
	t.Top3Date = top3Date.String
	t.Top3Locked = locked == 1
	t.Recurrence = Recurrence(recurrence.String)
	t.ParentID = parent.String
	t.Tag = tag.String
	t.CreatedAt = parseTime(created)
	t.UpdatedAt = parseTime(updated)
	t.CompletedAt = timePtr(completed)
	t.StartedAt = timePtr(started)
	return &t, nil
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		// Fallback for SQLite-native "YYYY-MM-DD HH:MM:SS" format.
		t, _ = time.Parse("2006-01-02 15:04:05", s)
	}
	return t
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func timePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}
