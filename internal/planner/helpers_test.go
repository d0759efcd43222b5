package planner

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rnwolfe/rack/internal/settings"
	"github.com/rnwolfe/rack/internal/store"
	"github.com/rnwolfe/rack/internal/task"
)

// friday is a weekday morning; the default usable capacity is 288 minutes.
var friday = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

const fridayISO = "2025-03-14"

type memTasks struct {
	mu    sync.Mutex
	tasks map[string]task.Task
}

func newMemTasks() *memTasks { return &memTasks{tasks: make(map[string]task.Task)} }

func (m *memTasks) Get(_ context.Context, id string) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, task.ErrNotFound)
	}
	return &t, nil
}

func (m *memTasks) Put(_ context.Context, t task.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID] = t
	return nil
}

func (m *memTasks) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return fmt.Errorf("task %s: %w", id, task.ErrNotFound)
	}
	delete(m.tasks, id)
	return nil
}

func (m *memTasks) All(_ context.Context) ([]task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]task.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memCalibration struct {
	entries []task.CalibrationEntry
}

func (m *memCalibration) Add(_ context.Context, e task.CalibrationEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *memCalibration) Recent(_ context.Context, tag string, limit int) ([]task.CalibrationEntry, error) {
	var out []task.CalibrationEntry
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if m.entries[i].Tag == tag {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

type memSettings struct {
	s        settings.Settings
	override *settings.CapacityOverride
	rollover string
}

func newMemSettings() *memSettings { return &memSettings{s: settings.Defaults()} }

func (m *memSettings) Load(context.Context) (settings.Settings, error) { return m.s, nil }

func (m *memSettings) Override(context.Context) (*settings.CapacityOverride, error) {
	return m.override, nil
}

func (m *memSettings) SetOverride(_ context.Context, date string, minutes int) error {
	m.override = &settings.CapacityOverride{Date: date, Minutes: minutes}
	return nil
}

func (m *memSettings) ClearOverride(context.Context) error {
	m.override = nil
	return nil
}

func (m *memSettings) LastRollover(context.Context) (string, error) { return m.rollover, nil }

func (m *memSettings) SetLastRollover(_ context.Context, date string) error {
	m.rollover = date
	return nil
}

type fixture struct {
	p     *Planner
	tasks *memTasks
	cal   *memCalibration
	set   *memSettings
	now   time.Time
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	f := &fixture{tasks: newMemTasks(), cal: &memCalibration{}, set: newMemSettings(), now: now}
	f.p = New(f.tasks, f.cal, f.set, WithClock(func() time.Time { return f.now }))
	return f
}

// put stores t, filling id and timestamps.
func (f *fixture) put(t *testing.T, tk task.Task) task.Task {
	t.Helper()
	if tk.ID == "" {
		tk.ID = task.NewID()
	}
	if tk.Status == "" {
		tk.Status = task.StatusInbox
	}
	if tk.CreatedAt.IsZero() {
		tk.CreatedAt = f.now.Add(-time.Hour)
	}
	tk.UpdatedAt = tk.CreatedAt
	if err := f.tasks.Put(context.Background(), tk); err != nil {
		t.Fatal(err)
	}
	return tk
}

func (f *fixture) get(t *testing.T, id string) task.Task {
	t.Helper()
	tk, err := f.tasks.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get %s: %v", id, err)
	}
	return *tk
}

// rated returns a fully rated task with priority 2a+2c-e+l+m+t.
func rated(id string, a, c, e, l, m, tc, est int, conf task.Confidence) task.Task {
	return task.Task{
		ID:          id,
		Description: "task " + id,
		Status:      task.StatusToday,
		Ratings: task.Ratings{
			Impact:          task.IntPtr(a),
			Consequences:    task.IntPtr(c),
			Friction:        task.IntPtr(e),
			Leverage:        task.IntPtr(l),
			EnergyMatch:     task.IntPtr(m),
			TimeCriticality: task.IntPtr(tc),
		},
		Estimate:   task.IntPtr(est),
		Confidence: conf,
	}
}

// setupSQLPlanner returns a planner backed by a real sqlite database.
func setupSQLPlanner(t *testing.T, now time.Time) (*Planner, *task.Store) {
	t.Helper()
	db, err := store.OpenPath(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	ts := task.NewStore(db.Conn())
	p := New(ts, task.NewCalibrationStore(db.Conn()), settings.NewStore(db.Conn()),
		WithClock(func() time.Time { return now }))
	return p, ts
}
