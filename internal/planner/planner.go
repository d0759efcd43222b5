// Package planner is the scheduling core: calibration-aware time buffering,
// capacity, Top-3 selection, reracking, daily maintenance and completion.
// It reads and writes through injected repositories and never logs.
package planner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rnwolfe/rack/internal/settings"
	"github.com/rnwolfe/rack/internal/task"
)

// TaskRepo is the task collection the planner works against.
type TaskRepo interface {
	Get(ctx context.Context, id string) (*task.Task, error)
	Put(ctx context.Context, t task.Task) error
	Delete(ctx context.Context, id string) error
	All(ctx context.Context) ([]task.Task, error)
}

// CalibrationRepo is the append-only estimate history.
type CalibrationRepo interface {
	Add(ctx context.Context, e task.CalibrationEntry) error
	Recent(ctx context.Context, tag string, limit int) ([]task.CalibrationEntry, error)
}

// SettingsRepo resolves planner settings and the planner's own bookkeeping keys.
type SettingsRepo interface {
	Load(ctx context.Context) (settings.Settings, error)
	Override(ctx context.Context) (*settings.CapacityOverride, error)
	SetOverride(ctx context.Context, date string, minutes int) error
	ClearOverride(ctx context.Context) error
	LastRollover(ctx context.Context) (string, error)
	SetLastRollover(ctx context.Context, date string) error
}

// Planner runs every scheduling operation.
type Planner struct {
	tasks       TaskRepo
	calibration CalibrationRepo
	settings    SettingsRepo
	now         func() time.Time

	// top3Mu serializes the check-then-write in SetTop3 and ApplyTop3Suggestion.
	top3Mu sync.Mutex
}

// Option configures a Planner.
type Option func(*Planner)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

// New creates a Planner over the given repositories.
func New(tasks TaskRepo, calibration CalibrationRepo, s SettingsRepo, opts ...Option) *Planner {
	p := &Planner{
		tasks:       tasks,
		calibration: calibration,
		settings:    s,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Now returns the planner's current time.
func (p *Planner) Now() time.Time { return p.now() }

func (p *Planner) today() string { return task.Day(p.now()) }

// ConstraintCode identifies why a Top-3 change was refused.
type ConstraintCode string

const (
	CodeMonsterLimit ConstraintCode = "MONSTER_LIMIT"
	CodeTop3Full     ConstraintCode = "TOP3_FULL"
)

// ConstraintError is an expected, recoverable rejection. State is unchanged.
type ConstraintError struct {
	Code    ConstraintCode
	Message string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (p *Planner) allTasks(ctx context.Context) ([]task.Task, error) {
	all, err := p.tasks.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	return all, nil
}

func (p *Planner) put(ctx context.Context, t *task.Task) error {
	t.UpdatedAt = p.now()
	if err := p.tasks.Put(ctx, *t); err != nil {
		return fmt.Errorf("saving task %s: %w", t.ID, err)
	}
	return nil
}
