package planner

import (
	"context"
	"fmt"
	"math"

	"github.com/rnwolfe/rack/internal/task"
)

// CalibrationWindow is how many recent entries per category feed the factor.
const CalibrationWindow = 20

// Bounds on the learned correction factor.
const (
	MinCalibrationFactor = 1.0
	MaxCalibrationFactor = 2.0
)

// BufferStep is the granularity buffered minutes are rounded up to.
const BufferStep = 5

// ConfidenceMultiplier pads an estimate by how sure the user was about it.
func ConfidenceMultiplier(c task.Confidence) float64 {
	switch c {
	case task.ConfidenceHigh:
		return 1.1
	case task.ConfidenceMedium:
		return 1.3
	case task.ConfidenceLow:
		return 1.6
	default:
		return 1
	}
}

// CalibrationFactor returns the mean actual/estimate ratio over the given
// entries, clamped to [MinCalibrationFactor, MaxCalibrationFactor]. Entries
// with a non-positive estimate or actual are ignored; with none left the
// factor is 1.
func CalibrationFactor(entries []task.CalibrationEntry) float64 {
	var sum float64
	var n int
	for _, e := range entries {
		if e.Estimate <= 0 || e.Actual <= 0 {
			continue
		}
		sum += float64(e.Actual) / float64(e.Estimate)
		n++
	}
	if n == 0 {
		return MinCalibrationFactor
	}
	return math.Min(MaxCalibrationFactor, math.Max(MinCalibrationFactor, sum/float64(n)))
}

// BufferMinutes inflates estimate by the confidence multiplier and factor and
// rounds up to the next multiple of BufferStep.
func BufferMinutes(estimate int, c task.Confidence, factor float64) int {
	v := float64(estimate) * ConfidenceMultiplier(c) * factor
	// Trim float noise so 50*1.1 rounds to 55, not 60.
	v = math.Round(v*1000) / 1000
	return int(math.Ceil(v/BufferStep)) * BufferStep
}

// CalibrationFactor returns the factor for category from its most recent
// history. An empty category means task.DefaultTag.
func (p *Planner) CalibrationFactor(ctx context.Context, category string) (float64, error) {
	if category == "" {
		category = task.DefaultTag
	}
	entries, err := p.calibration.Recent(ctx, category, CalibrationWindow)
	if err != nil {
		return 0, fmt.Errorf("reading calibration for %s: %w", category, err)
	}
	return CalibrationFactor(entries), nil
}

// BufferedMinutes returns the planning minutes for t. It reports false when
// the task has no estimate or confidence.
func (p *Planner) BufferedMinutes(ctx context.Context, t task.Task) (int, bool, error) {
	return p.newBuffer().minutes(ctx, t)
}

// AddCalibrationEntry records one estimate-vs-actual sample. Non-positive
// values are skipped silently.
func (p *Planner) AddCalibrationEntry(ctx context.Context, category string, estimate, actual int) error {
	if estimate <= 0 || actual <= 0 {
		return nil
	}
	if category == "" {
		category = task.DefaultTag
	}
	return p.calibration.Add(ctx, task.CalibrationEntry{
		ID:          task.NewID(),
		Tag:         category,
		Estimate:    estimate,
		Actual:      actual,
		CompletedAt: p.now(),
	})
}

// buffer memoizes calibration factors per category for one operation.
type buffer struct {
	p       *Planner
	factors map[string]float64
}

func (p *Planner) newBuffer() *buffer {
	return &buffer{p: p, factors: make(map[string]float64)}
}

func (b *buffer) minutes(ctx context.Context, t task.Task) (int, bool, error) {
	if t.Estimate == nil || *t.Estimate <= 0 || !task.ValidConfidence(t.Confidence) {
		return 0, false, nil
	}
	tag := t.CategoryTag()
	f, ok := b.factors[tag]
	if !ok {
		var err error
		if f, err = b.p.CalibrationFactor(ctx, tag); err != nil {
			return 0, false, err
		}
		b.factors[tag] = f
	}
	return BufferMinutes(*t.Estimate, t.Confidence, f), true, nil
}

// minutesOrZero is minutes with "no estimate" folded to 0.
func (b *buffer) minutesOrZero(ctx context.Context, t task.Task) (int, error) {
	m, _, err := b.minutes(ctx, t)
	return m, err
}
