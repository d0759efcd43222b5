package task

import (
	"fmt"
	"time"
)

// Opt is an optional field in an Update. The zero value leaves the stored
// value untouched; Set replaces it; Clear resets it to unset.
type Opt[T any] struct {
	set   bool
	clear bool
	value T
}

// Set returns an Opt that replaces the stored value with v.
func Set[T any](v T) Opt[T] {
	return Opt[T]{set: true, value: v}
}

// Clear returns an Opt that resets the stored value.
func Clear[T any]() Opt[T] {
	return Opt[T]{set: true, clear: true}
}

// IsSet reports whether the field takes part in the update.
func (o Opt[T]) IsSet() bool { return o.set }

// IsClear reports whether the field resets the stored value.
func (o Opt[T]) IsClear() bool { return o.clear }

// Value returns the new value and whether one is present.
func (o Opt[T]) Value() (T, bool) { return o.value, o.set && !o.clear }

// ValidationError reports a rejected update field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Update is a typed partial update. Only fields that are set are merged.
type Update struct {
	Description     Opt[string]
	Status          Opt[Status]
	Impact          Opt[int]
	Consequences    Opt[int]
	Friction        Opt[int]
	Leverage        Opt[int]
	EnergyMatch     Opt[int]
	TimeCriticality Opt[int]
	Estimate        Opt[int]
	Confidence      Opt[Confidence]
	ScheduledFor    Opt[string]
	DueDate         Opt[string]
	Recurrence      Opt[Recurrence]
	RecurrenceDay   Opt[int]
	ParentID        Opt[string]
	Tag             Opt[string]
}

// Empty reports whether the update touches nothing.
func (u Update) Empty() bool {
	return !u.Description.set && !u.Status.set &&
		!u.Impact.set && !u.Consequences.set && !u.Friction.set &&
		!u.Leverage.set && !u.EnergyMatch.set && !u.TimeCriticality.set &&
		!u.Estimate.set && !u.Confidence.set &&
		!u.ScheduledFor.set && !u.DueDate.set &&
		!u.Recurrence.set && !u.RecurrenceDay.set &&
		!u.ParentID.set && !u.Tag.set
}

// Validate checks every set field against its domain.
func (u Update) Validate() error {
	if v, ok := u.Description.Value(); ok && v == "" {
		return &ValidationError{"description", "must not be empty"}
	}
	if u.Description.clear {
		return &ValidationError{"description", "cannot be cleared"}
	}
	if u.Status.clear {
		return &ValidationError{"status", "cannot be cleared"}
	}
	if v, ok := u.Status.Value(); ok {
		if _, err := ParseStatus(string(v)); err != nil {
			return &ValidationError{"status", err.Error()}
		}
	}
	ratings := []struct {
		name   string
		o      Opt[int]
		lo, hi int
	}{
		{"impact", u.Impact, 1, 5},
		{"consequences", u.Consequences, 1, 5},
		{"friction", u.Friction, 1, 5},
		{"leverage", u.Leverage, 0, 2},
		{"energy_match", u.EnergyMatch, 0, 2},
		{"time_criticality", u.TimeCriticality, 0, 2},
	}
	for _, r := range ratings {
		if v, ok := r.o.Value(); ok && (v < r.lo || v > r.hi) {
			return &ValidationError{r.name, fmt.Sprintf("%d is outside %d-%d", v, r.lo, r.hi)}
		}
	}
	if v, ok := u.Estimate.Value(); ok && !ValidBucket(v) {
		return &ValidationError{"estimate", fmt.Sprintf("%d is not one of %v", v, EstimateBuckets)}
	}
	if v, ok := u.Confidence.Value(); ok && !ValidConfidence(v) {
		return &ValidationError{"confidence", fmt.Sprintf("%q is not high, medium or low", v)}
	}
	if v, ok := u.ScheduledFor.Value(); ok && !validISODate(v) {
		return &ValidationError{"scheduled_for", fmt.Sprintf("%q is not a YYYY-MM-DD date", v)}
	}
	if v, ok := u.DueDate.Value(); ok && !validISODate(v) {
		return &ValidationError{"due_date", fmt.Sprintf("%q is not a YYYY-MM-DD date", v)}
	}
	if v, ok := u.Recurrence.Value(); ok && (v == "" || !ValidRecurrence(v)) {
		return &ValidationError{"recurrence", fmt.Sprintf("%q is not daily, weekly or monthly", v)}
	}
	if v, ok := u.RecurrenceDay.Value(); ok && (v < 0 || v > 31) {
		return &ValidationError{"recurrence_day", fmt.Sprintf("%d is outside 0-31", v)}
	}
	if v, ok := u.Tag.Value(); ok && !ValidTag(v) {
		return &ValidationError{"tag", fmt.Sprintf("%q is not a known category", v)}
	}
	return nil
}

// Apply merges the set fields into t. Call Validate first.
func (u Update) Apply(t *Task) {
	if v, ok := u.Description.Value(); ok {
		t.Description = v
	}
	if v, ok := u.Status.Value(); ok {
		t.Status = v
	}
	applyInt(&t.Impact, u.Impact)
	applyInt(&t.Consequences, u.Consequences)
	applyInt(&t.Friction, u.Friction)
	applyInt(&t.Leverage, u.Leverage)
	applyInt(&t.EnergyMatch, u.EnergyMatch)
	applyInt(&t.TimeCriticality, u.TimeCriticality)
	applyInt(&t.Estimate, u.Estimate)
	applyInt(&t.RecurrenceDay, u.RecurrenceDay)
	applyValue(&t.Confidence, u.Confidence)
	applyValue(&t.ScheduledFor, u.ScheduledFor)
	applyValue(&t.DueDate, u.DueDate)
	applyValue(&t.Recurrence, u.Recurrence)
	applyValue(&t.ParentID, u.ParentID)
	applyValue(&t.Tag, u.Tag)
}

func applyInt(dst **int, o Opt[int]) {
	if !o.set {
		return
	}
	if o.clear {
		*dst = nil
		return
	}
	v := o.value
	*dst = &v
}

func applyValue[T any](dst *T, o Opt[T]) {
	if !o.set {
		return
	}
	if o.clear {
		var zero T
		*dst = zero
		return
	}
	*dst = o.value
}

// NewTask holds the fields accepted when capturing a task.
// Everything beyond the description is optional at capture time.
type NewTask struct {
	Description string
	Status      Status // defaults to inbox
	Fields      Update
}

func validISODate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
