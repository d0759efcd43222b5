package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an operation targets an unknown task id.
var ErrNotFound = errors.New("task not found")

// Status is the lifecycle bucket a task lives in. Exactly one at a time.
type Status string

// Valid status values.
const (
	StatusInbox    Status = "inbox"
	StatusToday    Status = "today"
	StatusTomorrow Status = "tomorrow"
	StatusNext     Status = "next"
	StatusWaiting  Status = "waiting"
	StatusSomeday  Status = "someday"
	StatusDone     Status = "done"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusInbox, StatusToday, StatusTomorrow, StatusNext, StatusWaiting, StatusSomeday, StatusDone}

// Confidence is how sure the user is about an estimate.
type Confidence string

// Valid confidence levels. The zero value means "not set".
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Recurrence is the repeat rule for a task. The zero value means "does not repeat".
type Recurrence string

// Valid recurrence rules.
const (
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// EstimateBuckets are the only estimate values a task may carry, in minutes.
var EstimateBuckets = []int{15, 30, 60, 90, 120, 180}

// Tags is the fixed category set used to bucket calibration history.
var Tags = []string{"Work", "Personal", "Home", "Health", "Finance", "Learning", "Other"}

// DefaultTag is the calibration category for untagged tasks.
const DefaultTag = "Other"

// DateLayout is the ISO calendar-date layout used for every date field.
const DateLayout = "2006-01-02"

// Ratings holds the ACE (1-5) and LMT (0-2) rating dimensions.
// A nil field has not been rated yet.
type Ratings struct {
	Impact          *int // A
	Consequences    *int // C
	Friction        *int // E
	Leverage        *int // L
	EnergyMatch     *int // M
	TimeCriticality *int // T
}

// Task is a single unit of work.
type Task struct {
	ID          string
	Description string
	Status      Status
	Ratings

	Estimate   *int // minutes, one of EstimateBuckets
	Confidence Confidence
	Actual     *int // minutes actually spent, set on completion

	// Date fields hold ISO dates (DateLayout); empty means unset.
	ScheduledFor string
	DueDate      string

	IsTop3     bool
	Top3Order  int
	Top3Date   string
	Top3Locked bool

	Recurrence    Recurrence
	RecurrenceDay *int // weekday 0-6 for weekly, day-of-month 1-31 for monthly

	ParentID string
	Tag      string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
	StartedAt   *time.Time
}

// NewID returns a fresh opaque task id.
func NewID() string {
	return uuid.NewString()
}

// Day returns the ISO date of t in t's location.
func Day(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays shifts an ISO date by n calendar days. Invalid input is returned as-is.
func AddDays(day string, n int) string {
	d, err := time.Parse(DateLayout, day)
	if err != nil {
		return day
	}
	return d.AddDate(0, 0, n).Format(DateLayout)
}

// IsDone reports whether the task is complete.
func (t Task) IsDone() bool {
	return t.Status == StatusDone
}

// CategoryTag returns the task's tag, or DefaultTag when unset.
func (t Task) CategoryTag() string {
	if t.Tag == "" {
		return DefaultTag
	}
	return t.Tag
}

// ClearTop3 drops every Top-3 field.
func (t *Task) ClearTop3() {
	t.IsTop3 = false
	t.Top3Order = 0
	t.Top3Date = ""
	t.Top3Locked = false
}

// HasValidTop3 reports whether the task holds Top-3 membership for today.
// Stale memberships and done tasks never count.
func (t Task) HasValidTop3(today string) bool {
	return t.IsTop3 && t.Top3Date == today && !t.IsDone()
}

// ParseStatus validates and normalizes a status string.
func ParseStatus(s string) (Status, error) {
	v := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range Statuses {
		if v == st {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid status %q; valid values: inbox, today, tomorrow, next, waiting, someday, done", s)
}

// ParseConfidence validates a confidence string. Accepts h/m/l shorthands.
func ParseConfidence(s string) (Confidence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "h":
		return ConfidenceHigh, nil
	case "medium", "med", "m":
		return ConfidenceMedium, nil
	case "low", "l":
		return ConfidenceLow, nil
	default:
		return "", fmt.Errorf("invalid confidence %q; valid values: high (h), medium (m), low (l)", s)
	}
}

// ParseRecurrence validates a recurrence rule. Accepts d/w/m shorthands.
func ParseRecurrence(s string) (Recurrence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "d", "day", "daily":
		return RecurrenceDaily, nil
	case "w", "week", "weekly":
		return RecurrenceWeekly, nil
	case "m", "month", "monthly":
		return RecurrenceMonthly, nil
	default:
		return "", fmt.Errorf("invalid recurrence %q; valid values: daily (d), weekly (w), monthly (m)", s)
	}
}

// ParseTag matches a tag case-insensitively against the fixed category set.
func ParseTag(s string) (string, error) {
	for _, tag := range Tags {
		if strings.EqualFold(strings.TrimSpace(s), tag) {
			return tag, nil
		}
	}
	return "", fmt.Errorf("invalid tag %q; valid values: %s", s, strings.Join(Tags, ", "))
}

// ParseDate validates an ISO date string. Accepts "today" and "tomorrow"
// relative to now.
func ParseDate(s string, now time.Time) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return Day(now), nil
	case "tomorrow":
		return Day(now.AddDate(0, 0, 1)), nil
	}
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid date %q; use YYYY-MM-DD, today or tomorrow", s)
	}
	return d.Format(DateLayout), nil
}

// ValidBucket reports whether m is one of the estimate buckets.
func ValidBucket(m int) bool {
	for _, b := range EstimateBuckets {
		if b == m {
			return true
		}
	}
	return false
}

// ValidConfidence reports whether c is one of the three levels.
func ValidConfidence(c Confidence) bool {
	return c == ConfidenceHigh || c == ConfidenceMedium || c == ConfidenceLow
}

// ValidRecurrence reports whether r is a known rule (the empty rule is valid).
func ValidRecurrence(r Recurrence) bool {
	return r == "" || r == RecurrenceDaily || r == RecurrenceWeekly || r == RecurrenceMonthly
}

// ValidTag reports whether tag is in the fixed category set.
func ValidTag(tag string) bool {
	for _, t := range Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
