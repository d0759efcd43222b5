package task

import (
	"strconv"
	"time"
)

// NextOccurrence computes the date a recurring task should next be scheduled
// for, relative to today. day is the rule's weekday (0-6, Sunday first) for
// weekly rules or day-of-month (1-31) for monthly rules; nil falls back to
// today's weekday or day-of-month.
func NextOccurrence(rule Recurrence, day *int, today time.Time) time.Time {
	base := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())

	switch rule {
	case RecurrenceWeekly:
		target := int(base.Weekday())
		if day != nil && *day >= 0 && *day <= 6 {
			target = *day
		}
		diff := (target - int(base.Weekday()) + 7) % 7
		if diff == 0 {
			diff = 7
		}
		return base.AddDate(0, 0, diff)

	case RecurrenceMonthly:
		d := base.Day()
		if day != nil && *day >= 1 && *day <= 31 {
			d = *day
		}
		// Normalize to the 1st before moving so day 31 never overflows.
		first := time.Date(base.Year(), base.Month()+1, 1, 0, 0, 0, 0, base.Location())
		lastDay := first.AddDate(0, 1, -1).Day()
		if d > lastDay {
			d = lastDay
		}
		return first.AddDate(0, 0, d-1)

	default: // daily and anything unknown
		return base.AddDate(0, 0, 1)
	}
}

// RecurrenceLabel returns a short display label for a rule.
func RecurrenceLabel(rule Recurrence, day *int) string {
	switch rule {
	case RecurrenceDaily:
		return "daily"
	case RecurrenceWeekly:
		if day != nil && *day >= 0 && *day <= 6 {
			return "weekly on " + time.Weekday(*day).String()[:3]
		}
		return "weekly"
	case RecurrenceMonthly:
		if day != nil {
			return "monthly on day " + strconv.Itoa(*day)
		}
		return "monthly"
	default:
		return ""
	}
}
