package task

import "sort"

// Urgency tiers, most urgent first.
const (
	TierOverdue  = 0 // scheduled before today, not done
	TierDueToday = 1 // due today or earlier
	TierDueSoon  = 2 // due by tomorrow
	TierDueWeek  = 3 // due within three days
	TierRest     = 4
)

// Score adjustments applied by the tiered sort.
const (
	UrgentBoost = 10 // C == 5 surfaces even before full rating
	RatedBoost  = 1  // rated beats unrated at equal score
)

// UrgencyTier places t in the first tier its dates qualify it for.
func UrgencyTier(t Task, today string) int {
	if IsOverdue(t, today) {
		return TierOverdue
	}
	if t.DueDate != "" {
		switch {
		case t.DueDate <= today:
			return TierDueToday
		case t.DueDate <= AddDays(today, 1):
			return TierDueSoon
		case t.DueDate <= AddDays(today, 3):
			return TierDueWeek
		}
	}
	return TierRest
}

// AdjustedScore is the in-tier sort key: priority (0 if unrated) plus the
// urgent and rated boosts.
func AdjustedScore(t Task) int {
	score := PriorityScore(t)
	if IsUrgent(t) {
		score += UrgentBoost
	}
	if IsRated(t) {
		score += RatedBoost
	}
	return score
}

// SortByPriority sorts tasks in place: urgency tier ascending, adjusted score
// descending, newest first, then id. The order is total.
func SortByPriority(tasks []Task, today string) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return Less(tasks[i], tasks[j], today)
	})
}

// Less is the tiered comparator behind SortByPriority.
func Less(a, b Task, today string) bool {
	if ta, tb := UrgencyTier(a, today), UrgencyTier(b, today); ta != tb {
		return ta < tb
	}
	if sa, sb := AdjustedScore(a), AdjustedScore(b); sa != sb {
		return sa > sb
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}
