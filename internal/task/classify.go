package task

// MonsterMinutes is the estimate at or above which a task is a monster.
const MonsterMinutes = 90

// IsRated reports whether every rating field is present and in range, the
// estimate is a positive bucket and the confidence is a known level. Partial
// ratings never count.
func IsRated(t Task) bool {
	r := t.Ratings
	for _, v := range []*int{r.Impact, r.Consequences, r.Friction} {
		if !inRange(v, 1, 5) {
			return false
		}
	}
	for _, v := range []*int{r.Leverage, r.EnergyMatch, r.TimeCriticality} {
		if !inRange(v, 0, 2) {
			return false
		}
	}
	if t.Estimate == nil || *t.Estimate <= 0 || !ValidBucket(*t.Estimate) {
		return false
	}
	return ValidConfidence(t.Confidence)
}

// IsMonster reports whether a task is oversized (estimate >= 90) or too
// uncertain (low confidence) to double up on.
func IsMonster(t Task) bool {
	if t.Confidence == ConfidenceLow {
		return true
	}
	return t.Estimate != nil && *t.Estimate >= MonsterMinutes
}

// EffectiveEstimate is the task's own estimate plus the estimates of all its
// subtasks found in all.
func EffectiveEstimate(t Task, all []Task) int {
	total := valueOr(t.Estimate, 0)
	for _, sub := range all {
		if sub.ParentID == t.ID && sub.ID != t.ID {
			total += valueOr(sub.Estimate, 0)
		}
	}
	return total
}

// IsMonsterEffective is IsMonster with subtask time folded into the estimate.
// Low confidence on the parent is a monster regardless of subtask time.
func IsMonsterEffective(t Task, all []Task) bool {
	if t.Confidence == ConfidenceLow {
		return true
	}
	return EffectiveEstimate(t, all) >= MonsterMinutes
}

// IsOverdue reports whether an open task was scheduled before today.
func IsOverdue(t Task, today string) bool {
	if t.IsDone() || t.ScheduledFor == "" {
		return false
	}
	return t.ScheduledFor < today
}

func inRange(p *int, lo, hi int) bool {
	return p != nil && *p >= lo && *p <= hi
}
