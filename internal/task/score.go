package task

// Score is the composite priority of a task.
type Score struct {
	ACE      int // 2A + 2C - E
	LMT      int // L + M + T
	Priority int // ACE + LMT
}

// CalculateScore computes the composite score. It returns false unless A, C
// and E are all present; missing LMT fields count as 0 so a task can be
// scored before it is fully rated.
func CalculateScore(t Task) (Score, bool) {
	r := t.Ratings
	if r.Impact == nil || r.Consequences == nil || r.Friction == nil {
		return Score{}, false
	}
	ace := 2**r.Impact + 2**r.Consequences - *r.Friction
	lmt := valueOr(r.Leverage, 0) + valueOr(r.EnergyMatch, 0) + valueOr(r.TimeCriticality, 0)
	return Score{ACE: ace, LMT: lmt, Priority: ace + lmt}, true
}

// PriorityScore returns the priority score, or 0 when the task cannot be scored.
func PriorityScore(t Task) int {
	s, ok := CalculateScore(t)
	if !ok {
		return 0
	}
	return s.Priority
}

// Badge is a qualitative label derived from a task's ratings.
type Badge string

// Badges in display order.
const (
	BadgeUrgent   Badge = "URGENT"
	BadgeCritical Badge = "CRITICAL"
	BadgeMonster  Badge = "MONSTER"
	BadgeLeverage Badge = "LEVERAGE"
	BadgeFriction Badge = "FRICTION"
)

// Badges returns the labels that apply to t in a stable order.
func Badges(t Task) []Badge {
	r := t.Ratings
	var out []Badge
	if is(r.Consequences, 5) {
		out = append(out, BadgeUrgent)
	}
	if is(r.Impact, 5) && r.Consequences != nil && *r.Consequences >= 4 {
		out = append(out, BadgeCritical)
	}
	if IsMonster(t) {
		out = append(out, BadgeMonster)
	}
	if is(r.Leverage, 2) {
		out = append(out, BadgeLeverage)
	}
	if r.Friction != nil && *r.Friction >= 4 {
		out = append(out, BadgeFriction)
	}
	return out
}

// IsUrgent reports whether consequences are rated at the maximum.
func IsUrgent(t Task) bool {
	return is(t.Consequences, 5)
}

func is(p *int, v int) bool {
	return p != nil && *p == v
}

func valueOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
