package planner

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rnwolfe/rack/internal/task"
)

// MaxTop3 is the size of the daily focus set.
const MaxTop3 = 3

// Candidate is a task scored for Top-3 selection.
type Candidate struct {
	Task    task.Task
	Minutes int // buffered
	Urgent  bool
	Monster bool // effective, subtask-aware
	Score   int
}

// Suggestion is a proposed Top-3. It is not persisted until applied.
type Suggestion struct {
	Suggested    []task.Task
	UsedMinutes  int
	Capacity     int
	Message      string
	MonsterCount int
	LockedCount  int
}

// SelectTop3 seeds the selection with locked items, then greedily adds
// candidates (urgent first, then by score) while fewer than MaxTop3 are
// chosen, no second monster is added and capacity holds.
func SelectTop3(locked, candidates []Candidate, capacity int) Suggestion {
	s := Suggestion{Capacity: capacity, LockedCount: len(locked)}
	for _, c := range locked {
		s.Suggested = append(s.Suggested, c.Task)
		s.UsedMinutes += c.Minutes
		if c.Monster {
			s.MonsterCount++
		}
	}

	ranked := append([]Candidate(nil), candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Urgent != ranked[j].Urgent {
			return ranked[i].Urgent
		}
		return ranked[i].Score > ranked[j].Score
	})

	var monsterSkips, sizeSkips int
	for _, c := range ranked {
		if len(s.Suggested) >= MaxTop3 {
			break
		}
		if c.Monster && s.MonsterCount > 0 {
			monsterSkips++
			continue
		}
		if s.UsedMinutes+c.Minutes > capacity {
			sizeSkips++
			continue
		}
		s.Suggested = append(s.Suggested, c.Task)
		s.UsedMinutes += c.Minutes
		if c.Monster {
			s.MonsterCount++
		}
	}

	switch {
	case len(candidates) == 0 && len(locked) == 0:
		s.Message = "No rated tasks for today. Rate a few to get a suggestion."
	case len(s.Suggested) == 0 && capacity-s.UsedMinutes <= 0:
		s.Message = "No capacity left today."
	case len(s.Suggested) == 0 && allMonsters(candidates):
		s.Message = fmt.Sprintf("Every candidate is oversized for %d minutes of capacity. Break one into subtasks.", capacity)
	case len(s.Suggested) == 0:
		s.Message = fmt.Sprintf("Nothing fits the %d minutes of capacity left.", capacity)
	case len(s.Suggested) < MaxTop3 && len(candidates) >= MaxTop3:
		s.Message = fmt.Sprintf("Only %d task(s) fit %d minutes of capacity.", len(s.Suggested), capacity)
		if monsterSkips > 0 {
			s.Message += fmt.Sprintf(" Skipped %d as a second monster.", monsterSkips)
		}
		if sizeSkips > 0 {
			s.Message += fmt.Sprintf(" %d did not fit.", sizeSkips)
		}
	}
	return s
}

func allMonsters(cs []Candidate) bool {
	for _, c := range cs {
		if !c.Monster {
			return false
		}
	}
	return len(cs) > 0
}

// isLockedMember reports whether t is kept unconditionally by the selector.
// Rating and status do not matter: a locked member holds its slot and its
// monster status until it is unset or finished.
func isLockedMember(t task.Task, today string) bool {
	return t.HasValidTop3(today) && t.Top3Locked
}

// SuggestTop3 proposes today's focus set without changing anything.
func (p *Planner) SuggestTop3(ctx context.Context) (Suggestion, error) {
	all, err := p.allTasks(ctx)
	if err != nil {
		return Suggestion{}, err
	}
	return p.suggest(ctx, all)
}

func (p *Planner) suggest(ctx context.Context, all []task.Task) (Suggestion, error) {
	today := p.today()
	capacity, err := p.UsableCapacity(ctx, true)
	if err != nil {
		return Suggestion{}, err
	}

	buf := p.newBuffer()
	candidate := func(t task.Task) (Candidate, error) {
		m, err := buf.minutesOrZero(ctx, t)
		if err != nil {
			return Candidate{}, err
		}
		return Candidate{
			Task:    t,
			Minutes: m,
			Urgent:  task.IsUrgent(t),
			Monster: task.IsMonsterEffective(t, all),
			Score:   task.PriorityScore(t),
		}, nil
	}

	// Top3Members is ordered, so locked keeps its slot order.
	var locked, candidates []Candidate
	for _, t := range Top3Members(all, today) {
		if !isLockedMember(t, today) {
			continue
		}
		c, err := candidate(t)
		if err != nil {
			return Suggestion{}, err
		}
		locked = append(locked, c)
	}
	for _, t := range TodayItems(all, today) {
		if !task.IsRated(t) || isLockedMember(t, today) {
			continue
		}
		c, err := candidate(t)
		if err != nil {
			return Suggestion{}, err
		}
		candidates = append(candidates, c)
	}
	return SelectTop3(locked, candidates, capacity), nil
}

// ApplyTop3Suggestion computes a suggestion and writes it: today's unlocked
// members that were not reselected lose membership, locked members keep
// their slot and new members are numbered after them.
func (p *Planner) ApplyTop3Suggestion(ctx context.Context) (Suggestion, error) {
	p.top3Mu.Lock()
	defer p.top3Mu.Unlock()

	all, err := p.allTasks(ctx)
	if err != nil {
		return Suggestion{}, err
	}
	s, err := p.suggest(ctx, all)
	if err != nil {
		return s, err
	}

	today := p.today()
	chosen := make(map[string]bool, len(s.Suggested))
	for _, t := range s.Suggested {
		chosen[t.ID] = true
	}
	for _, t := range all {
		if t.IsTop3 && t.Top3Date == today && !t.Top3Locked && !chosen[t.ID] {
			t.ClearTop3()
			if err := p.put(ctx, &t); err != nil {
				return s, err
			}
		}
	}
	next := 0
	for _, t := range s.Suggested {
		if isLockedMember(t, today) && t.Top3Order >= next {
			next = t.Top3Order + 1
		}
	}
	for i, t := range s.Suggested {
		if isLockedMember(t, today) {
			continue
		}
		t.IsTop3 = true
		t.Top3Order = next
		next++
		t.Top3Date = today
		t.Top3Locked = false
		if err := p.put(ctx, &t); err != nil {
			return s, err
		}
		s.Suggested[i] = t
	}
	return s, nil
}

// SetTop3 adds or removes a task from today's focus set. A manual toggle
// locks the task in so later suggestions keep it. Additions that would make
// a second monster or a fourth member are refused with a *ConstraintError.
func (p *Planner) SetTop3(ctx context.Context, id string, on, manual bool) (task.Task, error) {
	p.top3Mu.Lock()
	defer p.top3Mu.Unlock()

	t, err := p.tasks.Get(ctx, id)
	if err != nil {
		return task.Task{}, err
	}
	if !on {
		t.ClearTop3()
		if err := p.put(ctx, t); err != nil {
			return task.Task{}, err
		}
		return *t, nil
	}

	all, err := p.allTasks(ctx)
	if err != nil {
		return task.Task{}, err
	}
	today := p.today()
	members := Top3Members(all, today)
	member := t.HasValidTop3(today)

	if !member {
		if task.IsMonsterEffective(*t, all) {
			for _, m := range members {
				if task.IsMonsterEffective(m, all) {
					return task.Task{}, &ConstraintError{
						Code:    CodeMonsterLimit,
						Message: fmt.Sprintf("%q is already a monster in today's Top 3; only one big or uncertain task at a time", m.Description),
					}
				}
			}
		}
		if len(members) >= MaxTop3 {
			return task.Task{}, &ConstraintError{
				Code:    CodeTop3Full,
				Message: "Top 3 is full; remove a task first",
			}
		}
		t.Top3Order = len(members)
	}
	t.IsTop3 = true
	t.Top3Date = today
	t.Top3Locked = manual
	if err := p.put(ctx, t); err != nil {
		return task.Task{}, err
	}
	return *t, nil
}

// IsConstraint reports whether err is a Top-3 rejection with the given code.
func IsConstraint(err error, code ConstraintCode) bool {
	var ce *ConstraintError
	return errors.As(err, &ce) && ce.Code == code
}
