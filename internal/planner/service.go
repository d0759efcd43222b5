package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/rnwolfe/rack/internal/task"
)

// AddTask captures a new task. Only the description is required.
func (p *Planner) AddTask(ctx context.Context, nt task.NewTask) (task.Task, error) {
	desc := strings.TrimSpace(nt.Description)
	if desc == "" {
		return task.Task{}, &task.ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if err := nt.Fields.Validate(); err != nil {
		return task.Task{}, err
	}
	if err := p.checkParent(ctx, "", nt.Fields); err != nil {
		return task.Task{}, err
	}

	now := p.now()
	t := task.Task{
		ID:        task.NewID(),
		Status:    task.StatusInbox,
		CreatedAt: now,
	}
	nt.Fields.Apply(&t)
	t.Description = desc
	if nt.Status != "" {
		t.Status = nt.Status
	}
	if t.IsDone() {
		t.CompletedAt = &now
	}
	if err := p.put(ctx, &t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// UpdateTask merges a validated partial update into a task.
func (p *Planner) UpdateTask(ctx context.Context, id string, u task.Update) (task.Task, error) {
	if err := u.Validate(); err != nil {
		return task.Task{}, err
	}
	t, err := p.tasks.Get(ctx, id)
	if err != nil {
		return task.Task{}, err
	}
	if err := p.checkParent(ctx, id, u); err != nil {
		return task.Task{}, err
	}

	wasDone := t.IsDone()
	u.Apply(t)
	switch {
	case t.IsDone() && !wasDone:
		now := p.now()
		t.CompletedAt = &now
		t.ClearTop3()
	case !t.IsDone() && wasDone:
		t.CompletedAt = nil
	}
	if err := p.put(ctx, t); err != nil {
		return task.Task{}, err
	}
	return *t, nil
}

// checkParent rejects a parent that does not exist, is the task itself, or
// is itself a subtask.
func (p *Planner) checkParent(ctx context.Context, id string, u task.Update) error {
	parentID, ok := u.ParentID.Value()
	if !ok || parentID == "" {
		return nil
	}
	if parentID == id {
		return &task.ValidationError{Field: "parent_id", Reason: "a task cannot be its own parent"}
	}
	parent, err := p.tasks.Get(ctx, parentID)
	if err != nil {
		return err
	}
	if parent.ParentID != "" {
		return &task.ValidationError{Field: "parent_id", Reason: "subtasks cannot have subtasks"}
	}
	return nil
}

// DeleteTask removes a task and its subtasks.
func (p *Planner) DeleteTask(ctx context.Context, id string) error {
	if _, err := p.tasks.Get(ctx, id); err != nil {
		return err
	}
	all, err := p.allTasks(ctx)
	if err != nil {
		return err
	}
	for _, t := range all {
		if t.ParentID == id {
			if err := p.tasks.Delete(ctx, t.ID); err != nil {
				return fmt.Errorf("deleting subtask %s: %w", t.ID, err)
			}
		}
	}
	return p.tasks.Delete(ctx, id)
}

// GetTask returns a task by id, or task.ErrNotFound.
func (p *Planner) GetTask(ctx context.Context, id string) (task.Task, error) {
	t, err := p.tasks.Get(ctx, id)
	if err != nil {
		return task.Task{}, err
	}
	return *t, nil
}

// ListByStatus returns top-level tasks in a status, in tiered priority order.
func (p *Planner) ListByStatus(ctx context.Context, status task.Status) ([]task.Task, error) {
	all, err := p.allTasks(ctx)
	if err != nil {
		return nil, err
	}
	var out []task.Task
	for _, t := range all {
		if t.Status == status && t.ParentID == "" {
			out = append(out, t)
		}
	}
	task.SortByPriority(out, p.today())
	return out, nil
}

// Subtasks returns the children of parentID in priority order.
func (p *Planner) Subtasks(ctx context.Context, parentID string) ([]task.Task, error) {
	all, err := p.allTasks(ctx)
	if err != nil {
		return nil, err
	}
	var out []task.Task
	for _, t := range all {
		if t.ParentID == parentID {
			out = append(out, t)
		}
	}
	task.SortByPriority(out, p.today())
	return out, nil
}

// FindTasks fuzzy-matches keyword against open task descriptions, best
// match first.
func (p *Planner) FindTasks(ctx context.Context, keyword string) ([]task.Match, error) {
	all, err := p.allTasks(ctx)
	if err != nil {
		return nil, err
	}
	open := all[:0]
	for _, t := range all {
		if !t.IsDone() {
			open = append(open, t)
		}
	}
	return task.Find(open, keyword), nil
}

// StartTask stamps the start time used to measure actual minutes.
func (p *Planner) StartTask(ctx context.Context, id string) (task.Task, error) {
	t, err := p.tasks.Get(ctx, id)
	if err != nil {
		return task.Task{}, err
	}
	if t.IsDone() {
		return task.Task{}, &task.ValidationError{Field: "status", Reason: "task is already done"}
	}
	now := p.now()
	t.StartedAt = &now
	if err := p.put(ctx, t); err != nil {
		return task.Task{}, err
	}
	return *t, nil
}
