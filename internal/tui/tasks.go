package tui

import (
	"fmt"
	"strings"

	"github.com/rnwolfe/rack/internal/task"
	"github.com/rnwolfe/rack/internal/ui"
)

// TaskItem adapts a task to the picker.
type TaskItem struct {
	Task task.Task
	// Minutes is the buffered estimate shown next to the task; zero hides it.
	Minutes int
}

func (t TaskItem) FilterValue() string { return t.Task.Description }

func (t TaskItem) Title() string {
	if t.Task.IsTop3 {
		return ui.IconTop3 + " " + t.Task.Description
	}
	return t.Task.Description
}

func (t TaskItem) Description() string {
	var parts []string
	if s, ok := task.CalculateScore(t.Task); ok {
		parts = append(parts, fmt.Sprintf("score %d", s.Priority))
	}
	if t.Minutes > 0 {
		parts = append(parts, ui.Minutes(t.Minutes))
	}
	if t.Task.DueDate != "" {
		parts = append(parts, "due "+t.Task.DueDate)
	}
	parts = append(parts, t.Task.CategoryTag())
	return strings.Join(parts, " "+ui.IconDot+" ")
}

// PickTask shows items in a picker and returns the chosen task, or nil when
// the user canceled.
func PickTask(items []TaskItem, opts ...PickerOption) (*task.Task, error) {
	list := make([]Item, len(items))
	for i, it := range items {
		list[i] = it
	}
	chosen, err := Run(list, opts...)
	if err != nil {
		return nil, err
	}
	return chosenTask(chosen), nil
}

func chosenTask(item Item) *task.Task {
	it, ok := item.(TaskItem)
	if !ok {
		return nil
	}
	t := it.Task
	return &t
}
