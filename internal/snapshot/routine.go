package snapshot

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Routine is a reusable checklist. rack stores routines but does not act
// on them.
type Routine struct {
	ID    string        `json:"id" yaml:"id"`
	Name  string        `json:"name" yaml:"name"`
	Items []RoutineItem `json:"items" yaml:"items"`
}

// ItemKind discriminates RoutineItem.
type ItemKind int

const (
	ItemPlainText ItemKind = iota
	ItemTemplate
)

// Template is a routine item that expands into a task.
type Template struct {
	Title   string `json:"title" yaml:"title"`
	Minutes *int   `json:"minutes,omitempty" yaml:"minutes,omitempty"`
	Tag     string `json:"tag,omitempty" yaml:"tag,omitempty"`
}

// RoutineItem is either plain text or a task template. On the wire a plain
// item is a bare string and a template is an object.
type RoutineItem struct {
	Kind     ItemKind
	Text     string
	Template Template
}

// PlainItem returns a plain-text routine item.
func PlainItem(text string) RoutineItem {
	return RoutineItem{Kind: ItemPlainText, Text: text}
}

// TemplateItem returns a template routine item.
func TemplateItem(t Template) RoutineItem {
	return RoutineItem{Kind: ItemTemplate, Template: t}
}

// Label is the item's display text.
func (i RoutineItem) Label() string {
	if i.Kind == ItemTemplate {
		return i.Template.Title
	}
	return i.Text
}

func (i RoutineItem) MarshalJSON() ([]byte, error) {
	if i.Kind == ItemTemplate {
		return json.Marshal(i.Template)
	}
	return json.Marshal(i.Text)
}

func (i *RoutineItem) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*i = PlainItem(text)
		return nil
	}
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("routine item must be a string or an object: %w", err)
	}
	*i = TemplateItem(t)
	return nil
}

func (i RoutineItem) MarshalYAML() (any, error) {
	if i.Kind == ItemTemplate {
		return i.Template, nil
	}
	return i.Text, nil
}

func (i *RoutineItem) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*i = PlainItem(node.Value)
		return nil
	case yaml.MappingNode:
		var t Template
		if err := node.Decode(&t); err != nil {
			return err
		}
		*i = TemplateItem(t)
		return nil
	}
	return fmt.Errorf("line %d: routine item must be a string or a mapping", node.Line)
}
