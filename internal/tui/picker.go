// Package tui holds rack's interactive terminal views.
package tui

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/rnwolfe/rack/internal/task"
	"github.com/rnwolfe/rack/internal/ui"
)

// Item is the interface that list items must implement for the picker.
type Item interface {
	// FilterValue returns the string used for fuzzy matching.
	FilterValue() string
	// Title returns the main display text.
	Title() string
	// Description returns optional secondary text (can be empty).
	Description() string
}

// PickerOption configures a Picker.
type PickerOption func(*Picker)

// WithTitle sets the heading displayed above the picker.
func WithTitle(title string) PickerOption {
	return func(p *Picker) { p.title = title }
}

// WithPrompt sets the search prompt character(s).
func WithPrompt(prompt string) PickerOption {
	return func(p *Picker) { p.prompt = prompt }
}

// WithHeight sets the maximum visible items (0 = auto).
func WithHeight(h int) PickerOption {
	return func(p *Picker) { p.height = h }
}

// Picker is a fuzzy-search list selector built on Bubbletea.
type Picker struct {
	title  string
	prompt string
	height int

	items    []Item
	filtered []scored
	query    string
	cursor   int
	offset   int // viewport scroll offset
	chosen   Item
	canceled bool

	termWidth  int
	termHeight int
}

type scored struct {
	item  Item
	score int
}

// NewPicker creates a Picker with the given items and options.
func NewPicker(items []Item, opts ...PickerOption) *Picker {
	p := &Picker{
		prompt:     "> ",
		height:     10,
		items:      items,
		termWidth:  80,
		termHeight: 24,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.applyFilter()
	return p
}

// Run shows a picker and returns the selected item, or nil if the user canceled.
func Run(items []Item, opts ...PickerOption) (Item, error) {
	p := NewPicker(items, opts...)
	m, err := tea.NewProgram(p, tea.WithAltScreen()).Run()
	if err != nil {
		return nil, fmt.Errorf("picker: %w", err)
	}
	result := m.(*Picker)
	if result.canceled {
		return nil, nil
	}
	return result.chosen, nil
}

// IsTTY returns true when stdin is connected to a terminal.
func IsTTY() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

func (p *Picker) Init() tea.Cmd {
	return nil
}

func (p *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.termWidth = msg.Width
		p.termHeight = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			p.canceled = true
			return p, tea.Quit

		case "enter":
			if len(p.filtered) > 0 {
				p.chosen = p.filtered[p.cursor].item
			}
			return p, tea.Quit

		case "up", "ctrl+p":
			if p.cursor > 0 {
				p.cursor--
				p.offset = min(p.offset, p.cursor)
			}

		case "down", "ctrl+n":
			if p.cursor < len(p.filtered)-1 {
				p.cursor++
				if vis := p.visibleHeight(); p.cursor >= p.offset+vis {
					p.offset = p.cursor - vis + 1
				}
			}

		case "backspace":
			if p.query != "" {
				_, size := utf8.DecodeLastRuneInString(p.query)
				p.query = p.query[:len(p.query)-size]
				p.applyFilter()
			}

		default:
			if msg.Type == tea.KeyRunes {
				p.query += string(msg.Runes)
				p.applyFilter()
			}
		}
	}
	return p, nil
}

func (p *Picker) View() string {
	var b strings.Builder

	if p.title != "" {
		b.WriteString("  " + ui.Title.Render(p.title) + "\n\n")
	}

	prompt := lipgloss.NewStyle().Foreground(ui.Gold).Bold(true).Render(p.prompt)
	b.WriteString("  " + prompt + p.query + lipgloss.NewStyle().Foreground(ui.Gold).Render("▎") + "\n\n")

	if len(p.filtered) == 0 {
		b.WriteString("  " + ui.Muted.Render("No matches") + "\n")
	} else {
		end := min(p.offset+p.visibleHeight(), len(p.filtered))
		for i := p.offset; i < end; i++ {
			b.WriteString(p.renderItem(p.filtered[i].item, i == p.cursor) + "\n")
		}
	}

	b.WriteString("\n")
	status := ui.Muted.Render(fmt.Sprintf("  %d/%d", len(p.filtered), len(p.items)))
	help := ui.Muted.Render(" · ↑↓ navigate · enter select · esc cancel")
	b.WriteString(status + help + "\n")
	return b.String()
}

func (p *Picker) visibleHeight() int {
	h := p.height
	if h <= 0 || h > p.termHeight-6 {
		h = p.termHeight - 6
	}
	return max(h, 3)
}

func (p *Picker) applyFilter() {
	p.filtered = p.filtered[:0]
	for _, item := range p.items {
		if ok, sc := task.FuzzyMatch(p.query, item.FilterValue()); ok {
			p.filtered = append(p.filtered, scored{item: item, score: sc})
		}
	}
	sort.SliceStable(p.filtered, func(i, j int) bool {
		return p.filtered[i].score > p.filtered[j].score
	})
	p.cursor = 0
	p.offset = 0
}

func (p *Picker) renderItem(item Item, selected bool) string {
	pointer := "  "
	titleStyle := lipgloss.NewStyle()
	if selected {
		pointer = ui.Accent.Render(ui.IconArrow + " ")
		titleStyle = titleStyle.Foreground(ui.Gold).Bold(true)
	}

	line := "  " + pointer + titleStyle.Render(item.Title())
	if desc := item.Description(); desc != "" {
		line += "  " + ui.Muted.Render(desc)
	}
	return line
}
