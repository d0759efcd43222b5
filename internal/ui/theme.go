package ui

import "github.com/charmbracelet/lipgloss"

// rack's palette: warm gold for focus, cool stone for everything else.
var (
	Gold     = lipgloss.Color("#FFD700")
	Amber    = lipgloss.Color("#FFBF00")
	Copper   = lipgloss.Color("#B87333")
	Stone    = lipgloss.Color("#8B8680")
	Emerald  = lipgloss.Color("#50C878")
	Ruby     = lipgloss.Color("#E0115F")
	Sapphire = lipgloss.Color("#0F52BA")
	Violet   = lipgloss.Color("#8F5BD6")
	Dim      = lipgloss.Color("#666666")
	Bright   = lipgloss.Color("#FFFFFF")

	// Semantic styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Gold)

	Subtitle = lipgloss.NewStyle().
			Foreground(Amber)

	Success = lipgloss.NewStyle().
		Foreground(Emerald)

	Error = lipgloss.NewStyle().
		Foreground(Ruby)

	Warning = lipgloss.NewStyle().
		Foreground(Amber)

	Info = lipgloss.NewStyle().
		Foreground(Sapphire)

	Muted = lipgloss.NewStyle().
		Foreground(Dim)

	Accent = lipgloss.NewStyle().
		Foreground(Gold).
		Bold(true)

	Tag = lipgloss.NewStyle().
		Foreground(Bright).
		Background(Copper).
		Padding(0, 1).
		Bold(true)

	KeyStyle = lipgloss.NewStyle().
			Foreground(Amber).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(Bright)
)

// badgeColors maps rating badges to their background.
var badgeColors = map[string]lipgloss.Color{
	"URGENT":   Ruby,
	"CRITICAL": Copper,
	"MONSTER":  Violet,
	"LEVERAGE": Emerald,
	"FRICTION": Stone,
}

// Badge renders a rating badge. Unknown badges use the tag style.
func Badge(name string) string {
	c, ok := badgeColors[name]
	if !ok {
		return Tag.Render(name)
	}
	return Tag.Background(c).Render(name)
}

const (
	IconRack    = "▤ "
	IconTop3    = "★"
	IconToday   = "☀"
	IconDone    = "✓"
	IconOverdue = "🔴"
	IconMonster = "🐉"
	IconRecur   = "↻"
	IconBackup  = "💾"
	IconFire    = "🔥"
	IconLock    = "🔒"
	IconWarn    = "⚠️ "
	IconError   = "✗ "
	IconOk      = "✓ "
	IconArrow   = "→"
	IconDot     = "·"
)
