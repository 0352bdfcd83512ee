package ui

import "github.com/charmbracelet/lipgloss"

// Palette is the set of colors a Theme is built from.
type Palette struct {
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Dim     lipgloss.Color
	Divider lipgloss.Color
	Good    lipgloss.Color
	Warn    lipgloss.Color
	Bad     lipgloss.Color
	Special lipgloss.Color
}

// Colors used throughout the TUI.
var (
	DarkPalette = Palette{
		Accent:  lipgloss.Color("#00FFFF"),
		Text:    lipgloss.Color("#FFFFFF"),
		Dim:     lipgloss.Color("#666666"),
		Divider: lipgloss.Color("#444444"),
		Good:    lipgloss.Color("#00FF00"),
		Warn:    lipgloss.Color("#FFFF00"),
		Bad:     lipgloss.Color("#FF0000"),
		Special: lipgloss.Color("#FF00FF"),
	}

	LightPalette = Palette{
		Accent:  lipgloss.Color("#005F87"),
		Text:    lipgloss.Color("#000000"),
		Dim:     lipgloss.Color("#767676"),
		Divider: lipgloss.Color("#BCBCBC"),
		Good:    lipgloss.Color("#008700"),
		Warn:    lipgloss.Color("#AF8700"),
		Bad:     lipgloss.Color("#D70000"),
		Special: lipgloss.Color("#8700AF"),
	}
)

// Theme holds the styles reused by UI components.
type Theme struct {
	Dark bool

	Title        lipgloss.Style
	PanelTitle   lipgloss.Style
	Selected     lipgloss.Style
	Dim          lipgloss.Style
	Divider      lipgloss.Style
	Error        lipgloss.Style
	ErrorText    lipgloss.Style
	Notice       lipgloss.Style
	Spinner      lipgloss.Style
	Clean        lipgloss.Style
	Threat       lipgloss.Style
	Badge        lipgloss.Style
	ExpiredBadge lipgloss.Style
	FooterKey    lipgloss.Style
	FooterDesc   lipgloss.Style
	Timestamp    lipgloss.Style
	Input        lipgloss.Style
	Modal        lipgloss.Style
	ModalTitle   lipgloss.Style
}

// NewTheme returns the dark or light theme.
func NewTheme(dark bool) Theme {
	p := LightPalette
	if dark {
		p = DarkPalette
	}

	return Theme{
		Dark: dark,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Accent),

		PanelTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Text),

		Selected: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true),

		Dim: lipgloss.NewStyle().
			Foreground(p.Dim),

		Divider: lipgloss.NewStyle().
			Foreground(p.Divider),

		Error: lipgloss.NewStyle().
			Foreground(p.Bad).
			Bold(true),

		ErrorText: lipgloss.NewStyle().
			Foreground(p.Bad),

		Notice: lipgloss.NewStyle().
			Foreground(p.Good),

		Spinner: lipgloss.NewStyle().
			Foreground(p.Special),

		Clean: lipgloss.NewStyle().
			Foreground(p.Good).
			Bold(true),

		Threat: lipgloss.NewStyle().
			Foreground(p.Bad).
			Bold(true),

		Badge: lipgloss.NewStyle().
			Foreground(p.Good).
			Bold(true),

		ExpiredBadge: lipgloss.NewStyle().
			Foreground(p.Bad).
			Bold(true),

		FooterKey: lipgloss.NewStyle().
			Foreground(p.Warn).
			Bold(true),

		FooterDesc: lipgloss.NewStyle().
			Foreground(p.Dim),

		Timestamp: lipgloss.NewStyle().
			Foreground(p.Dim),

		Input: lipgloss.NewStyle().
			Foreground(p.Warn),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Accent).
			Padding(1, 2),

		ModalTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Accent),
	}
}
