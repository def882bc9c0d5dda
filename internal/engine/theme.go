package engine

import "github.com/charmbracelet/lipgloss"

// Theme defines all colors used by the TUI front end.
// Use DarkTheme() or LightTheme() to get a pre-built theme,
// or construct a custom Theme.
type Theme struct {
	Primary   lipgloss.Color // warm accent, title
	Secondary lipgloss.Color // cool accent, current step
	Error     lipgloss.Color // errors, failed steps
	Warning   lipgloss.Color // paused state
	Success   lipgloss.Color // running state, completed steps
	Info      lipgloss.Color // counters
	Text      lipgloss.Color // primary text
	TextMuted lipgloss.Color // secondary text, hints, timestamps
	Border    lipgloss.Color // separators, borders
}

// DarkTheme returns the default dark theme.
func DarkTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("#fab283"),
		Secondary: lipgloss.Color("#5c9cf5"),
		Error:     lipgloss.Color("#e06c75"),
		Warning:   lipgloss.Color("#f5a742"),
		Success:   lipgloss.Color("#7fd88f"),
		Info:      lipgloss.Color("#56b6c2"),
		Text:      lipgloss.Color("#eeeeee"),
		TextMuted: lipgloss.Color("#808080"),
		Border:    lipgloss.Color("#484848"),
	}
}

// LightTheme returns a light theme for bright terminal backgrounds.
func LightTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("#b35c00"),
		Secondary: lipgloss.Color("#0550ae"),
		Error:     lipgloss.Color("#cf222e"),
		Warning:   lipgloss.Color("#bf8700"),
		Success:   lipgloss.Color("#116329"),
		Info:      lipgloss.Color("#0969da"),
		Text:      lipgloss.Color("#1f2328"),
		TextMuted: lipgloss.Color("#656d76"),
		Border:    lipgloss.Color("#d0d7de"),
	}
}

// ThemeByName returns a theme by name. Defaults to dark.
func ThemeByName(name string) Theme {
	switch name {
	case "light":
		return LightTheme()
	default:
		return DarkTheme()
	}
}

// styles holds all lipgloss styles derived from a Theme.
type styles struct {
	title   lipgloss.Style
	running lipgloss.Style
	paused  lipgloss.Style
	idle    lipgloss.Style
	step    lipgloss.Style
	counter lipgloss.Style
	err     lipgloss.Style
	dim     lipgloss.Style
	text    lipgloss.Style
	border  lipgloss.Style

	hintKey  lipgloss.Style
	hintDesc lipgloss.Style
}

// newStyles builds all styles from a theme.
func newStyles(t Theme) styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		running: lipgloss.NewStyle().Foreground(t.Success),
		paused:  lipgloss.NewStyle().Foreground(t.Warning),
		idle:    lipgloss.NewStyle().Foreground(t.TextMuted),
		step:    lipgloss.NewStyle().Bold(true).Foreground(t.Secondary),
		counter: lipgloss.NewStyle().Foreground(t.Info),
		err:     lipgloss.NewStyle().Foreground(t.Error),
		dim:     lipgloss.NewStyle().Foreground(t.TextMuted),
		text:    lipgloss.NewStyle().Foreground(t.Text),
		border:  lipgloss.NewStyle().Foreground(t.Border),

		hintKey:  lipgloss.NewStyle().Foreground(t.Text),
		hintDesc: lipgloss.NewStyle().Foreground(t.TextMuted),
	}
}
