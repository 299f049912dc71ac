package tui

import "github.com/charmbracelet/lipgloss"

// Color palette shared by all screens.
const (
	colorFg      = "#F8FAFC"
	colorFgMuted = "#94A3B8"
	colorPrimary = "#3B82F6"
	colorAccent  = "#06B6D4"
	colorError   = "#EF4444"
	colorBorder  = "#334155"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorFg)).
			Padding(0, 1).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(lipgloss.Color(colorBorder))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorPrimary))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorFgMuted))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorError))

	authorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorAccent))

	inputStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorFgMuted)).
			Padding(0, 1)
)
