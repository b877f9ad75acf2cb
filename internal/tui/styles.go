package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent   = lipgloss.Color("#B48EAD")
	muted    = lipgloss.Color("#6C7086")
	green    = lipgloss.Color("#8BC34A")
	red      = lipgloss.Color("#E53935")
	yellow   = lipgloss.Color("#FFC107")
	border   = lipgloss.Color("#45475A")
	selected = lipgloss.Color("#CBA6F7")
)

// Styles holds every style the UI renders with
type Styles struct {
	Title    lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Upright  lipgloss.Style
	Reversed lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style

	Pane        lipgloss.Style
	FocusedPane lipgloss.Style
}

func DefaultStyles() Styles {
	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)

	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		Label:    lipgloss.NewStyle().Foreground(accent),
		Value:    lipgloss.NewStyle().Bold(true),
		Upright:  lipgloss.NewStyle().Foreground(green).Bold(true),
		Reversed: lipgloss.NewStyle().Foreground(red).Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Error:    lipgloss.NewStyle().Foreground(red),
		Success:  lipgloss.NewStyle().Foreground(green),
		Warning:  lipgloss.NewStyle().Foreground(yellow),

		Pane:        pane,
		FocusedPane: pane.BorderForeground(selected),
	}
}
