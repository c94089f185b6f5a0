package chat

import "github.com/charmbracelet/lipgloss"

type styles struct {
	status  lipgloss.Style
	label   lipgloss.Style
	online  lipgloss.Style
	offline lipgloss.Style
	input   lipgloss.Style
}

func newStyles() styles {
	return styles{
		status:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Padding(0, 1),
		label:   lipgloss.NewStyle().Bold(true),
		online:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		offline: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		input:   lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderTop(true).BorderForeground(lipgloss.Color("240")),
	}
}
