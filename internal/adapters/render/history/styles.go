package history

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	day     lipgloss.Style
	stamp   lipgloss.Style
	text    lipgloss.Style
	section lipgloss.Style
	empty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		day:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		stamp:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		text:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		section: lipgloss.NewStyle().MarginTop(1),
		empty:   lipgloss.NewStyle().Faint(true),
	}
}
