package history

import (
	"fmt"

	"github.com/bnema/minechat/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

func renderView(m model) string {
	header := fmt.Sprintf("messages: %d", m.total)
	if m.shown < m.total {
		header = fmt.Sprintf("messages: %d (last %d shown)", m.total, m.shown)
	}

	lines := []string{
		m.styles.title.Render("Chat history"),
		m.styles.header.Render(header),
	}

	if len(m.sections) == 0 {
		lines = append(lines, m.styles.empty.Render("No messages stored yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, section := range m.sections {
		lines = append(lines, renderSection(section, m.styles))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderSection(section daySection, s styles) string {
	rows := []string{s.day.Render(section.day)}
	for _, record := range section.records {
		rows = append(rows, renderRecord(record, s))
	}

	return s.section.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func renderRecord(record domain.HistoryRecord, s styles) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.stamp.Render(record.At.Format("15:04")),
		" ",
		s.text.Render(record.Text),
	)
}
