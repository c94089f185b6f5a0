package history

import (
	"fmt"
	"io"

	"github.com/bnema/minechat/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

const dayLayout = "02 Jan 2006"

type RenderOptions struct {
	// Tail limits output to the most recent messages. Zero shows everything.
	Tail int
}

type daySection struct {
	day     string
	records []domain.HistoryRecord
}

// model is the whole page: the stored count and the days that survive the
// tail cut, oldest first. It renders once and quits.
type model struct {
	total    int
	shown    int
	sections []daySection
	styles   styles
}

func newModel(records []domain.HistoryRecord, opts RenderOptions) model {
	m := model{total: len(records), styles: newStyles()}

	if opts.Tail > 0 && len(records) > opts.Tail {
		records = records[len(records)-opts.Tail:]
	}
	m.shown = len(records)

	for _, record := range records {
		day := record.At.Format(dayLayout)
		if n := len(m.sections); n == 0 || m.sections[n-1].day != day {
			m.sections = append(m.sections, daySection{day: day})
		}
		last := &m.sections[len(m.sections)-1]
		last.records = append(last.records, record)
	}

	return m
}

func (m model) Init() tea.Cmd {
	return tea.Quit
}

func (m model) Update(tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

func (m model) View() string {
	return renderView(m)
}

func Render(records []domain.HistoryRecord, opts RenderOptions) (string, error) {
	final, err := tea.NewProgram(
		newModel(records, opts),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	).Run()
	if err != nil {
		return "", err
	}

	page, ok := final.(model)
	if !ok {
		return "", fmt.Errorf("unexpected final history model type %T", final)
	}

	return page.View(), nil
}
