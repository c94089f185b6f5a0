// Package chat is the terminal front end of a running session: it shows the
// conversation, the connection status and forwards user input to the queues.
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/bnema/minechat/internal/application"
	"github.com/bnema/minechat/internal/domain"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	unknownNickname = "unknown"

	defaultWidth  = 80
	defaultHeight = 24
	chromeHeight  = 3
)

type displayLineMsg struct {
	line string
}

type statusMsg struct {
	event domain.StatusEvent
}

type queueClosedMsg struct{}

type model struct {
	ctx    context.Context
	queues application.Queues

	viewport viewport.Model
	input    textinput.Model
	styles   styles

	lines     []string
	nickname  string
	readState domain.ConnectionState
	sendState domain.ConnectionState
}

func newModel(ctx context.Context, queues application.Queues) model {
	input := textinput.New()
	input.Placeholder = "message, /nick NAME or /token HASH"
	input.Prompt = "> "
	input.Focus()

	m := model{
		ctx:      ctx,
		queues:   queues,
		viewport: viewport.New(defaultWidth, defaultHeight-chromeHeight),
		input:    input,
		styles:   newStyles(),
		nickname: unknownNickname,
	}
	m.input.Width = defaultWidth - len(input.Prompt)

	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		waitForLine(m.ctx, m.queues),
		waitForStatus(m.ctx, m.queues),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, 1)
		m.input.Width = max(msg.Width-len(m.input.Prompt)-1, 1)
		m.viewport.SetContent(strings.Join(m.lines, "\n"))
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			m.submit(m.input.Value())
			m.input.Reset()
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	case displayLineMsg:
		m.appendLine(msg.line)
		return m, waitForLine(m.ctx, m.queues)
	case statusMsg:
		m.applyStatus(msg.event)
		return m, waitForStatus(m.ctx, m.queues)
	case queueClosedMsg:
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewport.View(),
		m.renderStatusBar(),
		m.styles.input.Render(m.input.View()),
	)
}

func (m *model) submit(value string) {
	text := strings.TrimSpace(value)
	if text == "" {
		return
	}

	if arg, ok := command(text, "/nick"); ok {
		if arg != "" {
			m.queues.Credentials.Put(domain.NicknameChanged{Nickname: arg})
		}
		return
	}
	if arg, ok := command(text, "/token"); ok {
		if arg != "" {
			m.queues.Credentials.Put(domain.TokenChanged{Token: arg})
		}
		return
	}

	m.queues.Outbound.Put(value)
}

func (m *model) appendLine(line string) {
	atBottom := m.viewport.AtBottom()
	m.lines = append(m.lines, line)
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	if atBottom {
		m.viewport.GotoBottom()
	}
}

func (m *model) applyStatus(event domain.StatusEvent) {
	switch e := event.(type) {
	case domain.ReadStateChanged:
		m.readState = e.State
	case domain.SendStateChanged:
		m.sendState = e.State
	case domain.NicknameReceived:
		m.nickname = e.Nickname
	case domain.TokenReceived:
		// tokens stay off screen
	}
}

func (m model) renderStatusBar() string {
	return m.styles.status.Render(strings.Join([]string{
		m.styles.label.Render("Username:") + " " + m.nickname,
		m.styles.label.Render("Reading:") + " " + m.renderState(m.readState),
		m.styles.label.Render("Sending:") + " " + m.renderState(m.sendState),
	}, "  "))
}

func (m model) renderState(state domain.ConnectionState) string {
	if state == domain.StateEstablished {
		return m.styles.online.Render(state.Label())
	}
	return m.styles.offline.Render(state.Label())
}

// command reports whether text is the named slash command and returns its
// argument.
func command(text, name string) (string, bool) {
	if text == name {
		return "", true
	}
	rest, ok := strings.CutPrefix(text, name+" ")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

func waitForLine(ctx context.Context, queues application.Queues) tea.Cmd {
	return func() tea.Msg {
		line, err := queues.Display.Get(ctx)
		if err != nil {
			return queueClosedMsg{}
		}
		return displayLineMsg{line: line}
	}
}

func waitForStatus(ctx context.Context, queues application.Queues) tea.Cmd {
	return func() tea.Msg {
		event, err := queues.Status.Get(ctx)
		if err != nil {
			return queueClosedMsg{}
		}
		return statusMsg{event: event}
	}
}

// Run blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, queues application.Queues, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)

	_, err := tea.NewProgram(newModel(ctx, queues), opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
