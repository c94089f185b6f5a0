package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/minechat/internal/application"
	"github.com/bnema/minechat/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type sendProgressMsg application.SendProgress

type sendFinishedMsg struct {
	identity domain.Identity
	err      error
}

type sendFunc func(ctx context.Context, progress func(application.SendProgress)) (domain.Identity, error)

// sendProgressModel follows one SendOnce call: connecting, identifying and
// then each message in turn.
type sendProgressModel struct {
	spinner  spinner.Model
	address  string
	progress application.SendProgress

	finished bool
	identity domain.Identity
	err      error
}

func newSendProgressModel(address string) sendProgressModel {
	return sendProgressModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("42"))),
		),
		address: address,
	}
}

func (m sendProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m sendProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sendProgressMsg:
		m.progress = application.SendProgress(msg)
		return m, nil
	case sendFinishedMsg:
		m.finished = true
		m.identity = msg.identity
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m sendProgressModel) View() string {
	if m.finished {
		return ""
	}

	return m.spinner.View() + " " + describeSend(m.progress, m.address)
}

func describeSend(p application.SendProgress, address string) string {
	switch p.Stage {
	case application.SendConnecting:
		return fmt.Sprintf("Connecting to %s...", address)
	case application.SendIdentifying:
		return fmt.Sprintf("Identifying on %s...", address)
	}

	if p.Nickname == "" {
		return fmt.Sprintf("Sending message %d/%d...", p.Current, p.Total)
	}
	return fmt.Sprintf("Sending message %d/%d as %s...", p.Current, p.Total, p.Nickname)
}

// sendWithProgress runs send while the spinner on output reports each stage
// it passes through.
func sendWithProgress(ctx context.Context, output io.Writer, address string, send sendFunc) (domain.Identity, error) {
	p := tea.NewProgram(
		newSendProgressModel(address),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	go func() {
		identity, err := send(ctx, func(progress application.SendProgress) {
			p.Send(sendProgressMsg(progress))
		})
		p.Send(sendFinishedMsg{identity: identity, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return domain.Identity{}, err
	}

	result, ok := final.(sendProgressModel)
	if !ok {
		return domain.Identity{}, fmt.Errorf("unexpected final send model type %T", final)
	}

	return result.identity, result.err
}
