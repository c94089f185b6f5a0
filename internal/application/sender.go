package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/minechat/internal/domain"
	"github.com/bnema/minechat/internal/ports"
	"github.com/bnema/minechat/internal/queue"
	"go.uber.org/zap"
)

// Sender owns the outbound socket. It runs the handshake once per
// connection and then drains the outbound queue.
type Sender struct {
	dialer    ports.Dialer
	address   string
	handshake *Handshake
	outbound  *queue.Queue[string]
	status    *queue.Queue[domain.StatusEvent]
	logger    *zap.Logger
}

func NewSender(dialer ports.Dialer, address string, handshake *Handshake, queues Queues, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Sender{
		dialer:    dialer,
		address:   address,
		handshake: handshake,
		outbound:  queues.Outbound,
		status:    queues.Status,
		logger:    logger,
	}
}

func (s *Sender) Run(ctx context.Context, heartbeats *queue.Queue[domain.Heartbeat]) error {
	conn, err := s.dialer.Dial(ctx, s.address)
	if err != nil {
		return fmt.Errorf("open send connection: %w", err)
	}
	defer conn.Close()

	greeting, err := conn.ReadLine()
	if err != nil {
		return fmt.Errorf("read greeting: %w", err)
	}
	s.logger.Debug("greeting received", zap.String("line", greeting))

	if strings.Contains(greeting, HandshakeMarker) {
		identity, err := s.handshake.Perform(ctx, conn)
		if err != nil {
			return fmt.Errorf("handshake: %w", err)
		}
		s.logger.Info("identity confirmed", zap.String("nickname", identity.Nickname))

		s.status.Put(domain.SendStateChanged{State: domain.StateEstablished})
		s.status.Put(domain.NicknameReceived{Nickname: identity.Nickname})
		s.status.Put(domain.TokenReceived{Token: identity.AccountHash})
	}

	for {
		text, err := s.outbound.Get(ctx)
		if err != nil {
			return err
		}

		if err := SubmitMessage(conn, text); err != nil {
			return err
		}
		heartbeats.Put(domain.Heartbeat{Reason: "message sent"})
	}
}

// SubmitMessage writes text as one line followed by the empty line that
// ends a chat message. Embedded line breaks are flattened.
func SubmitMessage(conn ports.Conn, text string) error {
	text = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text)

	if err := conn.WriteLine(text); err != nil {
		return fmt.Errorf("submit message: %w", err)
	}
	if err := conn.WriteLine(""); err != nil {
		return fmt.Errorf("submit message terminator: %w", err)
	}

	return nil
}
