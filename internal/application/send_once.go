package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/minechat/internal/domain"
	"github.com/bnema/minechat/internal/ports"
	"go.uber.org/zap"
)

var ErrCredentialsRequired = errors.New("either a token or a nickname is required")

type SendStage int

const (
	SendConnecting SendStage = iota
	SendIdentifying
	SendSubmitting
)

// SendProgress describes what SendOnce is doing. Current is the 1-based
// index of the message being written while Stage is SendSubmitting.
type SendProgress struct {
	Stage    SendStage
	Current  int
	Total    int
	Nickname string
}

// SendOnce connects, identifies with creds when the server asks for it and
// submits messages in order. The returned identity is zero when the server
// did not ask for one. progress may be nil.
func SendOnce(ctx context.Context, dialer ports.Dialer, address string, creds domain.Credentials, messages []string, progress func(SendProgress), logger *zap.Logger) (domain.Identity, error) {
	if !creds.Available() {
		return domain.Identity{}, ErrCredentialsRequired
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if progress == nil {
		progress = func(SendProgress) {}
	}

	total := len(messages)
	progress(SendProgress{Stage: SendConnecting, Total: total})

	conn, err := dialer.Dial(ctx, address)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("open send connection: %w", err)
	}
	defer conn.Close()

	greeting, err := conn.ReadLine()
	if err != nil {
		return domain.Identity{}, fmt.Errorf("read greeting: %w", err)
	}

	var identity domain.Identity
	if strings.Contains(greeting, HandshakeMarker) {
		progress(SendProgress{Stage: SendIdentifying, Total: total})
		identity, err = NewHandshake(StaticCredentials(creds), 0, logger).Perform(ctx, conn)
		if err != nil {
			return domain.Identity{}, fmt.Errorf("handshake: %w", err)
		}
	}

	for i, message := range messages {
		progress(SendProgress{Stage: SendSubmitting, Current: i + 1, Total: total, Nickname: identity.Nickname})
		if err := SubmitMessage(conn, message); err != nil {
			return identity, fmt.Errorf("message %d: %w", i+1, err)
		}
		logger.Debug("message submitted", zap.Int("index", i+1))
	}

	return identity, nil
}
