package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bnema/minechat/internal/domain"
	"github.com/bnema/minechat/internal/ports"
	"go.uber.org/zap"
)

// HandshakeMarker appears in the server greeting when it expects an identity.
const HandshakeMarker = "Enter your personal hash"

// Handshake authorises with a token or registers a nickname.
type Handshake struct {
	creds        CredentialReader
	pollInterval time.Duration
	logger       *zap.Logger
}

func NewHandshake(creds CredentialReader, pollInterval time.Duration, logger *zap.Logger) *Handshake {
	if pollInterval <= 0 {
		pollInterval = DefaultCredentialPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Handshake{creds: creds, pollInterval: pollInterval, logger: logger}
}

// Perform runs after the greeting has been read. A token takes precedence
// over a nickname.
func (h *Handshake) Perform(ctx context.Context, conn ports.Conn) (domain.Identity, error) {
	creds, err := h.awaitCredentials(ctx)
	if err != nil {
		return domain.Identity{}, err
	}

	if creds.Token != "" {
		return h.authorise(conn, creds.Token)
	}
	return h.register(conn, creds.Nickname)
}

func (h *Handshake) awaitCredentials(ctx context.Context) (domain.Credentials, error) {
	for {
		creds := h.creds.Credentials()
		if creds.Available() {
			return creds, nil
		}

		h.logger.Debug("waiting for credentials", zap.Duration("poll_interval", h.pollInterval))
		if err := sleep(ctx, h.pollInterval); err != nil {
			return domain.Credentials{}, err
		}
	}
}

func (h *Handshake) authorise(conn ports.Conn, token string) (domain.Identity, error) {
	return h.exchange(conn, token, domain.ErrAuthorisation)
}

func (h *Handshake) register(conn ports.Conn, nickname string) (domain.Identity, error) {
	if err := conn.WriteLine(""); err != nil {
		return domain.Identity{}, fmt.Errorf("request registration: %w", err)
	}

	prompt, err := conn.ReadLine()
	if err != nil {
		return domain.Identity{}, fmt.Errorf("read registration prompt: %w", err)
	}
	h.logger.Debug("registration prompt", zap.String("line", prompt))

	return h.exchange(conn, nickname, domain.ErrRegistration)
}

func (h *Handshake) exchange(conn ports.Conn, message string, rejected error) (domain.Identity, error) {
	if err := conn.WriteLine(message); err != nil {
		return domain.Identity{}, fmt.Errorf("submit handshake line: %w", err)
	}

	reply, err := conn.ReadLine()
	if err != nil {
		return domain.Identity{}, fmt.Errorf("read handshake reply: %w", err)
	}
	h.logger.Debug("handshake reply", zap.String("line", reply))

	identity, err := decodeIdentity(reply)
	if err != nil {
		h.logger.Error("received malformed data during handshake", zap.String("line", reply), zap.Error(err))
		return domain.Identity{}, err
	}
	if identity == nil {
		h.logger.Error("handshake rejected", zap.Error(rejected))
		return domain.Identity{}, rejected
	}

	return *identity, nil
}

// decodeIdentity returns nil unless the record names both the nickname and
// the account hash.
func decodeIdentity(reply string) (*domain.Identity, error) {
	var identity *domain.Identity
	if err := json.Unmarshal([]byte(reply), &identity); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", domain.ErrMalformedReply, reply, err)
	}
	if identity == nil || identity.Nickname == "" || identity.AccountHash == "" {
		return nil, nil
	}

	return identity, nil
}
