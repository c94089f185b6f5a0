package application

import (
	"context"

	"github.com/bnema/minechat/internal/domain"
	"github.com/bnema/minechat/internal/queue"
	"go.uber.org/zap"
)

// CredentialWatcher applies one credential edit and then fails the session,
// so the next session handshakes with the new identity. Every event forces a
// reconnect, including edits that leave the active identity unchanged.
type CredentialWatcher struct {
	inputs *queue.Queue[domain.CredentialEvent]
	store  CredentialWriter
	logger *zap.Logger
}

func NewCredentialWatcher(inputs *queue.Queue[domain.CredentialEvent], store CredentialWriter, logger *zap.Logger) *CredentialWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CredentialWatcher{inputs: inputs, store: store, logger: logger}
}

func (w *CredentialWatcher) Run(ctx context.Context) error {
	event, err := w.inputs.Get(ctx)
	if err != nil {
		return err
	}

	switch e := event.(type) {
	case domain.NicknameChanged:
		w.store.SetNickname(e.Nickname)
		w.logger.Info("nickname changed", zap.String("nickname", e.Nickname))
	case domain.TokenChanged:
		w.store.SetToken(e.Token)
		w.logger.Info("token changed")
	}

	return domain.ErrForcedReconnect
}
