package application

import (
	"context"
	"time"

	"github.com/bnema/minechat/internal/domain"
	"github.com/bnema/minechat/internal/queue"
	"go.uber.org/zap"
)

// Watchdog fails the session when neither pipeline reports activity within
// the window. It never touches the sockets.
type Watchdog struct {
	window time.Duration
	logger *zap.Logger
}

func NewWatchdog(window time.Duration, logger *zap.Logger) *Watchdog {
	if window <= 0 {
		window = DefaultWatchdogWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Watchdog{window: window, logger: logger}
}

func (w *Watchdog) Run(ctx context.Context, heartbeats *queue.Queue[domain.Heartbeat]) error {
	for {
		waitCtx, cancel := context.WithTimeout(ctx, w.window)
		heartbeat, err := heartbeats.Get(waitCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Warn("watchdog window elapsed", zap.Duration("window", w.window))
			return domain.ErrConnectionLost
		}

		w.logger.Debug("connection is alive", zap.String("reason", heartbeat.Reason))
	}
}
