package application

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bnema/minechat/internal/domain"
	"github.com/bnema/minechat/internal/ports"
	"github.com/bnema/minechat/internal/queue"
	"go.uber.org/zap"
)

// Reader owns the inbound socket.
type Reader struct {
	dialer      ports.Dialer
	address     string
	clock       ports.Clock
	display     *queue.Queue[string]
	persistence *queue.Queue[domain.HistoryRecord]
	status      *queue.Queue[domain.StatusEvent]
	logger      *zap.Logger
}

func NewReader(dialer ports.Dialer, address string, queues Queues, clock ports.Clock, logger *zap.Logger) *Reader {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Reader{
		dialer:      dialer,
		address:     address,
		clock:       clock,
		display:     queues.Display,
		persistence: queues.Persistence,
		status:      queues.Status,
		logger:      logger,
	}
}

// Run returns nil when the server closes the stream. That ends only the
// reader; the rest of the session keeps running.
func (r *Reader) Run(ctx context.Context, heartbeats *queue.Queue[domain.Heartbeat]) error {
	conn, err := r.dialer.Dial(ctx, r.address)
	if err != nil {
		return fmt.Errorf("open read connection: %w", err)
	}
	defer conn.Close()

	r.status.Put(domain.ReadStateChanged{State: domain.StateEstablished})

	for {
		text, err := conn.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.logger.Warn("read connection closed by server", zap.String("address", r.address))
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}

		record := domain.HistoryRecord{At: r.clock.Now(), Text: text}
		line := record.DisplayLine()
		r.logger.Debug("message received", zap.String("line", line))

		r.display.Put(line)
		r.persistence.Put(record)
		heartbeats.Put(domain.Heartbeat{Reason: "new message in chat"})
	}
}
