package application

import (
	"context"
	"time"

	"github.com/bnema/minechat/internal/queue"
)

// Keepalive queues an empty message every interval so an idle session still
// produces send heartbeats.
type Keepalive struct {
	interval time.Duration
	outbound *queue.Queue[string]
}

func NewKeepalive(interval time.Duration, outbound *queue.Queue[string]) *Keepalive {
	if interval <= 0 {
		interval = DefaultKeepaliveInterval
	}

	return &Keepalive{interval: interval, outbound: outbound}
}

func (k *Keepalive) Run(ctx context.Context) error {
	for {
		k.outbound.Put("")
		if err := sleep(ctx, k.interval); err != nil {
			return err
		}
	}
}
