package application

import (
	"context"
	"time"

	"github.com/bnema/minechat/internal/domain"
	"github.com/bnema/minechat/internal/queue"
)

const (
	DefaultBackoff                = 5 * time.Second
	DefaultWatchdogWindow         = 3 * time.Second
	DefaultKeepaliveInterval      = 3 * time.Second
	DefaultCredentialPollInterval = 3 * time.Second
)

type SessionConfig struct {
	ReadAddress            string
	WriteAddress           string
	Backoff                time.Duration
	WatchdogWindow         time.Duration
	KeepaliveInterval      time.Duration
	CredentialPollInterval time.Duration
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.Backoff <= 0 {
		c.Backoff = DefaultBackoff
	}
	if c.WatchdogWindow <= 0 {
		c.WatchdogWindow = DefaultWatchdogWindow
	}
	if c.KeepaliveInterval <= 0 {
		c.KeepaliveInterval = DefaultKeepaliveInterval
	}
	if c.CredentialPollInterval <= 0 {
		c.CredentialPollInterval = DefaultCredentialPollInterval
	}

	return c
}

// Queues are the boundary between the session core and its collaborators.
type Queues struct {
	Display     *queue.Queue[string]
	Persistence *queue.Queue[domain.HistoryRecord]
	Outbound    *queue.Queue[string]
	Status      *queue.Queue[domain.StatusEvent]
	Credentials *queue.Queue[domain.CredentialEvent]
}

func NewQueues() Queues {
	return Queues{
		Display:     queue.New[string](),
		Persistence: queue.New[domain.HistoryRecord](),
		Outbound:    queue.New[string](),
		Status:      queue.New[domain.StatusEvent](),
		Credentials: queue.New[domain.CredentialEvent](),
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
