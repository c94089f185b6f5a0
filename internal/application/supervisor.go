package application

import (
	"context"
	"errors"

	"github.com/bnema/minechat/internal/domain"
	"github.com/bnema/minechat/internal/ports"
	"github.com/bnema/minechat/internal/queue"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var errSessionEnded = errors.New("session ended")

// Supervisor runs the chat session as one unit of five goroutines and
// restarts the whole unit whenever one of them fails.
type Supervisor struct {
	cfg    SessionConfig
	dialer ports.Dialer
	queues Queues
	creds  *CredentialStore
	clock  ports.Clock
	logger *zap.Logger
}

func NewSupervisor(cfg SessionConfig, dialer ports.Dialer, queues Queues, creds *CredentialStore, clock ports.Clock, logger *zap.Logger) *Supervisor {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Supervisor{
		cfg:    cfg.withDefaults(),
		dialer: dialer,
		queues: queues,
		creds:  creds,
		clock:  clock,
		logger: logger,
	}
}

// Run restarts sessions until ctx is cancelled, in which case it returns nil.
// A malformed handshake reply is returned without a retry.
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		err := s.runGeneration(ctx)
		if domain.IsFatal(err) {
			s.logger.Error("stopping client", zap.Error(err))
			return err
		}
		if ctx.Err() != nil {
			return nil
		}

		s.logger.Warn("connection error", zap.Error(err), zap.Duration("backoff", s.cfg.Backoff))
		s.publishState(domain.StateClosed)

		if err := sleep(ctx, s.cfg.Backoff); err != nil {
			return nil
		}
	}
}

func (s *Supervisor) runGeneration(ctx context.Context) error {
	logger := s.logger.With(zap.String("generation", uuid.NewString()))
	logger.Info("starting session",
		zap.String("read_address", s.cfg.ReadAddress),
		zap.String("write_address", s.cfg.WriteAddress),
	)
	s.publishState(domain.StateInitiated)

	heartbeats := queue.New[domain.Heartbeat]()
	reader := NewReader(s.dialer, s.cfg.ReadAddress, s.queues, s.clock, logger.Named("reader"))
	handshake := NewHandshake(s.creds, s.cfg.CredentialPollInterval, logger.Named("handshake"))
	sender := NewSender(s.dialer, s.cfg.WriteAddress, handshake, s.queues, logger.Named("sender"))
	watchdog := NewWatchdog(s.cfg.WatchdogWindow, logger.Named("watchdog"))
	keepalive := NewKeepalive(s.cfg.KeepaliveInterval, s.queues.Outbound)
	watcher := NewCredentialWatcher(s.queues.Credentials, s.creds, logger.Named("credentials"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return reader.Run(gctx, heartbeats) })
	g.Go(func() error { return sender.Run(gctx, heartbeats) })
	g.Go(func() error { return watchdog.Run(gctx, heartbeats) })
	g.Go(func() error { return keepalive.Run(gctx) })
	g.Go(func() error { return watcher.Run(gctx) })

	return generationResult(g.Wait())
}

// generationResult keeps a generation whose members all returned nil on the
// restart path.
func generationResult(err error) error {
	if err == nil {
		return errSessionEnded
	}

	return err
}

func (s *Supervisor) publishState(state domain.ConnectionState) {
	s.queues.Status.Put(domain.ReadStateChanged{State: state})
	s.queues.Status.Put(domain.SendStateChanged{State: state})
}
