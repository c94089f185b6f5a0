package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bnema/minechat/internal/domain"
	"github.com/bnema/minechat/internal/ports"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const listenFileMode = 0o600

type ListenTarget struct {
	Address string
	File    string
}

// Listener mirrors one or more read endpoints into append-only text files.
type Listener struct {
	dialer     ports.Dialer
	clock      ports.Clock
	retryDelay time.Duration
	logger     *zap.Logger
}

func NewListener(dialer ports.Dialer, clock ports.Clock, retryDelay time.Duration, logger *zap.Logger) *Listener {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if retryDelay <= 0 {
		retryDelay = DefaultBackoff
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Listener{dialer: dialer, clock: clock, retryDelay: retryDelay, logger: logger}
}

// Run returns when every target's server closed its stream, when a file
// cannot be opened, or when ctx is done.
func (l *Listener) Run(ctx context.Context, targets []ListenTarget) error {
	if len(targets) == 0 {
		return errors.New("at least one listen target is required")
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, target := range targets {
		g.Go(func() error {
			return l.listen(gctx, target)
		})
	}

	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}

	return err
}

func (l *Listener) listen(ctx context.Context, target ListenTarget) error {
	file, err := os.OpenFile(target.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, listenFileMode)
	if err != nil {
		return fmt.Errorf("open listen file %q: %w", target.File, err)
	}
	defer file.Close()

	logger := l.logger.With(zap.String("address", target.Address))
	for {
		err := l.copyLines(ctx, target.Address, file)
		if err == nil {
			logger.Info("server closed the stream")
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		logger.Error("listen failed, retrying", zap.Error(err), zap.Duration("retry_delay", l.retryDelay))
		if err := sleep(ctx, l.retryDelay); err != nil {
			return nil
		}
	}
}

func (l *Listener) copyLines(ctx context.Context, address string, out io.Writer) error {
	conn, err := l.dialer.Dial(ctx, address)
	if err != nil {
		return err
	}
	defer conn.Close()

	for {
		text, err := conn.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if _, err := fmt.Fprintln(out, domain.FormatDisplayLine(l.clock.Now(), text)); err != nil {
			return fmt.Errorf("write listen file: %w", err)
		}
	}
}
