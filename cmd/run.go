package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/minechat/internal/adapters/repo/sqlite"
	"github.com/bnema/minechat/internal/application"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newRunCmd(app *app) *cobra.Command {
	var identity identityFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the chat window (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, app, identity)
		},
	}
	identity.register(cmd)

	return cmd
}

func runChat(cmd *cobra.Command, app *app, identity identityFlags) error {
	cfg, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	repo, err := sqlite.Open(ctx, cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	queues := application.NewQueues()
	history := application.NewHistoryService(repo, logger)

	replayed, err := history.Replay(ctx, queues.Display)
	if err != nil {
		return fmt.Errorf("replay history: %w", err)
	}

	creds := application.NewCredentialStore(identity.credentials())
	supervisor := application.NewSupervisor(sessionConfig(cfg), app.dialer, queues, creds, app.clock, logger)

	logger.Info("starting chat",
		zap.String("read", cfg.Read.Address()),
		zap.String("write", cfg.Write.Address()),
		zap.Int("replayed", replayed),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return history.SaveLoop(gctx, queues.Persistence)
	})
	g.Go(func() error {
		return supervisor.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return app.chatRunner(gctx, queues)
	})

	if err := g.Wait(); err != nil {
		logger.Error("chat stopped", zap.Error(err))
		return err
	}

	logger.Info("chat closed")
	return nil
}
