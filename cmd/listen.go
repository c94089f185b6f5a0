package cmd

import (
	"fmt"
	"time"

	"github.com/bnema/minechat/internal/application"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newListenCmd(app *app) *cobra.Command {
	var (
		servers    []string
		files      []string
		retryDelay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "listen --file PATH [--server HOST:PORT]...",
		Short: "Append chat messages from one or more servers to files",
		Long:  "listen connects to each --server and appends every received message to the --file given at the same position. Without --server the configured read endpoint is used.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if len(servers) == 0 {
				servers = []string{cfg.Read.Address()}
			}
			targets, err := listenTargets(servers, files)
			if err != nil {
				return err
			}

			for _, target := range targets {
				logger.Info("listening", zap.String("address", target.Address), zap.String("file", target.File))
			}

			return application.NewListener(app.dialer, app.clock, retryDelay, logger).Run(cmd.Context(), targets)
		},
	}

	cmd.Flags().StringArrayVar(&servers, "server", nil, "host:port of a read endpoint (repeatable)")
	cmd.Flags().StringArrayVar(&files, "file", nil, "file receiving the messages of the matching --server (repeatable)")
	cmd.Flags().DurationVar(&retryDelay, "retry-delay", application.DefaultBackoff, "delay before reconnecting after an error")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func listenTargets(servers, files []string) ([]application.ListenTarget, error) {
	if len(servers) != len(files) {
		return nil, fmt.Errorf("got %d --server and %d --file flags, they pair by position", len(servers), len(files))
	}

	targets := make([]application.ListenTarget, 0, len(servers))
	for i := range servers {
		targets = append(targets, application.ListenTarget{Address: servers[i], File: files[i]})
	}

	return targets, nil
}
