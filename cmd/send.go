package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/minechat/internal/application"
	"github.com/bnema/minechat/internal/domain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSendCmd(app *app) *cobra.Command {
	var (
		identity identityFlags
		messages []string
	)

	cmd := &cobra.Command{
		Use:   "send --nickname NAME|--token HASH --message TEXT...",
		Short: "Send messages without opening the chat window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds := identity.credentials()
			if !creds.Available() {
				return application.ErrCredentialsRequired
			}

			cfg, logger, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			address := cfg.Write.Address()
			send := func(ctx context.Context, progress func(application.SendProgress)) (domain.Identity, error) {
				return application.SendOnce(ctx, app.dialer, address, creds, messages, progress, logger)
			}

			identified, err := sendWithProgress(cmd.Context(), cmd.ErrOrStderr(), address, send)
			if err != nil {
				logger.Error("send failed", zap.String("address", address), zap.Error(err))
				return err
			}

			if identified.Nickname != "" {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "sent %d message(s) as %s\n", len(messages), identified.Nickname)
			} else {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "sent %d message(s)\n", len(messages))
			}
			return err
		},
	}

	identity.register(cmd)
	cmd.Flags().StringArrayVarP(&messages, "message", "m", nil, "message to send (repeatable)")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}
