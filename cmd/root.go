package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	return newRootCmdWithApp(wireApp())
}

func newRootCmdWithApp(app *app) *cobra.Command {
	var identity identityFlags

	rootCmd := &cobra.Command{
		Use:           "minechat",
		Short:         "Terminal client for the minechat service",
		Long:          "minechat keeps a reading and a writing connection to a chat server open, reconnects when either goes quiet and stores every received message locally.",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, app, identity)
		},
	}

	addConnectionFlags(rootCmd)
	identity.register(rootCmd)

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(app),
		newSendCmd(app),
		newListenCmd(app),
		newHistoryCmd(app),
		newConfigCmd(),
	)

	return rootCmd
}
