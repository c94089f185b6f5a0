package cmd

import (
	"encoding/json"
	"fmt"

	historyrender "github.com/bnema/minechat/internal/adapters/render/history"
	"github.com/bnema/minechat/internal/adapters/repo/sqlite"
	"github.com/bnema/minechat/internal/application"
	"github.com/spf13/cobra"
)

func newHistoryCmd(app *app) *cobra.Command {
	var (
		asJSON bool
		tail   int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print stored chat messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			repo, err := sqlite.Open(cmd.Context(), cfg.HistoryPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			records, err := application.NewHistoryService(repo, logger).List(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				if tail > 0 && len(records) > tail {
					records = records[len(records)-tail:]
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}

			rendered, err := app.historyRenderer(records, historyrender.RenderOptions{Tail: tail})
			if err != nil {
				return fmt.Errorf("render history: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print messages as JSON")
	cmd.Flags().IntVar(&tail, "tail", 0, "show only the last N messages")

	return cmd
}
