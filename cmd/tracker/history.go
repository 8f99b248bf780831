// Path: cmd/tracker/history.go
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"commit-tracker/internal/report"
)

func newHistoryCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print the stored history and a chart of the daily share",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			a, err := newApp(ctx, flags.configPath, withStorage)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			h, err := a.storage.Load(ctx)
			if err != nil {
				return err
			}
			report.History(os.Stdout, h, a.labels)
			return nil
		},
	}
}
