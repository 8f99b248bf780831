// Path: cmd/tracker/overlap.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"commit-tracker/internal/domain"
	"commit-tracker/internal/report"
	"commit-tracker/internal/service"
)

func newOverlapCommand(flags *globalFlags) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "overlap",
		Short: "Measure how many commits two patterns share on one day",
		Long: `Downloads up to 1000 commit SHAs for each of the two configured overlap
patterns and compares them. Use the conclusion to choose aggregation.policy.

Examples:
  tracker overlap --date 2026-02-14
  tracker overlap --date 2025-03-15   # few commits, exact overlap`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := domain.ParseDate(date); err != nil {
				return err
			}
			return runOverlap(cmd.Context(), flags.configPath, date)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day to verify (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func runOverlap(ctx context.Context, configPath, date string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, configPath, withSearch)
	if err != nil {
		return err
	}

	patA, ok := a.cfg.Pattern(a.cfg.Overlap.A)
	if !ok {
		return fmt.Errorf("overlap pattern %q is not configured", a.cfg.Overlap.A)
	}
	patB, ok := a.cfg.Pattern(a.cfg.Overlap.B)
	if !ok {
		return fmt.Errorf("overlap pattern %q is not configured", a.cfg.Overlap.B)
	}

	r, err := service.NewOverlapAnalyzer(a.runner, patA, patB).Analyze(ctx, date)
	if err != nil {
		return err
	}
	report.Overlap(os.Stdout, r)
	return nil
}
