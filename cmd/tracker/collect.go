// Path: cmd/tracker/collect.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"commit-tracker/internal/config"
	"commit-tracker/internal/domain"
	"commit-tracker/internal/report"
	"commit-tracker/internal/service"
)

// defaultWindowDays is the number of days collected when no date flag is given.
const defaultWindowDays = 7

type dateFlags struct {
	date string
	from string
	to   string
}

func newCollectCommand(flags *globalFlags) *cobra.Command {
	var (
		dates        dateFlags
		skipExisting bool
	)

	cmd := &cobra.Command{
		Use:   "tracker",
		Short: "Track AI coding assistant adoption through GitHub commit search",
		Long: `Counts, per calendar day, the public commits that carry the assistant's
markers and the total commit volume of that day, and keeps the results in a
persisted history.

Examples:
  tracker --date 2026-02-10
  tracker --from 2026-01-01 --to 2026-02-15
  tracker --from 2026-01-01 --skip-existing
  tracker                     # last 7 days ending today`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Dates are validated before anything touches the network or the store.
			days, err := resolveDates(dates, time.Now())
			if err != nil {
				return err
			}
			return runCollect(cmd.Context(), flags.configPath, days, skipExisting)
		},
	}

	cmd.Flags().StringVar(&dates.date, "date", "", "single day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dates.from, "from", "", "range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dates.to, "to", "", "range end, inclusive (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "skip dates already present in the stored history")

	return cmd
}

// resolveDates turns the date flags into the list of days to process.
func resolveDates(f dateFlags, now time.Time) ([]string, error) {
	switch {
	case f.date != "":
		if f.from != "" || f.to != "" {
			return nil, fmt.Errorf("%w: --date cannot be combined with --from/--to", domain.ErrInvalidDate)
		}
		if _, err := domain.ParseDate(f.date); err != nil {
			return nil, err
		}
		return []string{f.date}, nil

	case f.from != "":
		from, err := domain.ParseDate(f.from)
		if err != nil {
			return nil, err
		}
		to := now
		if f.to != "" {
			if to, err = domain.ParseDate(f.to); err != nil {
				return nil, err
			}
		}
		return domain.DateRange(from, to)

	case f.to != "":
		return nil, fmt.Errorf("%w: --to requires --from", domain.ErrInvalidDate)

	default:
		return domain.DateRange(now.AddDate(0, 0, -(defaultWindowDays - 1)), now)
	}
}

func runCollect(ctx context.Context, configPath string, days []string, skipExisting bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, configPath, withSearch|withStorage)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	svc := service.NewService(a.collector(), a.storage)
	summary, runErr := svc.Run(ctx, days, service.RunOptions{SkipExisting: skipExisting})
	if summary != nil {
		report.Summary(os.Stdout, summary, a.labels, a.policy)
	}
	if runErr != nil {
		return runErr
	}

	if a.cfg.Storage.Backend == config.BackendCSV {
		fmt.Fprintf(os.Stdout, "\nData saved in: %s\n", a.cfg.Storage.CSV.Dir)
	}
	return nil
}
