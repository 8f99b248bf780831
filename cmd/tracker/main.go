// Path: cmd/tracker/main.go
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

type globalFlags struct {
	configPath string
	verbose    bool
}

func main() {
	flags := &globalFlags{}

	rootCmd := newCollectCommand(flags)
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default ./configs/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		setupLogging(flags.verbose)
	}

	rootCmd.AddCommand(newOverlapCommand(flags))
	rootCmd.AddCommand(newHistoryCommand(flags))
	rootCmd.AddCommand(newServeCommand(flags))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
