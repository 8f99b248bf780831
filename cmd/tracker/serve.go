// Path: cmd/tracker/serve.go
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"commit-tracker/internal/delivery/rest"
	"commit-tracker/internal/service"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the stored history as a read-only JSON API",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(flags.configPath)
		},
	}
}

func runServe(configPath string) error {
	// 1. Setup Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Initialize Components
	a, err := newApp(ctx, configPath, withStorage)
	if err != nil {
		return err
	}
	defer a.close(context.Background())
	reader := service.NewHistoryReader(a.storage)

	// 3. Initialize and Start The API Server
	apiServer := rest.NewServer(a.cfg.Server.Port, reader)
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting", "port", a.cfg.Server.Port)
		if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 4. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		slog.Info("shutdown signal received, shutting down gracefully")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		slog.Warn("error during API server shutdown", "error", err)
	}
	slog.Info("server shut down successfully")
	return nil
}
