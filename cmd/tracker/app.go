// Path: cmd/tracker/app.go
package main

import (
	"context"
	"fmt"
	"log/slog"

	"commit-tracker/internal/config"
	"commit-tracker/internal/domain"
	"commit-tracker/internal/search"
	"commit-tracker/internal/service"
	"commit-tracker/internal/storage"
)

// component selects what newApp builds besides the configuration.
type component uint8

const (
	withSearch component = 1 << iota
	withStorage
)

// app bundles the components shared by every command.
type app struct {
	cfg     *config.Config
	policy  domain.CombinePolicy
	labels  []string
	client  *search.Client
	runner  *search.Runner
	storage storage.Backend
}

// newApp loads configuration and builds only the requested components.
// Commands that never search get no client and no token warnings.
func newApp(ctx context.Context, configPath string, parts component) (*app, error) {
	// 1. Load Configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	policy, err := domain.ParseCombinePolicy(cfg.Aggregation.Policy)
	if err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(cfg.Patterns))
	for _, p := range cfg.Patterns {
		labels = append(labels, p.Label)
	}

	a := &app{
		cfg:    cfg,
		policy: policy,
		labels: labels,
	}

	// 2. Initialize the search client
	if parts&withSearch != 0 {
		a.client = search.NewClient(cfg.Search)
		a.runner = search.NewRunner(a.client)
		if a.client.HasToken() {
			slog.Info("GitHub token configured")
		} else {
			slog.Warn("no GITHUB_TOKEN set: the search rate limit is much lower without a token")
			slog.Warn("create a token at https://github.com/settings/tokens")
		}
	}

	// 3. Initialize the history storage
	if parts&withStorage != 0 {
		a.storage, err = storage.Open(ctx, cfg.Storage, labels, policy)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
		}
	}
	return a, nil
}

func (a *app) collector() *service.Collector {
	return service.NewCollector(a.runner, a.cfg.Patterns, a.policy, service.CollectMode(a.cfg.Aggregation.Mode))
}

func (a *app) close(ctx context.Context) {
	if a.storage == nil {
		return
	}
	if err := a.storage.Close(ctx); err != nil {
		slog.Warn("error closing storage", "error", err)
	}
}
