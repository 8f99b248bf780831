// Path: internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commit-tracker/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")

	cfg, err := Load(writeConfig(t, "server:\n  port: \"8080\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "https://api.github.com", cfg.Search.BaseURL)
	assert.Equal(t, 10, cfg.Search.RequestsPerMinute)
	assert.Equal(t, 6*time.Second, cfg.Search.RequestDelay())
	assert.Equal(t, 10*time.Second, cfg.Search.MinRateLimitWait)
	assert.Equal(t, domain.DefaultPatterns, cfg.Patterns)
	assert.Equal(t, string(domain.PolicyMax), cfg.Aggregation.Policy)
	assert.Equal(t, BackendCSV, cfg.Storage.Backend)
	assert.Equal(t, VariantSplit, cfg.Storage.CSV.Variant)
	assert.Empty(t, cfg.Search.Token)
}

func TestLoad_FileAndTokenFromEnvironment(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_test")

	path := writeConfig(t, `
search:
  requests_per_minute: 20
  min_rate_limit_wait: 15s
aggregation:
  policy: sum
patterns:
  - label: banner
    query: '"Generated with Claude Code"'
storage:
  backend: sqlite
  sqlite:
    path: /tmp/x.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ghp_test", cfg.Search.Token)
	assert.Equal(t, 3*time.Second, cfg.Search.RequestDelay())
	assert.Equal(t, 15*time.Second, cfg.Search.MinRateLimitWait)
	assert.Equal(t, []domain.SearchPattern{{Label: "banner", Query: `"Generated with Claude Code"`}}, cfg.Patterns)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/x.db", cfg.Storage.SQLite.Path)

	p, ok := cfg.Pattern("banner")
	assert.True(t, ok)
	assert.Equal(t, "banner", p.Label)
}

func TestLoad_RejectsUnknownPolicy(t *testing.T) {
	_, err := Load(writeConfig(t, "aggregation:\n  policy: median\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "median")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func() Config {
		return Config{
			Search:      SearchConfig{RequestsPerMinute: 10},
			Patterns:    domain.DefaultPatterns,
			Aggregation: AggregationConfig{Policy: "max", Mode: ModeCounts},
			Storage:     StorageConfig{Backend: BackendCSV, CSV: CSVConfig{Variant: VariantSplit}},
		}
	}

	cfg := base()
	require.NoError(t, cfg.Validate())

	dup := base()
	dup.Patterns = []domain.SearchPattern{{Label: "a", Query: "x"}, {Label: "a", Query: "y"}}
	require.Error(t, dup.Validate())

	backend := base()
	backend.Storage.Backend = "redis"
	require.Error(t, backend.Validate())

	variant := base()
	variant.Storage.CSV.Variant = "wide"
	require.Error(t, variant.Validate())

	empty := base()
	empty.Patterns = nil
	require.Error(t, empty.Validate())

	reposCounts := base()
	reposCounts.Storage.CSV.Variant = VariantRepos
	err := reposCounts.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ModeRepos)

	reposRepos := base()
	reposRepos.Storage.CSV.Variant = VariantRepos
	reposRepos.Aggregation.Mode = ModeRepos
	require.NoError(t, reposRepos.Validate())
}

func TestLoad_RejectsReposVariantWithoutReposMode(t *testing.T) {
	_, err := Load(writeConfig(t, "storage:\n  csv:\n    variant: repos\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aggregation.mode")
}
