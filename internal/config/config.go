// Path: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"commit-tracker/internal/domain"
)

// Storage backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// CSV layouts.
const (
	VariantRepos    = "repos"
	VariantCombined = "combined"
	VariantSplit    = "split"
)

// Collect modes.
const (
	ModeCounts = "counts"
	ModeRepos  = "repos"
)

// Config holds all configuration for the application.
type Config struct {
	Server      ServerConfig
	Search      SearchConfig
	Patterns    []domain.SearchPattern
	Aggregation AggregationConfig
	Overlap     OverlapConfig
	Storage     StorageConfig
}

// ServerConfig holds the read-only history API settings.
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// SearchConfig holds settings for the commit search client.
type SearchConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	Token      string `mapstructure:"token"`
	APIVersion string `mapstructure:"api_version"`
	Accept     string `mapstructure:"accept"`
	// RequestsPerMinute is a self-imposed budget, kept below the platform limit.
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	MinRateLimitWait  time.Duration `mapstructure:"min_rate_limit_wait"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// RequestDelay is the fixed pause enforced before every outbound request.
func (c SearchConfig) RequestDelay() time.Duration {
	if c.RequestsPerMinute <= 0 {
		return 0
	}
	return time.Minute / time.Duration(c.RequestsPerMinute)
}

// AggregationConfig selects how daily records are built.
type AggregationConfig struct {
	Policy string `mapstructure:"policy"`
	Mode   string `mapstructure:"mode"`
}

// OverlapConfig names the two patterns compared by the overlap command.
type OverlapConfig struct {
	A string `mapstructure:"a"`
	B string `mapstructure:"b"`
}

// StorageConfig holds the history persistence settings.
type StorageConfig struct {
	Backend string       `mapstructure:"backend"`
	CSV     CSVConfig    `mapstructure:"csv"`
	SQLite  SQLiteConfig `mapstructure:"sqlite"`
	Mongo   MongoConfig  `mapstructure:"mongo"`
}

// CSVConfig holds the CSV file settings.
type CSVConfig struct {
	Dir     string `mapstructure:"dir"`
	Variant string `mapstructure:"variant"`
}

// SQLiteConfig holds the SQLite database settings.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// MongoConfig holds the database connection settings.
type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Name       string `mapstructure:"name"`
	Collection string `mapstructure:"collection"`
}

// Load loads the configuration from an optional .env file, a config file and
// environment variables. An empty path looks for ./configs/config.yaml.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err) // Only a missing default file is tolerated
		}
	}

	// Load from environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("search.token", "GITHUB_TOKEN"); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("search.base_url", "https://api.github.com")
	v.SetDefault("search.api_version", "2022-11-28")
	v.SetDefault("search.accept", "application/vnd.github.cloak-preview+json")
	v.SetDefault("search.requests_per_minute", 10) // real authenticated limit is 30
	v.SetDefault("search.min_rate_limit_wait", 10*time.Second)
	v.SetDefault("search.timeout", 30*time.Second)
	v.SetDefault("aggregation.policy", string(domain.PolicyMax))
	v.SetDefault("aggregation.mode", ModeCounts)
	v.SetDefault("overlap.a", domain.DefaultPatterns[0].Label)
	v.SetDefault("overlap.b", domain.DefaultPatterns[1].Label)
	v.SetDefault("storage.backend", BackendCSV)
	v.SetDefault("storage.csv.dir", "data")
	v.SetDefault("storage.csv.variant", VariantSplit)
	v.SetDefault("storage.sqlite.path", "data/tracker.db")
	v.SetDefault("storage.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("storage.mongo.name", "commit-tracker")
	v.SetDefault("storage.mongo.collection", "daily_records")

	patterns := make([]map[string]any, 0, len(domain.DefaultPatterns))
	for _, p := range domain.DefaultPatterns {
		patterns = append(patterns, map[string]any{"label": p.Label, "query": p.Query})
	}
	v.SetDefault("patterns", patterns)
}

// Validate checks enumerated settings and pattern definitions.
func (c *Config) Validate() error {
	if len(c.Patterns) == 0 {
		return errors.New("config: at least one search pattern is required")
	}
	seen := make(map[string]bool, len(c.Patterns))
	for _, p := range c.Patterns {
		if p.Label == "" || strings.TrimSpace(p.Query) == "" {
			return fmt.Errorf("config: pattern %q needs both a label and a query", p.Label)
		}
		if seen[p.Label] {
			return fmt.Errorf("config: duplicate pattern label %q", p.Label)
		}
		seen[p.Label] = true
	}

	if _, err := domain.ParseCombinePolicy(c.Aggregation.Policy); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	switch c.Aggregation.Mode {
	case ModeCounts, ModeRepos:
	default:
		return fmt.Errorf("config: unknown aggregation mode %q", c.Aggregation.Mode)
	}

	switch c.Storage.Backend {
	case BackendCSV, BackendSQLite, BackendMongo:
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}

	switch c.Storage.CSV.Variant {
	case VariantRepos, VariantCombined, VariantSplit:
	default:
		return fmt.Errorf("config: unknown csv variant %q", c.Storage.CSV.Variant)
	}
	// Only repos mode gathers repositories; any other mode would persist zeros.
	if c.Storage.Backend == BackendCSV && c.Storage.CSV.Variant == VariantRepos && c.Aggregation.Mode != ModeRepos {
		return fmt.Errorf("config: csv variant %q requires aggregation.mode %q", VariantRepos, ModeRepos)
	}

	if c.Search.RequestsPerMinute <= 0 {
		return errors.New("config: search.requests_per_minute must be positive")
	}
	return nil
}

// Pattern returns the pattern with the given label.
func (c *Config) Pattern(label string) (domain.SearchPattern, bool) {
	for _, p := range c.Patterns {
		if p.Label == label {
			return p, true
		}
	}
	return domain.SearchPattern{}, false
}
