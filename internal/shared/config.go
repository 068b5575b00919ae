package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Provider ProviderConfig `toml:"provider"`
	Sync     SyncConfig     `toml:"sync"`
	Backfill BackfillConfig `toml:"backfill"`
}

// DatabaseConfig contains SQLite connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ProviderConfig contains settings for the yt-dlp metadata extractor.
type ProviderConfig struct {
	Binary         string  `toml:"binary"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	RateLimit      float64 `toml:"rate_limit"`
	CookiesPath    string  `toml:"cookies_path"`
}

// SyncConfig contains reconciliation pass settings.
type SyncConfig struct {
	FeedsPath string `toml:"feeds_path"`
	// ChannelDepthThreshold stops deep refreshes of channels once this many
	// items are stored. Heuristic carried over from the original catalog job.
	ChannelDepthThreshold int `toml:"channel_depth_threshold"`
}

// BackfillConfig contains enrichment pass settings.
type BackfillConfig struct {
	Enabled      bool `toml:"enabled"`
	QuotaPerFeed int  `toml:"quota_per_feed"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
