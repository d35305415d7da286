package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Plex     PlexConfig     `toml:"plex"`
	TMDB     TMDBConfig     `toml:"tmdb"`
	Radarr   RadarrConfig   `toml:"radarr"`
	Sonarr   SonarrConfig   `toml:"sonarr"`
	Cache    CacheConfig    `toml:"cache"`
	Database DatabaseConfig `toml:"database"`
	Sync     SyncConfig     `toml:"sync"`
}

// PlexConfig contains Plex watchlist credentials.
type PlexConfig struct {
	Token string `toml:"token"`
	URL   string `toml:"url"`
}

// TMDBConfig contains TMDB API credentials.
type TMDBConfig struct {
	APIKey string `toml:"api_key"`
	URL    string `toml:"url"`
}

// RadarrConfig contains Radarr connection and add-request settings.
type RadarrConfig struct {
	URL            string `toml:"url"`
	APIKey         string `toml:"api_key"`
	QualityProfile int    `toml:"quality_profile"`
	RootFolder     string `toml:"root_folder"`
}

// SonarrConfig contains Sonarr connection and add-request settings.
type SonarrConfig struct {
	URL             string `toml:"url"`
	APIKey          string `toml:"api_key"`
	QualityProfile  int    `toml:"quality_profile"`
	LanguageProfile int    `toml:"language_profile"`
	RootFolder      string `toml:"root_folder"`
}

// CacheConfig contains dedup cache settings.
type CacheConfig struct {
	Path         string `toml:"path"`
	RefreshHours int    `toml:"refresh_hours"`
}

// MaxAge returns the staleness threshold as a [time.Duration].
func (c CacheConfig) MaxAge() time.Duration {
	hours := c.RefreshHours
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// DatabaseConfig contains run-history database settings.
//
// An empty path disables run history.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// SyncConfig contains run-mode and network settings for the reconciliation loop.
type SyncConfig struct {
	DryRun         bool    `toml:"dry_run"`
	EmitCommands   bool    `toml:"emit_commands"`
	Verbose        bool    `toml:"verbose"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	RateLimitRPS   float64 `toml:"rate_limit_rps"`
	RateLimitBurst int     `toml:"rate_limit_burst"`
}

// Timeout returns the per-request timeout as a [time.Duration].
func (c SyncConfig) Timeout() time.Duration {
	secs := c.TimeoutSeconds
	if secs <= 0 {
		secs = 30
	}
	return time.Duration(secs) * time.Second
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
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
