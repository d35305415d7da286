package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"

	"arrsync/internal/services"
	"arrsync/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	configPath := "config.toml"
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		}
	}

	if config.Sync.Verbose {
		shared.SetLogLevel(logger, log.DebugLevel)
	}

	httpClient := &http.Client{Timeout: config.Sync.Timeout()}
	limiter := newLimiter(config.Sync)

	plex := services.NewPlexService(config.Plex.URL, config.Plex.Token, httpClient, shared.WithLogger(logger, "service", "plex"))
	tmdb := services.NewTMDBService(config.TMDB.URL, config.TMDB.APIKey, httpClient, limiter, shared.WithLogger(logger, "service", "tmdb"))
	radarr := services.NewRadarrService(config.Radarr, httpClient, limiter, shared.WithLogger(logger, "service", "radarr"))
	sonarr := services.NewSonarrService(config.Sonarr, httpClient, limiter, shared.WithLogger(logger, "service", "sonarr"))

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Plex:       plex,
		Resolver:   tmdb,
		Radarr:     radarr,
		Sonarr:     sonarr,
		HTTPClient: httpClient,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "arrsync",
		Usage:    "Sync a Plex watchlist to Radarr & Sonarr",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}

// newLimiter builds the shared request limiter for TMDB and the arr
// backends. A zero rate disables throttling.
func newLimiter(cfg shared.SyncConfig) *rate.Limiter {
	if cfg.RateLimitRPS <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
}
