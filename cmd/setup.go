package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"arrsync/internal/repositories"
	"arrsync/internal/shared"
)

// SetupConfig creates a config.toml from the embedded example.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", configPath)
	r.writePlain("✓ Created %s\n", configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Fill in your Plex token, TMDB API key, and Radarr/Sonarr credentials\n")
	r.writePlain("2. Run 'arrsync check' to verify connectivity\n")

	return nil
}

// SetupDatabase initializes the run history database.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err == nil {
		if loaded, err := shared.LoadConfig(configPath); err == nil {
			config = loaded
		} else {
			r.logger.Warn("failed to load config, using defaults", "error", err)
		}
	}

	if config.Database.Path == "" {
		return fmt.Errorf("%w: database.path not set", shared.ErrMissingConfig)
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := repositories.NewRunRepository(db).InitSchema(); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}
