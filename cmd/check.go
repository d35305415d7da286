package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"arrsync/internal/models"
	"arrsync/internal/shared"
)

// Check verifies connectivity and configuration against all services.
//
// Fetches the watchlist, probes the metadata resolver, and validates the
// configured quality profile on both backends. Reports every service even
// when an earlier one fails.
func (r *Runner) Check(ctx context.Context, cmd *cli.Command) error {
	r.writePlainHeader("Service Check")

	failures := 0

	if r.plex == nil {
		failures++
		r.writePlain("✗ plex: service not initialized\n")
	} else if items, err := r.plex.Fetch(ctx); err != nil {
		failures++
		r.writePlain("✗ plex: %v\n", err)
	} else {
		r.writePlain("✓ plex: %d watchlist items\n", len(items))
	}

	if r.resolver == nil {
		failures++
		r.writePlain("✗ tmdb: service not initialized\n")
	} else if _, err := r.resolver.Resolve(ctx, "The Matrix", models.Movie); err != nil {
		failures++
		r.writePlain("✗ tmdb: %v\n", err)
	} else {
		r.writePlain("✓ tmdb: search reachable\n")
	}

	if r.radarr == nil {
		failures++
		r.writePlain("✗ radarr: service not initialized\n")
	} else if name, err := r.radarr.ValidateProfile(ctx); err != nil {
		failures++
		r.writePlain("✗ radarr: %v\n", err)
	} else {
		r.writePlain("✓ radarr: quality profile %d (%s)\n", r.config.Radarr.QualityProfile, name)
	}

	if r.sonarr == nil {
		failures++
		r.writePlain("✗ sonarr: service not initialized\n")
	} else if name, err := r.sonarr.ValidateProfile(ctx); err != nil {
		failures++
		r.writePlain("✗ sonarr: %v\n", err)
	} else {
		r.writePlain("✓ sonarr: quality profile %d (%s)\n", r.config.Sonarr.QualityProfile, name)
	}

	if failures > 0 {
		return fmt.Errorf("%w: %d of 4 services failed", shared.ErrServiceUnavailable, failures)
	}

	r.writePlain("\nAll services OK\n")
	return nil
}
