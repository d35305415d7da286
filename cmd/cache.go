package main

import (
	"context"
	"sort"
	"strconv"

	"github.com/urfave/cli/v3"
)

// CacheShow prints the cached sync records.
func (r *Runner) CacheShow(ctx context.Context, cmd *cli.Command) error {
	state := r.store.Load()

	if cmd.Bool("json") {
		return r.writeJSON(state, cmd.Bool("pretty"))
	}

	r.writePlain("Cache: %s\n", r.store.Path())
	r.writePlain("Last refresh: %s\n", state.LastRefresh.Format("2006-01-02 15:04:05"))
	r.writePlain("Records: %d\n\n", state.Len())

	records := make([]string, 0, state.Len())
	for _, rec := range state.SyncedItems {
		year := "?"
		if rec.Year > 0 {
			year = strconv.Itoa(rec.Year)
		}
		records = append(records, rec.Title+" ("+year+") - "+string(rec.MediaType)+" → "+rec.TargetService)
	}
	sort.Strings(records)

	for i, line := range records {
		r.writePlain("%d. %s\n", i+1, line)
	}

	return nil
}

// CacheClear deletes the sync cache file.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.store.Clear(); err != nil {
		return err
	}

	r.logger.Info("cleared sync cache", "path", r.store.Path())
	return r.writePlain("Cleared sync cache at %s\n", r.store.Path())
}

// CachePath prints the sync cache file path.
func (r *Runner) CachePath(ctx context.Context, cmd *cli.Command) error {
	return r.writePlain("%s\n", r.store.Path())
}
