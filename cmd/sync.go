package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"arrsync/internal/formatter"
	"arrsync/internal/tasks"
)

// SyncRun runs a full watchlist reconciliation pass.
func (r *Runner) SyncRun(ctx context.Context, cmd *cli.Command) error {
	mode := tasks.ModeExecute
	switch {
	case cmd.Bool("emit-curl") || r.config.Sync.EmitCommands:
		mode = tasks.ModeEmitCommands
	case cmd.Bool("dry-run") || r.config.Sync.DryRun:
		mode = tasks.ModeDryRun
	}

	if cmd.Bool("ui") {
		return r.syncUI(ctx, mode)
	}

	engine, err := r.engineFor(mode)
	if err != nil {
		return err
	}

	r.logger.Info("starting sync", "mode", mode)
	r.writePlain("Starting watchlist sync (%s)...\n\n", mode)

	// Create progress channel and goroutine to handle updates. The drain
	// goroutine shares r.output with the summary below, so the summary must
	// not start until the drain has finished.
	progressCh := make(chan tasks.ProgressUpdate, 50)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchWatchlist:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.Partition:
				r.writePlain("🔍 %s\n", update.Message)
			case tasks.ProcessItem:
				r.writePlain("   %s\n", update.Message)
			case tasks.SaveCache:
				r.writePlain("\n💾 %s\n", update.Message)
			}
		}
	}()

	startedAt := time.Now()
	result, err := engine.Run(ctx, progressCh)
	close(progressCh)
	<-drained

	if err != nil {
		return err
	}

	if repoErr := r.recordRun(result, startedAt, time.Now()); repoErr != nil {
		r.logger.Warn("failed to record run history", "err", repoErr)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	r.writePlain("\n")
	r.writePlainHeader("Sync Complete!")
	r.writePlain("%s", formatter.FormatRunSummary(result))

	for _, item := range result.Items {
		if item.Status == tasks.StatusFailed {
			r.writePlain("  ✗ %s: %s\n", item.Item.Title, item.Reason)
		}
	}

	if mode == tasks.ModeEmitCommands && len(result.Commands) > 0 {
		r.writePlain("\n")
		r.writePlainHeader("Commands")
		for _, spec := range result.Commands {
			r.writePlain("%s\n\n", spec.Curl())
		}
	}

	return nil
}

// recordRun persists the run when a history database is configured.
func (r *Runner) recordRun(result *tasks.RunResult, startedAt, finishedAt time.Time) error {
	repo, closeDB, err := r.historyRepo()
	if err != nil {
		return err
	}
	defer closeDB()

	if repo == nil {
		return nil
	}

	run, err := repo.Record(result, startedAt, finishedAt)
	if err != nil {
		return err
	}
	r.logger.Info("recorded run", "id", run.ID, "sequence", run.Sequence)
	return nil
}
