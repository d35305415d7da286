package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"arrsync/internal/formatter"
	"arrsync/internal/shared"
)

// HistoryList prints recent reconciliation runs.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.historyRepo()
	if err != nil {
		return err
	}
	defer closeDB()

	if repo == nil {
		return fmt.Errorf("%w: no history database configured", shared.ErrMissingConfig)
	}

	runs, err := repo.List(cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No runs recorded yet\n")
	}
	return r.writePlain("%s", formatter.FormatRunHistory(runs))
}

// HistoryShow prints one run and its per-item outcomes.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: run id required", shared.ErrInvalidArgument)
	}

	repo, closeDB, err := r.historyRepo()
	if err != nil {
		return err
	}
	defer closeDB()

	if repo == nil {
		return fmt.Errorf("%w: no history database configured", shared.ErrMissingConfig)
	}

	run, err := repo.Get(id)
	if err != nil {
		return err
	}
	items, err := repo.Items(id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"run": run, "items": items}, true)
	}

	r.writePlainHeader(fmt.Sprintf("Run #%d (%s)", run.Sequence, run.Mode))
	r.writePlain("Finished: %s\n", run.FinishedAt.Format("2006-01-02 15:04:05"))
	r.writePlain("Total: %d  Synced: %d  Failed: %d  Skipped: %d\n\n", run.Total, run.Synced, run.Failed, run.Skipped)

	for i, item := range items {
		r.writePlain("%d. %s (%s) - %s", i+1, item.Title, item.MediaType, item.Status)
		if item.Target != "" {
			r.writePlain(" → %s", item.Target)
		}
		if item.Reason != "" {
			r.writePlain(" (%s)", item.Reason)
		}
		r.writePlain("\n")
	}

	return nil
}
