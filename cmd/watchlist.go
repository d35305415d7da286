package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"arrsync/internal/formatter"
	"arrsync/internal/shared"
)

// WatchlistList fetches and prints the current watchlist.
func (r *Runner) WatchlistList(ctx context.Context, cmd *cli.Command) error {
	if r.plex == nil {
		return fmt.Errorf("%w: watchlist service not initialized", shared.ErrServiceUnavailable)
	}

	items, err := r.plex.Fetch(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(items, cmd.Bool("pretty"))
	}

	out, err := formatter.ExportToText(r.plex.Name(), items)
	if err != nil {
		return err
	}
	return r.writePlain("%s", out)
}

// WatchlistExport fetches the watchlist and writes it to a file.
func (r *Runner) WatchlistExport(ctx context.Context, cmd *cli.Command) error {
	if r.plex == nil {
		return fmt.Errorf("%w: watchlist service not initialized", shared.ErrServiceUnavailable)
	}

	items, err := r.plex.Fetch(ctx)
	if err != nil {
		return err
	}

	format := cmd.String("format")
	output := cmd.String("output")

	var written string
	switch format {
	case "csv":
		written, err = formatter.WriteCSVExport(items, output)
	case "markdown", "md":
		written, err = formatter.WriteMarkdownExport(r.plex.Name(), items, output)
	case "text", "txt":
		written, err = formatter.WriteTextExport(r.plex.Name(), items, output)
	default:
		return fmt.Errorf("%w: invalid format '%s' (must be csv, markdown, or text)", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return err
	}

	r.logger.Info("exported watchlist", "format", format, "file", written)
	return r.writePlain("Exported %d items to %s\n", len(items), written)
}
