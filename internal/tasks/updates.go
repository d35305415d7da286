package tasks

import (
	"fmt"

	"arrsync/internal/models"
)

// ProgressUpdate represents a progress event during a reconciliation run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchWatchlist Phase = iota
	Partition
	ProcessItem
	SaveCache
)

func (p Phase) String() string {
	switch p {
	case FetchWatchlist:
		return "fetch_watchlist"
	case Partition:
		return "partition"
	case ProcessItem:
		return "process_item"
	case SaveCache:
		return "save_cache"
	default:
		return ""
	}
}

func fetchWatchlistUpdate(source string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchWatchlist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching watchlist from %s...", source),
	}
}

func partitionUpdate(skipped, pending int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Partition,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%d already synced, %d new to process", skipped, pending),
	}
}

func processItemUpdate(step, total int, item models.WatchlistItem) ProgressUpdate {
	year := "?"
	if item.Year > 0 {
		year = fmt.Sprintf("%d", item.Year)
	}
	return ProgressUpdate{
		Phase:   ProcessItem,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s (%s) - %s", step, total, item.Title, year, item.Kind),
		Data:    item,
	}
}

func saveCacheUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveCache,
		Step:    1,
		Total:   1,
		Message: "Saving sync cache...",
	}
}
