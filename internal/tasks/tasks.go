// package tasks implements the watchlist reconciliation run.
//
// The core abstraction is SyncEngine, which drives each watchlist item
// through resolve → submit → cache update, one item at a time, in
// watchlist order. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"arrsync/internal/cache"
	"arrsync/internal/models"
	"arrsync/internal/services"
	"arrsync/internal/shared"

	"github.com/charmbracelet/log"
)

// Mode selects the terminal action for each resolved item.
type Mode int

const (
	// ModeExecute submits items to the backends.
	ModeExecute Mode = iota
	// ModeDryRun reports the intended action after resolution and stops
	// before submission; the cache is never touched for the item.
	ModeDryRun
	// ModeEmitCommands produces externally executable request descriptions
	// instead of performing them, then marks the item synced so the same
	// command is not re-emitted next run. The operator is expected to run
	// the emitted requests manually.
	ModeEmitCommands
)

func (m Mode) String() string {
	switch m {
	case ModeExecute:
		return "execute"
	case ModeDryRun:
		return "dry_run"
	case ModeEmitCommands:
		return "emit_commands"
	default:
		return ""
	}
}

// ItemStatus is the terminal state of one item within a run. Terminal
// states are never retried within the same run.
type ItemStatus int

const (
	// StatusSkipped means the item's key was already in the cache at
	// partition time; no resolution was attempted.
	StatusSkipped ItemStatus = iota
	// StatusSynced means the item was confirmed present in a backend this
	// run (freshly created, already existing, or emitted as a command).
	StatusSynced
	// StatusFailed means resolution or submission failed; the cache holds
	// no record, so the item is retried on the next run.
	StatusFailed
	// StatusUnknownKind means the item's media kind is neither movie nor
	// show; counted separately, never submitted.
	StatusUnknownKind
	// StatusPlanned is the dry-run terminal state: the item resolved and
	// would have been submitted.
	StatusPlanned
)

func (s ItemStatus) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusSynced:
		return "synced"
	case StatusFailed:
		return "failed"
	case StatusUnknownKind:
		return "unknown_kind"
	case StatusPlanned:
		return "planned"
	default:
		return ""
	}
}

// ItemResult is the per-item outcome of a run.
type ItemResult struct {
	Item       models.WatchlistItem
	Status     ItemStatus
	Target     string // backend tag written to the cache, if any
	ExternalID string // resolved metadata identifier, if any
	Reason     string // failure or plan detail
}

// RunResult aggregates one reconciliation run.
type RunResult struct {
	Mode        Mode
	Items       []ItemResult
	Skipped     int // already synced at partition time
	Movies      int // new movies processed
	Shows       int // new shows processed
	Unknown     int // unrecognized media kinds
	Synced      int // newly marked synced this run
	Failed      int // resolution or submission failures
	Planned     int // dry-run would-submit items
	CachedTotal int // cache size after the run
	Commands    []services.RequestSpec // emit-mode request descriptions
}

// Total returns the number of watchlist items seen this run.
func (r *RunResult) Total() int {
	return len(r.Items)
}

// SyncEngine defines the reconciliation operation.
type SyncEngine interface {
	// Run performs one full reconciliation pass. The only error return is
	// a failed watchlist fetch; every other failure is per-item and
	// aggregated into the result.
	Run(ctx context.Context, progress chan<- ProgressUpdate) (*RunResult, error)
}

// ReconcileEngine implements SyncEngine against a watchlist source, a
// metadata resolver, and the two backend submitters.
type ReconcileEngine struct {
	watchlist services.WatchlistSource
	resolver  services.MetadataResolver
	movies    services.Submitter
	shows     services.Submitter
	store     *cache.Store
	mode      Mode
	logger    *log.Logger
}

// Options configures a ReconcileEngine.
type Options struct {
	Mode   Mode
	Logger *log.Logger
}

// NewReconcileEngine creates a ReconcileEngine with the provided
// collaborators.
func NewReconcileEngine(watchlist services.WatchlistSource, resolver services.MetadataResolver, movies, shows services.Submitter, store *cache.Store, opts Options) *ReconcileEngine {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &ReconcileEngine{
		watchlist: watchlist,
		resolver:  resolver,
		movies:    movies,
		shows:     shows,
		store:     store,
		mode:      opts.Mode,
		logger:    logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ReconcileEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run performs one reconciliation pass: load cache, fetch watchlist,
// partition against the cache, drive each new item through the resolver
// and the matching submitter, save the cache once at run end.
func (e *ReconcileEngine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*RunResult, error) {
	if e.watchlist == nil {
		return nil, fmt.Errorf("%w: watchlist source not initialized", shared.ErrServiceUnavailable)
	}

	state := e.store.Load()
	e.logger.Info("loaded sync cache", "records", state.Len())

	e.sendProgress(progress, fetchWatchlistUpdate(e.watchlist.Name()))
	items, err := e.watchlist.Fetch(ctx)
	if err != nil {
		// The one early stop: without a watchlist there is nothing to
		// reconcile. The cache file is left as the last run saved it.
		return nil, fmt.Errorf("%w: %v", shared.ErrWatchlistFetch, err)
	}

	result := &RunResult{Mode: e.mode}

	var pending []models.WatchlistItem
	for _, item := range items {
		if state.IsSynced(item.Title, item.Kind, item.Year) {
			result.Items = append(result.Items, ItemResult{Item: item, Status: StatusSkipped})
			result.Skipped++
			continue
		}
		pending = append(pending, item)
	}
	e.sendProgress(progress, partitionUpdate(result.Skipped, len(pending)))
	e.logger.Info("partitioned watchlist", "total", len(items), "skipped", result.Skipped, "new", len(pending))

	for i, item := range pending {
		e.sendProgress(progress, processItemUpdate(i+1, len(pending), item))
		result.Items = append(result.Items, e.processItem(ctx, state, item, result))
	}

	result.CachedTotal = state.Len()

	e.sendProgress(progress, saveCacheUpdate())
	if err := e.store.Save(state); err != nil {
		// Best-effort durability: the run's decisions stand, the next run
		// redoes the work.
		e.logger.Warn("failed to save sync cache", "err", err)
	}

	return result, nil
}

// processItem drives one new item to a terminal state and updates the
// counters on result.
func (e *ReconcileEngine) processItem(ctx context.Context, state *cache.State, item models.WatchlistItem, result *RunResult) ItemResult {
	var submitter services.Submitter
	switch item.Kind {
	case models.Movie:
		result.Movies++
		submitter = e.movies
	case models.Show:
		result.Shows++
		submitter = e.shows
	default:
		e.logger.Warn("unknown media type, skipping", "title", item.Title, "type", item.Kind)
		result.Unknown++
		return ItemResult{Item: item, Status: StatusUnknownKind, Reason: fmt.Sprintf("unrecognized media type %q", item.Kind)}
	}

	externalID, err := e.resolver.Resolve(ctx, item.Title, item.Kind)
	if err != nil {
		e.logger.Warn("could not resolve metadata id", "title", item.Title, "err", err)
		result.Failed++
		return ItemResult{Item: item, Status: StatusFailed, Reason: err.Error()}
	}

	switch e.mode {
	case ModeDryRun:
		result.Planned++
		return ItemResult{
			Item:       item,
			Status:     StatusPlanned,
			Target:     submitter.Name(),
			ExternalID: externalID,
			Reason:     fmt.Sprintf("would add %s to %s (id %s)", item.Kind, submitter.Name(), externalID),
		}

	case ModeEmitCommands:
		specs, err := submitter.Describe(ctx, item, externalID)
		if err != nil {
			result.Failed++
			return ItemResult{Item: item, Status: StatusFailed, ExternalID: externalID, Reason: err.Error()}
		}
		result.Commands = append(result.Commands, specs...)
		target := submitter.Name() + "-curl"
		state.MarkSynced(item.Title, item.Kind, item.Year, target)
		result.Synced++
		return ItemResult{Item: item, Status: StatusSynced, Target: target, ExternalID: externalID}

	default:
		outcome := submitter.Submit(ctx, item, externalID)
		if outcome.Success() {
			state.MarkSynced(item.Title, item.Kind, item.Year, submitter.Name())
			result.Synced++
			return ItemResult{Item: item, Status: StatusSynced, Target: submitter.Name(), ExternalID: externalID}
		}
		result.Failed++
		return ItemResult{
			Item:       item,
			Status:     StatusFailed,
			ExternalID: externalID,
			Reason:     fmt.Sprintf("%s: %s", outcome.Kind, outcome.Reason),
		}
	}
}
