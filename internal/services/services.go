// package services defines interfaces for the external collaborators of the
// reconciliation engine
//
// Plex (watchlist), TMDB (metadata), Radarr and Sonarr (download backends)
package services

import (
	"context"

	"arrsync/internal/models"
)

// WatchlistSource provides the read-only watchlist snapshot for a run.
type WatchlistSource interface {
	// Fetch retrieves the full watchlist. No pagination contract is
	// assumed; a single response covers the whole list.
	Fetch(ctx context.Context) ([]models.WatchlistItem, error)

	// Name returns the name of the source (e.g. "plex")
	Name() string
}

// MetadataResolver translates a human title into the external identifier a
// backend expects.
type MetadataResolver interface {
	// Resolve returns the identifier of the first (highest-ranked) match,
	// or an error wrapping shared.ErrNotFound when there are no candidates.
	// The engine treats any resolver error as terminal for that item within
	// the run.
	Resolve(ctx context.Context, title string, kind models.MediaKind) (string, error)
}

// Submitter requests an item from one download backend.
type Submitter interface {
	// Submit asks the backend to track the item, classifying the response
	// into an Outcome. Network trouble is converted at the call site; Submit
	// never propagates an error.
	Submit(ctx context.Context, item models.WatchlistItem, externalID string) Outcome

	// Describe returns the externally executable request(s) equivalent to
	// what Submit would send, for command-emission mode.
	Describe(ctx context.Context, item models.WatchlistItem, externalID string) ([]RequestSpec, error)

	// Name returns the backend name used to tag cache records (e.g. "radarr")
	Name() string
}

// OutcomeKind classifies a submission attempt.
type OutcomeKind int

const (
	// OutcomeCreated means the backend accepted the new request.
	OutcomeCreated OutcomeKind = iota
	// OutcomeExists means the backend rejected the request because the item
	// is already tracked there. Success for dedup purposes.
	OutcomeExists
	// OutcomeRejected is any other 400-class response, or a lookup that
	// returned no candidates. Retried on the next run.
	OutcomeRejected
	// OutcomeTransient is a network error, timeout, or 5xx. Retried on the
	// next run; distinguished from Rejected only for logging.
	OutcomeTransient
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCreated:
		return "created"
	case OutcomeExists:
		return "already_exists"
	case OutcomeRejected:
		return "rejected"
	case OutcomeTransient:
		return "transient_failure"
	default:
		return ""
	}
}

// Outcome is the structured result of one submission attempt.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
}

// Success reports whether the item should be marked synced.
func (o Outcome) Success() bool {
	return o.Kind == OutcomeCreated || o.Kind == OutcomeExists
}

func created() Outcome {
	return Outcome{Kind: OutcomeCreated}
}

func alreadyExists() Outcome {
	return Outcome{Kind: OutcomeExists}
}

func rejected(reason string) Outcome {
	return Outcome{Kind: OutcomeRejected, Reason: reason}
}

func transient(reason string) Outcome {
	return Outcome{Kind: OutcomeTransient, Reason: reason}
}
