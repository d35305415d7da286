// package models defines the data model for watchlist reconciliation
package models

import "time"

// MediaKind identifies the kind of a watchlist entry.
type MediaKind string

const (
	Movie   MediaKind = "movie"
	Show    MediaKind = "show"
	Unknown MediaKind = "unknown"
)

// ParseMediaKind maps a raw watchlist type attribute to a MediaKind.
func ParseMediaKind(raw string) MediaKind {
	switch raw {
	case "movie":
		return Movie
	case "show":
		return Show
	default:
		return Unknown
	}
}

// WatchlistItem represents one entry from the watchlist snapshot.
//
// Items are rebuilt fresh each run and never persisted; Year is 0 when the
// watchlist carries no release year.
type WatchlistItem struct {
	Title string
	Kind  MediaKind
	Year  int
}

// SyncRecord records that an item is believed present in a backend.
//
// Records are overwritten, never appended, when the same key is processed
// again.
type SyncRecord struct {
	Title         string    `json:"title"`
	MediaType     MediaKind `json:"media_type"`
	Year          int       `json:"year,omitempty"`
	TargetService string    `json:"target_service"`
	SyncedAt      time.Time `json:"synced_at"`
}

// Candidate is one result from a metadata or backend lookup, ordered
// best-match first.
type Candidate struct {
	ID    string
	Title string
	Year  int
}
