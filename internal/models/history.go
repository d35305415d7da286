package models

import "time"

// RunRecord is one persisted reconciliation run.
type RunRecord struct {
	ID         string    `json:"id"`
	Sequence   int       `json:"sequence"`
	Mode       string    `json:"mode"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Total      int       `json:"total"`
	Skipped    int       `json:"skipped"`
	Movies     int       `json:"movies"`
	Shows      int       `json:"shows"`
	Unknown    int       `json:"unknown"`
	Synced     int       `json:"synced"`
	Failed     int       `json:"failed"`
	Planned    int       `json:"planned"`
}

// RunItemRecord is one watchlist item's terminal state within a run.
type RunItemRecord struct {
	ID         string `json:"id"`
	RunID      string `json:"run_id"`
	Title      string `json:"title"`
	MediaType  string `json:"media_type"`
	Year       int    `json:"year,omitempty"`
	Status     string `json:"status"`
	Target     string `json:"target,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
	Reason     string `json:"reason,omitempty"`
}
