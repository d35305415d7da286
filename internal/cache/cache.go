// package cache implements the persistent dedup cache for watchlist
// reconciliation.
//
// The cache maps idempotency keys to sync records in a single JSON file.
// A key being present is the engine's only proof that an item has already
// been requested from a backend; absence means the item is re-submitted.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"arrsync/internal/models"

	"github.com/charmbracelet/log"
)

// SyncKey is a deterministic fingerprint identifying a watchlist item.
type SyncKey string

// DeriveKey computes the idempotency key for (title, kind, year).
//
// The key is the hex MD5 of "title|kind|year", with "unknown" standing in
// for a missing year. Known limitations, kept for compatibility with
// existing cache files: a literal '|' in a title is not escaped, so two
// different field splits can collide; and two items sharing title and kind
// with no year collapse to a single key.
func DeriveKey(title string, kind models.MediaKind, year int) SyncKey {
	yearPart := "unknown"
	if year > 0 {
		yearPart = strconv.Itoa(year)
	}
	sum := md5.Sum([]byte(title + "|" + string(kind) + "|" + yearPart))
	return SyncKey(hex.EncodeToString(sum[:]))
}

// State is the in-memory cache contents for one reconciliation run.
//
// Owned exclusively by the engine for the duration of a run; there is no
// locking on the underlying file, so concurrent invocations race on
// load/save.
type State struct {
	SyncedItems map[SyncKey]models.SyncRecord `json:"synced_items"`
	LastRefresh time.Time                     `json:"last_refresh"`
}

// NewState returns an empty state stamped with the current time.
func NewState() *State {
	return &State{
		SyncedItems: make(map[SyncKey]models.SyncRecord),
		LastRefresh: time.Now(),
	}
}

// IsSynced reports whether the item's key is present in the cache.
func (s *State) IsSynced(title string, kind models.MediaKind, year int) bool {
	_, ok := s.SyncedItems[DeriveKey(title, kind, year)]
	return ok
}

// MarkSynced inserts or overwrites the item's sync record with the current
// timestamp.
func (s *State) MarkSynced(title string, kind models.MediaKind, year int, target string) {
	s.SyncedItems[DeriveKey(title, kind, year)] = models.SyncRecord{
		Title:         title,
		MediaType:     kind,
		Year:          year,
		TargetService: target,
		SyncedAt:      time.Now(),
	}
}

// Len returns the number of cached records.
func (s *State) Len() int {
	return len(s.SyncedItems)
}

// Store loads and saves cache state at a fixed file path.
type Store struct {
	path   string
	maxAge time.Duration
	logger *log.Logger
}

// NewStore creates a Store for the given path and staleness threshold.
func NewStore(path string, maxAge time.Duration, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{path: path, maxAge: maxAge, logger: logger}
}

// Path returns the cache file location.
func (st *Store) Path() string {
	return st.path
}

// Load reads the cache file and applies the staleness policy.
//
// A missing or malformed file yields a fresh empty state; a state older
// than the staleness threshold has its records discarded and its timestamp
// reset, forcing re-verification against the backends. Load never fails
// the run.
func (st *Store) Load() *State {
	data, err := os.ReadFile(st.path)
	if err != nil {
		if os.IsNotExist(err) {
			st.logger.Info("creating new sync cache", "path", st.path)
		} else {
			st.logger.Warn("failed to read sync cache, starting fresh", "path", st.path, "err", err)
		}
		return NewState()
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		st.logger.Warn("malformed sync cache, starting fresh", "path", st.path, "err", err)
		return NewState()
	}
	if state.SyncedItems == nil {
		state.SyncedItems = make(map[SyncKey]models.SyncRecord)
	}

	if st.maxAge > 0 && time.Since(state.LastRefresh) > st.maxAge {
		st.logger.Info("sync cache expired, will re-verify against backends", "max_age", st.maxAge)
		return NewState()
	}

	return &state
}

// Save serializes the state and writes it atomically (temp file + rename),
// creating parent directories as needed.
//
// Callers treat a save failure as non-fatal: the next run redoes the work.
func (st *Store) Save(state *State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sync cache: %w", err)
	}

	dir := filepath.Dir(st.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	tmp := st.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write sync cache: %w", err)
	}
	if err := os.Rename(tmp, st.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace sync cache: %w", err)
	}

	return nil
}

// Clear removes the cache file, if present.
func (st *Store) Clear() error {
	if err := os.Remove(st.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove sync cache: %w", err)
	}
	return nil
}
