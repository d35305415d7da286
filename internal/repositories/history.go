package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"arrsync/internal/models"
	"arrsync/internal/shared"
	"arrsync/internal/tasks"
)

// schema holds the run history tables. Applied idempotently on startup so
// the database file can be created lazily on first use.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	sequence INTEGER NOT NULL,
	mode TEXT NOT NULL,
	started_at TIMESTAMP NOT NULL,
	finished_at TIMESTAMP NOT NULL,
	total INTEGER NOT NULL DEFAULT 0,
	skipped INTEGER NOT NULL DEFAULT 0,
	movies INTEGER NOT NULL DEFAULT 0,
	shows INTEGER NOT NULL DEFAULT 0,
	unknown INTEGER NOT NULL DEFAULT 0,
	synced INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0,
	planned INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS run_items (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL REFERENCES runs(id),
	title TEXT NOT NULL,
	media_type TEXT NOT NULL,
	year INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	target TEXT NOT NULL DEFAULT '',
	external_id TEXT NOT NULL DEFAULT '',
	reason TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_run_items_run_id ON run_items(run_id);

CREATE TABLE IF NOT EXISTS runs_sequence (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	value INTEGER NOT NULL
);

INSERT INTO runs_sequence (id, value)
SELECT 1, 0 WHERE NOT EXISTS (SELECT 1 FROM runs_sequence WHERE id = 1);
`

// RunRepository persists reconciliation runs and their per-item outcomes.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// InitSchema creates the run history tables if they do not exist yet
func (r *RunRepository) InitSchema() error {
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize run history schema: %w", err)
	}
	return nil
}

// Record persists a completed run and all of its item outcomes in one
// transaction. Returns the stored run record with its generated ID.
func (r *RunRepository) Record(result *tasks.RunResult, startedAt, finishedAt time.Time) (*models.RunRecord, error) {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return nil, fmt.Errorf("failed to generate sequence: %w", err)
	}

	run := &models.RunRecord{
		ID:         shared.GenerateID(),
		Sequence:   sequence,
		Mode:       result.Mode.String(),
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Total:      result.Total(),
		Skipped:    result.Skipped,
		Movies:     result.Movies,
		Shows:      result.Shows,
		Unknown:    result.Unknown,
		Synced:     result.Synced,
		Failed:     result.Failed,
		Planned:    result.Planned,
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, sequence, mode, started_at, finished_at, total, skipped, movies, shows, unknown, synced, failed, planned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Sequence,
		run.Mode,
		run.StartedAt,
		run.FinishedAt,
		run.Total,
		run.Skipped,
		run.Movies,
		run.Shows,
		run.Unknown,
		run.Synced,
		run.Failed,
		run.Planned,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}

	for _, item := range result.Items {
		_, err = tx.Exec(`
			INSERT INTO run_items (id, run_id, title, media_type, year, status, target, external_id, reason)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			shared.GenerateID(),
			run.ID,
			item.Item.Title,
			string(item.Item.Kind),
			item.Item.Year,
			item.Status.String(),
			item.Target,
			item.ExternalID,
			item.Reason,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert run item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit run: %w", err)
	}

	return run, nil
}

// Get retrieves a single run by ID
func (r *RunRepository) Get(id string) (*models.RunRecord, error) {
	query := `
		SELECT id, sequence, mode, started_at, finished_at, total, skipped, movies, shows, unknown, synced, failed, planned
		FROM runs
		WHERE id = ?
	`

	run, err := scanRun(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	return run, nil
}

// List retrieves the most recent runs, newest first. A limit of 0 returns
// all runs.
func (r *RunRepository) List(limit int) ([]*models.RunRecord, error) {
	query := `
		SELECT id, sequence, mode, started_at, finished_at, total, skipped, movies, shows, unknown, synced, failed, planned
		FROM runs
		ORDER BY sequence DESC
	`

	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// Items retrieves the per-item outcomes of a run in insertion order
func (r *RunRepository) Items(runID string) ([]*models.RunItemRecord, error) {
	query := `
		SELECT id, run_id, title, media_type, year, status, target, external_id, reason
		FROM run_items
		WHERE run_id = ?
		ORDER BY rowid ASC
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run items: %w", err)
	}
	defer rows.Close()

	var items []*models.RunItemRecord
	for rows.Next() {
		item := &models.RunItemRecord{}
		err := rows.Scan(
			&item.ID, &item.RunID, &item.Title, &item.MediaType, &item.Year,
			&item.Status, &item.Target, &item.ExternalID, &item.Reason,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*models.RunRecord, error) {
	run := &models.RunRecord{}
	err := row.Scan(
		&run.ID, &run.Sequence, &run.Mode, &run.StartedAt, &run.FinishedAt,
		&run.Total, &run.Skipped, &run.Movies, &run.Shows, &run.Unknown,
		&run.Synced, &run.Failed, &run.Planned,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}
