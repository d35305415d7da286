package repositories

import (
	"database/sql"
	"testing"
	"time"

	"arrsync/internal/models"
	"arrsync/internal/tasks"

	_ "github.com/mattn/go-sqlite3"
)

func testRepo(t *testing.T) *RunRepository {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := NewRunRepository(db)
	if err := repo.InitSchema(); err != nil {
		t.Fatalf("InitSchema() error: %v", err)
	}
	return repo
}

func sampleResult() *tasks.RunResult {
	return &tasks.RunResult{
		Mode: tasks.ModeExecute,
		Items: []tasks.ItemResult{
			{
				Item:       models.WatchlistItem{Title: "Arrival", Kind: models.Movie, Year: 2016},
				Status:     tasks.StatusSynced,
				Target:     "radarr",
				ExternalID: "329865",
			},
			{
				Item:   models.WatchlistItem{Title: "Severance", Kind: models.Show, Year: 2022},
				Status: tasks.StatusFailed,
				Reason: "transient: connection refused",
			},
		},
		Movies: 1,
		Shows:  1,
		Synced: 1,
		Failed: 1,
	}
}

func TestRecordAndGet(t *testing.T) {
	repo := testRepo(t)

	started := time.Now().Add(-time.Minute)
	finished := time.Now()

	run, err := repo.Record(sampleResult(), started, finished)
	if err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	if run.ID == "" {
		t.Fatal("run ID not generated")
	}
	if run.Sequence != 1 {
		t.Errorf("sequence = %d, want 1", run.Sequence)
	}

	got, err := repo.Get(run.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Mode != "execute" {
		t.Errorf("mode = %q", got.Mode)
	}
	if got.Total != 2 || got.Synced != 1 || got.Failed != 1 {
		t.Errorf("counters = total %d synced %d failed %d", got.Total, got.Synced, got.Failed)
	}
}

func TestRecordPersistsItems(t *testing.T) {
	repo := testRepo(t)

	run, err := repo.Record(sampleResult(), time.Now(), time.Now())
	if err != nil {
		t.Fatalf("Record() error: %v", err)
	}

	items, err := repo.Items(run.ID)
	if err != nil {
		t.Fatalf("Items() error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Title != "Arrival" || items[0].Status != "synced" || items[0].Target != "radarr" {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[1].Title != "Severance" || items[1].Status != "failed" || items[1].Reason == "" {
		t.Errorf("items[1] = %+v", items[1])
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	repo := testRepo(t)

	for i := 0; i < 3; i++ {
		if _, err := repo.Record(sampleResult(), time.Now(), time.Now()); err != nil {
			t.Fatalf("Record() error: %v", err)
		}
	}

	runs, err := repo.List(0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
	if runs[0].Sequence != 3 || runs[2].Sequence != 1 {
		t.Errorf("sequences = %d,%d,%d, want newest first", runs[0].Sequence, runs[1].Sequence, runs[2].Sequence)
	}

	limited, err := repo.List(2)
	if err != nil {
		t.Fatalf("List(2) error: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("got %d runs with limit 2", len(limited))
	}
}

func TestGetMissingRun(t *testing.T) {
	repo := testRepo(t)

	if _, err := repo.Get("nonexistent"); err == nil {
		t.Error("Get() on missing run should fail")
	}
}

func TestInitSchemaIsIdempotent(t *testing.T) {
	repo := testRepo(t)

	if err := repo.InitSchema(); err != nil {
		t.Fatalf("second InitSchema() error: %v", err)
	}
	if _, err := repo.Record(sampleResult(), time.Now(), time.Now()); err != nil {
		t.Fatalf("Record() after re-init error: %v", err)
	}
}
