package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"arrsync/internal/models"
	"arrsync/internal/shared"
)

func sonarrConfig(url string) shared.SonarrConfig {
	return shared.SonarrConfig{
		URL:             url,
		APIKey:          "sonarr-key",
		QualityProfile:  4,
		LanguageProfile: 1,
		RootFolder:      "/shows",
	}
}

func TestSonarrSubmitLookupThenAdd(t *testing.T) {
	var lookupTerm string
	var addPayload sonarrAddPayload
	addCalled := false

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/series/lookup":
			lookupTerm = r.URL.Query().Get("term")
			w.Write([]byte(`[{"title": "Severance", "tvdbId": 371980, "year": 2022}]`))
		case "/series":
			addCalled = true
			if err := json.NewDecoder(r.Body).Decode(&addPayload); err != nil {
				t.Errorf("failed to decode payload: %v", err)
			}
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id": 7}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	svc := NewSonarrService(sonarrConfig(srv.URL), srv.Client(), nil, nil)
	item := models.WatchlistItem{Title: "severance", Kind: models.Show, Year: 2022}

	outcome := svc.Submit(context.Background(), item, "95396")
	if outcome.Kind != OutcomeCreated {
		t.Fatalf("Submit() = %v (%q), want Created", outcome.Kind, outcome.Reason)
	}

	if lookupTerm != "severance" {
		t.Errorf("lookup term = %q", lookupTerm)
	}
	if !addCalled {
		t.Fatal("create endpoint was never called")
	}
	// Canonical title from the lookup, not the watchlist title
	if addPayload.Title != "Severance" {
		t.Errorf("payload title = %q, want canonical %q", addPayload.Title, "Severance")
	}
	if addPayload.TVDBID != 371980 {
		t.Errorf("tvdbId = %d", addPayload.TVDBID)
	}
	if addPayload.LanguageProfileID != 1 || addPayload.QualityProfileID != 4 {
		t.Errorf("profiles = %d/%d", addPayload.QualityProfileID, addPayload.LanguageProfileID)
	}
	if !addPayload.AddOptions.SearchForMissingEpisodes {
		t.Error("searchForMissingEpisodes not set")
	}
}

func TestSonarrSubmitEmptyLookup(t *testing.T) {
	addCalled := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/series/lookup":
			w.Write([]byte(`[]`))
		case "/series":
			addCalled = true
		}
	}))
	defer srv.Close()

	svc := NewSonarrService(sonarrConfig(srv.URL), srv.Client(), nil, nil)
	item := models.WatchlistItem{Title: "Nonexistent Show", Kind: models.Show}

	outcome := svc.Submit(context.Background(), item, "1")
	if outcome.Kind != OutcomeRejected {
		t.Errorf("Submit() = %v, want Rejected", outcome.Kind)
	}
	if addCalled {
		t.Error("create endpoint must not be called when lookup is empty")
	}
}

func TestSonarrSubmitAlreadyAdded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/series/lookup":
			w.Write([]byte(`[{"title": "Severance", "tvdbId": 371980}]`))
		case "/series":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`[{"errorMessage": "This series has already been added"}]`))
		}
	}))
	defer srv.Close()

	svc := NewSonarrService(sonarrConfig(srv.URL), srv.Client(), nil, nil)
	item := models.WatchlistItem{Title: "Severance", Kind: models.Show, Year: 2022}

	outcome := svc.Submit(context.Background(), item, "95396")
	if outcome.Kind != OutcomeExists {
		t.Errorf("Submit() = %v, want AlreadyExists", outcome.Kind)
	}
}

func TestSonarrSubmitLookupNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	svc := NewSonarrService(sonarrConfig(srv.URL), nil, nil, nil)
	item := models.WatchlistItem{Title: "Severance", Kind: models.Show}

	outcome := svc.Submit(context.Background(), item, "95396")
	if outcome.Kind != OutcomeTransient {
		t.Errorf("Submit() = %v, want TransientFailure", outcome.Kind)
	}
}

func TestSonarrLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"title": "The Wire", "tvdbId": 79126, "year": 2002},
			{"title": "The Wire (UK)", "tvdbId": 12345, "year": 2010}
		]`))
	}))
	defer srv.Close()

	svc := NewSonarrService(sonarrConfig(srv.URL), srv.Client(), nil, nil)

	candidates, err := svc.Lookup(context.Background(), "The Wire")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates", len(candidates))
	}
	if candidates[0].ID != "79126" || candidates[0].Title != "The Wire" {
		t.Errorf("first candidate = %+v", candidates[0])
	}
}

func TestSonarrDescribe(t *testing.T) {
	svc := NewSonarrService(sonarrConfig("http://localhost:8989/api/v3"), nil, nil, nil)
	item := models.WatchlistItem{Title: "Severance", Kind: models.Show, Year: 2022}

	specs, err := svc.Describe(context.Background(), item, "95396")
	if err != nil {
		t.Fatalf("Describe() error: %v", err)
	}
	if len(specs) != 1 {
		t.Fatalf("Describe() returned %d specs, want 1", len(specs))
	}

	spec := specs[0]
	if spec.Method != http.MethodGet {
		t.Errorf("method = %q", spec.Method)
	}
	if !strings.Contains(spec.URL, "/series/lookup?term=Severance") {
		t.Errorf("url = %q", spec.URL)
	}
	if spec.Note == "" {
		t.Error("show describe should carry the follow-up note")
	}
	if len(spec.Body) != 0 {
		t.Error("lookup request has no body")
	}
}
