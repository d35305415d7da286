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

func radarrConfig(url string) shared.RadarrConfig {
	return shared.RadarrConfig{
		URL:            url,
		APIKey:         "radarr-key",
		QualityProfile: 4,
		RootFolder:     "/movies",
	}
}

func TestClassifyMovieAdd(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   OutcomeKind
	}{
		{
			name:   "201 created",
			status: 201,
			body:   `{"id": 1}`,
			want:   OutcomeCreated,
		},
		{
			name:   "400 with already-added marker",
			status: 400,
			body:   `[{"errorMessage": "This movie has already been added"}]`,
			want:   OutcomeExists,
		},
		{
			name:   "400 other validation failure",
			status: 400,
			body:   `[{"errorMessage": "Root folder path is invalid"}]`,
			want:   OutcomeRejected,
		},
		{
			name:   "404 rejected",
			status: 404,
			body:   `{"message": "not found"}`,
			want:   OutcomeRejected,
		},
		{
			name:   "500 transient",
			status: 500,
			body:   `oops`,
			want:   OutcomeTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyMovieAdd(&arrResponse{StatusCode: tt.status, Body: []byte(tt.body)})
			if got.Kind != tt.want {
				t.Errorf("classifyMovieAdd() = %v (%q), want %v", got.Kind, got.Reason, tt.want)
			}
		})
	}
}

func TestRadarrSubmitSendsPayload(t *testing.T) {
	var gotPath, gotKey string
	var gotPayload radarrAddPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Api-Key")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 42}`))
	}))
	defer srv.Close()

	svc := NewRadarrService(radarrConfig(srv.URL), srv.Client(), nil, nil)
	item := models.WatchlistItem{Title: "Arrival", Kind: models.Movie, Year: 2016}

	outcome := svc.Submit(context.Background(), item, "329865")
	if outcome.Kind != OutcomeCreated {
		t.Fatalf("Submit() = %v (%q), want Created", outcome.Kind, outcome.Reason)
	}

	if gotPath != "/movie" {
		t.Errorf("path = %q, want /movie", gotPath)
	}
	if gotKey != "radarr-key" {
		t.Errorf("X-Api-Key = %q", gotKey)
	}
	if gotPayload.Title != "Arrival" || gotPayload.TMDBID != 329865 {
		t.Errorf("payload = %+v", gotPayload)
	}
	if gotPayload.QualityProfileID != 4 || gotPayload.RootFolderPath != "/movies" {
		t.Errorf("profile/root = %d %q", gotPayload.QualityProfileID, gotPayload.RootFolderPath)
	}
	if !gotPayload.Monitored || !gotPayload.AddOptions.SearchForMovie {
		t.Errorf("monitored/searchForMovie not set: %+v", gotPayload)
	}
}

func TestRadarrSubmitAlreadyAdded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`[{"errorMessage": "This movie has already been added"}]`))
	}))
	defer srv.Close()

	svc := NewRadarrService(radarrConfig(srv.URL), srv.Client(), nil, nil)
	item := models.WatchlistItem{Title: "Arrival", Kind: models.Movie, Year: 2016}

	outcome := svc.Submit(context.Background(), item, "329865")
	if outcome.Kind != OutcomeExists {
		t.Errorf("Submit() = %v, want AlreadyExists", outcome.Kind)
	}
	if !outcome.Success() {
		t.Error("AlreadyExists should count as success")
	}
}

func TestRadarrSubmitNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	svc := NewRadarrService(radarrConfig(srv.URL), nil, nil, nil)
	item := models.WatchlistItem{Title: "Arrival", Kind: models.Movie, Year: 2016}

	outcome := svc.Submit(context.Background(), item, "329865")
	if outcome.Kind != OutcomeTransient {
		t.Errorf("Submit() = %v, want TransientFailure", outcome.Kind)
	}
	if outcome.Reason == "" {
		t.Error("transient outcome should carry a reason")
	}
}

func TestRadarrSubmitInvalidExternalID(t *testing.T) {
	svc := NewRadarrService(radarrConfig("http://localhost:0"), nil, nil, nil)
	item := models.WatchlistItem{Title: "Arrival", Kind: models.Movie, Year: 2016}

	outcome := svc.Submit(context.Background(), item, "not-a-number")
	if outcome.Kind != OutcomeRejected {
		t.Errorf("Submit() = %v, want Rejected", outcome.Kind)
	}
}

func TestRadarrDescribe(t *testing.T) {
	svc := NewRadarrService(radarrConfig("http://localhost:7878/api/v3"), nil, nil, nil)
	item := models.WatchlistItem{Title: "Arrival", Kind: models.Movie, Year: 2016}

	specs, err := svc.Describe(context.Background(), item, "329865")
	if err != nil {
		t.Fatalf("Describe() error: %v", err)
	}
	if len(specs) != 1 {
		t.Fatalf("Describe() returned %d specs, want 1", len(specs))
	}

	spec := specs[0]
	if spec.Method != http.MethodPost {
		t.Errorf("method = %q", spec.Method)
	}
	if spec.URL != "http://localhost:7878/api/v3/movie" {
		t.Errorf("url = %q", spec.URL)
	}
	if !strings.Contains(string(spec.Body), `"tmdbId":329865`) {
		t.Errorf("body missing tmdbId: %s", spec.Body)
	}

	curl := spec.Curl()
	if !strings.Contains(curl, "-H 'X-Api-Key: radarr-key'") {
		t.Errorf("curl missing api key header:\n%s", curl)
	}
}

func TestRadarrValidateProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/qualityProfile" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`[{"id": 1, "name": "Any"}, {"id": 4, "name": "HD-1080p"}]`))
	}))
	defer srv.Close()

	svc := NewRadarrService(radarrConfig(srv.URL), srv.Client(), nil, nil)

	name, err := svc.ValidateProfile(context.Background())
	if err != nil {
		t.Fatalf("ValidateProfile() error: %v", err)
	}
	if name != "HD-1080p" {
		t.Errorf("profile name = %q", name)
	}
}

func TestRadarrValidateProfileMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 1, "name": "Any"}]`))
	}))
	defer srv.Close()

	svc := NewRadarrService(radarrConfig(srv.URL), srv.Client(), nil, nil)

	if _, err := svc.ValidateProfile(context.Background()); err == nil {
		t.Error("ValidateProfile() should fail for an unknown profile id")
	}
}
