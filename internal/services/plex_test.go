package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"arrsync/internal/models"
	"arrsync/internal/shared"
)

const watchlistXML = `<?xml version="1.0" encoding="UTF-8"?>
<MediaContainer size="3">
  <Directory title="Severance" type="show" year="2022"/>
  <Directory title="The Leftovers" type="show"/>
  <Video title="Arrival" type="movie" year="2016"/>
</MediaContainer>`

func TestPlexFetch(t *testing.T) {
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/library/sections/watchlist/all" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotToken = r.URL.Query().Get("X-Plex-Token")
		w.Write([]byte(watchlistXML))
	}))
	defer srv.Close()

	svc := NewPlexService(srv.URL, "plex-token", srv.Client(), nil)

	items, err := svc.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if gotToken != "plex-token" {
		t.Errorf("token = %q", gotToken)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}

	// Directory entries precede Video entries
	want := []models.WatchlistItem{
		{Title: "Severance", Kind: models.Show, Year: 2022},
		{Title: "The Leftovers", Kind: models.Show, Year: 0},
		{Title: "Arrival", Kind: models.Movie, Year: 2016},
	}
	for i, w := range want {
		if items[i] != w {
			t.Errorf("items[%d] = %+v, want %+v", i, items[i], w)
		}
	}
}

func TestPlexFetchUnknownType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<MediaContainer><Video title="Something" type="clip" year="2020"/></MediaContainer>`))
	}))
	defer srv.Close()

	svc := NewPlexService(srv.URL, "plex-token", srv.Client(), nil)

	items, err := svc.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(items) != 1 || items[0].Kind != models.Unknown {
		t.Errorf("items = %+v, want one Unknown-kind item", items)
	}
}

func TestPlexFetchMissingToken(t *testing.T) {
	svc := NewPlexService("http://localhost:0", "", nil, nil)

	_, err := svc.Fetch(context.Background())
	if !errors.Is(err, shared.ErrMissingCredentials) {
		t.Errorf("Fetch() error = %v, want ErrMissingCredentials", err)
	}
}

func TestPlexFetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	svc := NewPlexService(srv.URL, "bad-token", srv.Client(), nil)

	_, err := svc.Fetch(context.Background())
	if !errors.Is(err, shared.ErrWatchlistFetch) {
		t.Errorf("Fetch() error = %v, want ErrWatchlistFetch", err)
	}
}

func TestPlexFetchMalformedXML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "xml"}`))
	}))
	defer srv.Close()

	svc := NewPlexService(srv.URL, "plex-token", srv.Client(), nil)

	_, err := svc.Fetch(context.Background())
	if !errors.Is(err, shared.ErrWatchlistFetch) {
		t.Errorf("Fetch() error = %v, want ErrWatchlistFetch", err)
	}
}
