package services

import (
	"net/http"
	"strings"
	"testing"
)

func TestRequestSpecCurl(t *testing.T) {
	spec := RequestSpec{
		Method: http.MethodPost,
		URL:    "http://localhost:7878/api/v3/movie",
		Headers: []Header{
			{Key: "X-Api-Key", Value: "secret"},
			{Key: "Content-Type", Value: "application/json"},
		},
		Body: []byte(`{"title":"Arrival"}`),
	}

	out := spec.Curl()

	for _, want := range []string{
		"curl -X POST 'http://localhost:7878/api/v3/movie'",
		"-H 'X-Api-Key: secret'",
		"-H 'Content-Type: application/json'",
		`-d '{"title":"Arrival"}'`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Curl() missing %q in:\n%s", want, out)
		}
	}
}

func TestRequestSpecCurlGetWithNote(t *testing.T) {
	spec := RequestSpec{
		Method: http.MethodGet,
		URL:    "http://localhost:8989/api/v3/series/lookup?term=Severance",
		Note:   "then add via POST /series using the tvdbId from the lookup results",
	}

	out := spec.Curl()

	if !strings.HasPrefix(out, "# then add via POST /series") {
		t.Errorf("Curl() should lead with the note comment:\n%s", out)
	}
	if strings.Contains(out, "-X GET") {
		t.Errorf("GET requests should not carry an explicit -X flag:\n%s", out)
	}
	if !strings.Contains(out, "curl 'http://localhost:8989/api/v3/series/lookup?term=Severance'") {
		t.Errorf("Curl() missing URL:\n%s", out)
	}
}

func TestBuildURL(t *testing.T) {
	got := buildURL("http://localhost:7878/api/v3/", "/movie", nil)
	if got != "http://localhost:7878/api/v3/movie" {
		t.Errorf("buildURL() = %q", got)
	}
}
