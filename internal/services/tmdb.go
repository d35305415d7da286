// TMDB implementation of [MetadataResolver]
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"arrsync/internal/models"
	"arrsync/internal/shared"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

const defaultTMDBURL = "https://api.themoviedb.org/3"

// tmdbSearchResponse is the shared shape of /search/movie and /search/tv.
type tmdbSearchResponse struct {
	Results []struct {
		ID int `json:"id"`
	} `json:"results"`
}

// TMDBService implements [MetadataResolver] against the TMDB search API.
type TMDBService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewTMDBService creates a TMDB resolver. An empty baseURL falls back to
// the public API.
func NewTMDBService(baseURL, apiKey string, httpClient *http.Client, limiter *rate.Limiter, logger *log.Logger) *TMDBService {
	if baseURL == "" {
		baseURL = defaultTMDBURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &TMDBService{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger,
	}
}

// Resolve searches TMDB by title and returns the ID of the first result.
// No fuzzy re-ranking is attempted; the first (highest-ranked) candidate
// wins.
func (s *TMDBService) Resolve(ctx context.Context, title string, kind models.MediaKind) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("%w: TMDB API key", shared.ErrMissingCredentials)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	path := "/search/movie"
	if kind == models.Show {
		path = "/search/tv"
	}
	query := url.Values{
		"api_key": []string{s.apiKey},
		"query":   []string{title},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, buildURL(s.baseURL, path, query), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: TMDB search status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var search tmdbSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return "", fmt.Errorf("failed to decode TMDB response: %w", err)
	}

	if len(search.Results) == 0 {
		return "", fmt.Errorf("%w: no TMDB match for %s %q", shared.ErrNotFound, kind, title)
	}

	return strconv.Itoa(search.Results[0].ID), nil
}
