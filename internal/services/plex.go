// Plex watchlist implementation of [WatchlistSource]
//
// The discover/metadata provider returns the watchlist as an XML
// MediaContainer whose Directory children are shows and Video children are
// movies.
package services

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"arrsync/internal/models"
	"arrsync/internal/shared"

	"github.com/charmbracelet/log"
)

const defaultPlexURL = "https://metadata.provider.plex.tv"

// watchlistEntry is one Directory or Video element.
type watchlistEntry struct {
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
	Year  int    `xml:"year,attr"`
}

// watchlistContainer is the MediaContainer root element.
type watchlistContainer struct {
	XMLName     xml.Name         `xml:"MediaContainer"`
	Directories []watchlistEntry `xml:"Directory"`
	Videos      []watchlistEntry `xml:"Video"`
}

// PlexService implements [WatchlistSource] against the Plex metadata
// provider.
type PlexService struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *log.Logger
}

// NewPlexService creates a Plex watchlist client. An empty baseURL falls
// back to the public metadata provider.
func NewPlexService(baseURL, token string, httpClient *http.Client, logger *log.Logger) *PlexService {
	if baseURL == "" {
		baseURL = defaultPlexURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &PlexService{
		baseURL:    baseURL,
		token:      token,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (s *PlexService) Name() string {
	return "plex"
}

// Fetch retrieves the full watchlist snapshot. Directory entries precede
// Video entries, matching the provider's own grouping; ordering within a
// group follows the response.
func (s *PlexService) Fetch(ctx context.Context) ([]models.WatchlistItem, error) {
	if s.token == "" {
		return nil, fmt.Errorf("%w: Plex token", shared.ErrMissingCredentials)
	}

	query := url.Values{"X-Plex-Token": []string{s.token}}
	endpoint := buildURL(s.baseURL, "/library/sections/watchlist/all", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrWatchlistFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", shared.ErrWatchlistFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrWatchlistFetch, err)
	}

	var container watchlistContainer
	if err := xml.Unmarshal(body, &container); err != nil {
		return nil, fmt.Errorf("%w: malformed watchlist response: %v", shared.ErrWatchlistFetch, err)
	}

	entries := append(container.Directories, container.Videos...)
	items := make([]models.WatchlistItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, models.WatchlistItem{
			Title: entry.Title,
			Kind:  models.ParseMediaKind(entry.Type),
			Year:  entry.Year,
		})
	}

	s.logger.Debug("fetched watchlist", "items", len(items))
	return items, nil
}
