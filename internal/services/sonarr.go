// Sonarr (show backend) implementation of [Submitter]
//
// Sonarr indexes series by its own TVDB-based identifier scheme, not the
// metadata resolver's, so submission is a two-step protocol: a free-text
// lookup against the backend's own search endpoint, then an add using the
// canonical title and tvdbId from the first candidate.
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"arrsync/internal/models"
	"arrsync/internal/shared"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// sonarrAddOptions controls post-add behavior.
type sonarrAddOptions struct {
	SearchForMissingEpisodes bool `json:"searchForMissingEpisodes"`
}

// sonarrAddPayload is the POST /series request body.
type sonarrAddPayload struct {
	Title             string           `json:"title"`
	QualityProfileID  int              `json:"qualityProfileId"`
	LanguageProfileID int              `json:"languageProfileId"`
	TVDBID            int              `json:"tvdbId"`
	RootFolderPath    string           `json:"rootFolderPath"`
	Monitored         bool             `json:"monitored"`
	AddOptions        sonarrAddOptions `json:"addOptions"`
}

// sonarrLookupResult is one candidate from GET /series/lookup.
type sonarrLookupResult struct {
	Title  string `json:"title"`
	TVDBID int    `json:"tvdbId"`
	Year   int    `json:"year"`
}

// SonarrService implements [Submitter] for the show backend.
type SonarrService struct {
	client *arrClient
	cfg    shared.SonarrConfig
	logger *log.Logger
}

// NewSonarrService creates a Sonarr client from configuration. A nil
// httpClient or limiter gets a sensible default.
func NewSonarrService(cfg shared.SonarrConfig, httpClient *http.Client, limiter *rate.Limiter, logger *log.Logger) *SonarrService {
	if logger == nil {
		logger = log.Default()
	}
	return &SonarrService{
		client: newArrClient(cfg.URL, cfg.APIKey, httpClient, limiter, logger),
		cfg:    cfg,
		logger: logger,
	}
}

func (s *SonarrService) Name() string {
	return "sonarr"
}

// Lookup queries Sonarr's own search endpoint by free-text term, returning
// candidates ordered best-match first.
func (s *SonarrService) Lookup(ctx context.Context, term string) ([]models.Candidate, error) {
	query := url.Values{"term": []string{term}}

	var results []sonarrLookupResult
	if err := s.client.getJSON(ctx, "/series/lookup", query, &results); err != nil {
		return nil, err
	}

	candidates := make([]models.Candidate, 0, len(results))
	for _, r := range results {
		candidates = append(candidates, models.Candidate{
			ID:    strconv.Itoa(r.TVDBID),
			Title: r.Title,
			Year:  r.Year,
		})
	}
	return candidates, nil
}

func (s *SonarrService) addPayload(canonicalTitle string, tvdbID int) sonarrAddPayload {
	return sonarrAddPayload{
		Title:             canonicalTitle,
		QualityProfileID:  s.cfg.QualityProfile,
		LanguageProfileID: s.cfg.LanguageProfile,
		TVDBID:            tvdbID,
		RootFolderPath:    s.cfg.RootFolder,
		Monitored:         true,
		AddOptions:        sonarrAddOptions{SearchForMissingEpisodes: true},
	}
}

// Submit looks the show up on Sonarr by title, then adds it using the
// canonical title from the first candidate. The externalID from the
// metadata resolver is not part of Sonarr's identifier space and is unused
// here.
func (s *SonarrService) Submit(ctx context.Context, item models.WatchlistItem, externalID string) Outcome {
	candidates, err := s.Lookup(ctx, item.Title)
	if err != nil {
		s.logger.Warn("sonarr lookup failed", "title", item.Title, "err", err)
		return transient(err.Error())
	}
	if len(candidates) == 0 {
		s.logger.Warn("no series found for lookup term", "title", item.Title)
		return rejected("no lookup results")
	}

	best := candidates[0]
	tvdbID, err := strconv.Atoi(best.ID)
	if err != nil {
		return rejected(fmt.Sprintf("invalid tvdbId %q in lookup result", best.ID))
	}

	resp, err := s.client.do(ctx, http.MethodPost, "/series", nil, s.addPayload(best.Title, tvdbID))
	if err != nil {
		s.logger.Warn("sonarr request failed", "title", best.Title, "err", err)
		return transient(err.Error())
	}

	outcome := classifySeriesAdd(resp)
	switch outcome.Kind {
	case OutcomeCreated:
		s.logger.Info("added series to Sonarr", "title", best.Title)
	case OutcomeExists:
		s.logger.Info("series already exists in Sonarr", "title", best.Title)
	default:
		s.logger.Warn("series not added", "title", best.Title, "outcome", outcome.Kind, "reason", outcome.Reason)
	}
	return outcome
}

// Describe returns the lookup request for command-emission mode.
//
// The tvdbId is unknown until the operator runs the lookup, so only the
// first step of the two-step protocol can be emitted.
func (s *SonarrService) Describe(ctx context.Context, item models.WatchlistItem, externalID string) ([]RequestSpec, error) {
	query := url.Values{"term": []string{item.Title}}

	return []RequestSpec{{
		Method: http.MethodGet,
		URL:    buildURL(s.cfg.URL, "/series/lookup", query),
		Headers: []Header{
			{Key: "X-Api-Key", Value: s.cfg.APIKey},
			{Key: "Accept", Value: "application/json"},
		},
		Note: "then add via POST /series using the tvdbId from the lookup results",
	}}, nil
}

// QualityProfiles lists the profiles configured on the Sonarr instance.
func (s *SonarrService) QualityProfiles(ctx context.Context) ([]QualityProfile, error) {
	var profiles []QualityProfile
	if err := s.client.getJSON(ctx, "/qualityProfile", nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// ValidateProfile checks that the configured quality profile exists on the
// instance and returns its name.
func (s *SonarrService) ValidateProfile(ctx context.Context) (string, error) {
	profiles, err := s.QualityProfiles(ctx)
	if err != nil {
		return "", err
	}
	if p := findProfile(profiles, s.cfg.QualityProfile); p != nil {
		return p.Name, nil
	}
	return "", fmt.Errorf("%w: Sonarr quality profile %d", shared.ErrNotFound, s.cfg.QualityProfile)
}

// classifySeriesAdd maps a completed POST /series response to an Outcome,
// using the same error-body convention as the movie backend.
func classifySeriesAdd(resp *arrResponse) Outcome {
	switch {
	case resp.StatusCode == http.StatusCreated:
		return created()
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		msg := arrErrorMessage(resp.Body)
		if containsMarker(msg) {
			return alreadyExists()
		}
		return rejected(msg)
	default:
		return transient(fmt.Sprintf("status %d: %s", resp.StatusCode, shared.Truncate(string(resp.Body), maxErrorBodyLen)))
	}
}
