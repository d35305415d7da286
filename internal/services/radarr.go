// Radarr (movie backend) implementation of [Submitter]
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"arrsync/internal/models"
	"arrsync/internal/shared"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// radarrAddOptions controls post-add behavior.
type radarrAddOptions struct {
	SearchForMovie bool `json:"searchForMovie"`
}

// radarrAddPayload is the POST /movie request body.
type radarrAddPayload struct {
	Title            string           `json:"title"`
	QualityProfileID int              `json:"qualityProfileId"`
	TMDBID           int              `json:"tmdbId"`
	RootFolderPath   string           `json:"rootFolderPath"`
	Monitored        bool             `json:"monitored"`
	AddOptions       radarrAddOptions `json:"addOptions"`
}

// RadarrService implements [Submitter] for the movie backend.
type RadarrService struct {
	client *arrClient
	cfg    shared.RadarrConfig
	logger *log.Logger
}

// NewRadarrService creates a Radarr client from configuration. A nil
// httpClient or limiter gets a sensible default.
func NewRadarrService(cfg shared.RadarrConfig, httpClient *http.Client, limiter *rate.Limiter, logger *log.Logger) *RadarrService {
	if logger == nil {
		logger = log.Default()
	}
	return &RadarrService{
		client: newArrClient(cfg.URL, cfg.APIKey, httpClient, limiter, logger),
		cfg:    cfg,
		logger: logger,
	}
}

func (s *RadarrService) Name() string {
	return "radarr"
}

func (s *RadarrService) addPayload(title string, tmdbID int) radarrAddPayload {
	return radarrAddPayload{
		Title:            title,
		QualityProfileID: s.cfg.QualityProfile,
		TMDBID:           tmdbID,
		RootFolderPath:   s.cfg.RootFolder,
		Monitored:        true,
		AddOptions:       radarrAddOptions{SearchForMovie: true},
	}
}

// Submit asks Radarr to track the movie identified by externalID (a TMDB id).
func (s *RadarrService) Submit(ctx context.Context, item models.WatchlistItem, externalID string) Outcome {
	tmdbID, err := strconv.Atoi(externalID)
	if err != nil {
		return rejected(fmt.Sprintf("invalid TMDB id %q", externalID))
	}

	resp, err := s.client.do(ctx, http.MethodPost, "/movie", nil, s.addPayload(item.Title, tmdbID))
	if err != nil {
		s.logger.Warn("radarr request failed", "title", item.Title, "err", err)
		return transient(err.Error())
	}

	outcome := classifyMovieAdd(resp)
	switch outcome.Kind {
	case OutcomeCreated:
		s.logger.Info("added movie to Radarr", "title", item.Title)
	case OutcomeExists:
		s.logger.Info("movie already exists in Radarr", "title", item.Title)
	default:
		s.logger.Warn("movie not added", "title", item.Title, "outcome", outcome.Kind, "reason", outcome.Reason)
	}
	return outcome
}

// Describe returns the POST /movie request for command-emission mode.
func (s *RadarrService) Describe(ctx context.Context, item models.WatchlistItem, externalID string) ([]RequestSpec, error) {
	tmdbID, err := strconv.Atoi(externalID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid TMDB id %q", shared.ErrInvalidArgument, externalID)
	}

	body, err := json.Marshal(s.addPayload(item.Title, tmdbID))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	return []RequestSpec{{
		Method: http.MethodPost,
		URL:    buildURL(s.cfg.URL, "/movie", nil),
		Headers: []Header{
			{Key: "X-Api-Key", Value: s.cfg.APIKey},
			{Key: "Content-Type", Value: "application/json"},
			{Key: "Accept", Value: "application/json"},
		},
		Body: body,
	}}, nil
}

// QualityProfiles lists the profiles configured on the Radarr instance.
func (s *RadarrService) QualityProfiles(ctx context.Context) ([]QualityProfile, error) {
	var profiles []QualityProfile
	if err := s.client.getJSON(ctx, "/qualityProfile", nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// ValidateProfile checks that the configured quality profile exists on the
// instance and returns its name.
func (s *RadarrService) ValidateProfile(ctx context.Context) (string, error) {
	profiles, err := s.QualityProfiles(ctx)
	if err != nil {
		return "", err
	}
	if p := findProfile(profiles, s.cfg.QualityProfile); p != nil {
		return p.Name, nil
	}
	return "", fmt.Errorf("%w: Radarr quality profile %d", shared.ErrNotFound, s.cfg.QualityProfile)
}

// classifyMovieAdd maps a completed POST /movie response to an Outcome.
//
// A 400-class rejection is not automatically a failure: the body must be
// inspected for the already-added marker before being classified as an
// error.
func classifyMovieAdd(resp *arrResponse) Outcome {
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
