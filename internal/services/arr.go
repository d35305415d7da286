// Shared HTTP plumbing for the Radarr and Sonarr API clients.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"arrsync/internal/shared"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// alreadyAddedMarker is the phrase both backends embed in the errorMessage
// of a 400 response when the item is already tracked. Stringly-typed by
// necessity; the backends expose no structured code for this condition.
const alreadyAddedMarker = "already been added"

// maxErrorBodyLen bounds raw response text kept for diagnostics.
const maxErrorBodyLen = 200

// arrClient performs authenticated requests against one *arr instance.
type arrClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

func newArrClient(baseURL, apiKey string, httpClient *http.Client, limiter *rate.Limiter, logger *log.Logger) *arrClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &arrClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger,
	}
}

// arrResponse carries the status and raw body of a completed request, for
// outcome classification.
type arrResponse struct {
	StatusCode int
	Body       []byte
}

// do performs one rate-limited request. A nil payload sends no body.
func (c *arrClient) do(ctx context.Context, method, path string, query url.Values, payload any) (*arrResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, buildURL(c.baseURL, path, query), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &arrResponse{StatusCode: resp.StatusCode, Body: data}, nil
}

// getJSON performs a GET and decodes the body into out, treating non-2xx
// statuses as errors.
func (c *arrClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, shared.Truncate(string(resp.Body), maxErrorBodyLen))
	}
	if out != nil {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// arrErrorMessage extracts the errorMessage from a 400-class body.
//
// The backends return either a list of validation failures
// ([{"errorMessage": ...}]) or a single object; a body matching neither
// falls back to the truncated raw text.
func arrErrorMessage(body []byte) string {
	var failures []struct {
		ErrorMessage string `json:"errorMessage"`
	}
	if err := json.Unmarshal(body, &failures); err == nil && len(failures) > 0 && failures[0].ErrorMessage != "" {
		return failures[0].ErrorMessage
	}

	var single struct {
		ErrorMessage string `json:"errorMessage"`
		Message      string `json:"message"`
	}
	if err := json.Unmarshal(body, &single); err == nil {
		if single.ErrorMessage != "" {
			return single.ErrorMessage
		}
		if single.Message != "" {
			return single.Message
		}
	}

	return shared.Truncate(string(body), maxErrorBodyLen)
}

// containsMarker reports whether an error message carries the
// already-added phrase.
func containsMarker(msg string) bool {
	return strings.Contains(msg, alreadyAddedMarker)
}

// QualityProfile is one profile as listed by a backend.
type QualityProfile struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// findProfile returns the profile with the given ID, or nil.
func findProfile(profiles []QualityProfile, id int) *QualityProfile {
	for i := range profiles {
		if profiles[i].ID == id {
			return &profiles[i]
		}
	}
	return nil
}
