package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"git.home.luguber.info/inful/favwatch/internal/logfields"
	"git.home.luguber.info/inful/favwatch/internal/retry"
)

// DefaultBaseURL is the public TibiaData API endpoint.
const DefaultBaseURL = "https://api.tibiadata.com"

const userAgent = "favwatch/1.0"

// Source resolves the current presence of a named character. Queries must be
// idempotent and must surface failures as ObservationFailed, never panic or
// block past the caller's context deadline.
type Source interface {
	Query(ctx context.Context, name string) Snapshot
}

// TibiaDataClient implements Source against the TibiaData v4 character API.
type TibiaDataClient struct {
	baseURL string
	client  *http.Client
	policy  retry.Policy
}

// TibiaDataOption customizes a TibiaDataClient.
type TibiaDataOption func(*TibiaDataClient)

// WithBaseURL overrides the API endpoint (used by tests and mirrors).
func WithBaseURL(base string) TibiaDataOption {
	return func(c *TibiaDataClient) { c.baseURL = strings.TrimRight(base, "/") }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) TibiaDataOption {
	return func(c *TibiaDataClient) { c.client = hc }
}

// WithRetryPolicy sets the transient-failure retry policy.
func WithRetryPolicy(p retry.Policy) TibiaDataOption {
	return func(c *TibiaDataClient) { c.policy = p }
}

// NewTibiaDataClient builds a client with a bounded transport timeout; the
// per-query deadline still comes from the caller's context.
func NewTibiaDataClient(opts ...TibiaDataOption) *TibiaDataClient {
	c := &TibiaDataClient{
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		policy:  retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// characterResponse is the subset of the TibiaData v4 payload we consume.
type characterResponse struct {
	Character struct {
		Character struct {
			Name   string `json:"name"`
			Status string `json:"status"`
			Level  int    `json:"level"`
		} `json:"character"`
		Deaths []struct {
			Time    string `json:"time"`
			Killers []struct {
				Name string `json:"name"`
			} `json:"killers"`
		} `json:"deaths"`
	} `json:"character"`
}

// Query fetches the character and classifies its status. Transient failures
// get one bounded retry per the policy before the whole query is classified
// as ObservationFailed.
func (c *TibiaDataClient) Query(ctx context.Context, name string) Snapshot {
	for attempt := 0; ; attempt++ {
		snap, transient := c.queryOnce(ctx, name)
		if snap.Observation.Succeeded() || !transient || attempt >= c.policy.MaxRetries {
			return snap
		}

		select {
		case <-ctx.Done():
			return Snapshot{Observation: ObservationFailed}
		case <-time.After(c.policy.Delay(attempt + 1)):
		}
	}
}

// queryOnce performs a single HTTP round trip. The second return value marks
// failures worth retrying (network errors, 5xx); malformed payloads are not.
func (c *TibiaDataClient) queryOnce(ctx context.Context, name string) (Snapshot, bool) {
	failed := Snapshot{Observation: ObservationFailed}
	endpoint := fmt.Sprintf("%s/v4/character/%s", c.baseURL, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		slog.Debug("Presence request build failed", logfields.Character(name), logfields.Error(err))
		return failed, false
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Debug("Presence query failed", logfields.Character(name), logfields.Error(err))
		return failed, true
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		slog.Debug("Presence API unavailable", logfields.Character(name), slog.Int("status", resp.StatusCode))
		return failed, true
	}
	if resp.StatusCode != http.StatusOK {
		slog.Debug("Presence query rejected", logfields.Character(name), slog.Int("status", resp.StatusCode))
		return failed, false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return failed, true
	}

	var payload characterResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.Debug("Presence payload unparseable", logfields.Character(name), logfields.Error(err))
		return failed, false
	}

	snap := Snapshot{Level: payload.Character.Character.Level}
	if deaths := payload.Character.Deaths; len(deaths) > 0 {
		killer := ""
		if len(deaths[0].Killers) > 0 {
			killer = deaths[0].Killers[0].Name
		}
		snap.LastDeath = deaths[0].Time + "|" + killer
	}

	switch strings.ToLower(payload.Character.Character.Status) {
	case "online":
		snap.Observation = ObservedOnline
		return snap, false
	case "offline":
		snap.Observation = ObservedOffline
		return snap, false
	default:
		// Missing or unexpected status counts as "data temporarily
		// unavailable", not as a presence value.
		return failed, false
	}
}
