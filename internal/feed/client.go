// Package feed provides the client for the polisen.se events feed.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jonesrussell/poliswatch/internal/constants"
	"github.com/jonesrussell/poliswatch/internal/domain"
	"github.com/jonesrussell/poliswatch/internal/metrics"
)

// errorInputLimit caps the payload prefix carried in parse errors.
const errorInputLimit = 64

// Client fetches event listings from the police events feed.
type Client struct {
	endpoint   string
	origin     string
	userAgent  string
	httpClient *http.Client
	metrics    *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the feed endpoint URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithUserAgent overrides the User-Agent header sent upstream.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) { c.userAgent = userAgent }
}

// WithMetrics attaches pipeline metrics to the client.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a feed client for the polisen.se events endpoint.
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint:   constants.DefaultFeedEndpoint,
		userAgent:  constants.DefaultUserAgent,
		httpClient: &http.Client{Timeout: constants.DefaultFeedTimeout},
		metrics:    metrics.NewNoop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.origin = deriveOrigin(c.endpoint)

	return c
}

// Endpoint returns the configured feed endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Origin returns the scheme and host of the configured endpoint, used to
// resolve the host-relative url fields the feed serves.
func (c *Client) Origin() string {
	return c.origin
}

// Events fetches the current event listing. A non-empty locationName is
// passed upstream to narrow the response; callers still verify matching
// because the feed scopes more loosely than they may want.
func (c *Client) Events(ctx context.Context, locationName string) ([]domain.RawEvent, error) {
	reqURL := c.endpoint
	if locationName != "" {
		reqURL += "?locationname=" + url.QueryEscape(locationName)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("feed new request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		c.metrics.RecordFeedRequest(0)
		return nil, &domain.FetchError{URL: reqURL, Err: doErr}
	}
	defer resp.Body.Close()

	c.metrics.RecordFeedRequest(resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.FetchError{URL: reqURL, Status: resp.StatusCode}
	}

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, &domain.FetchError{URL: reqURL, Err: readErr}
	}

	return decodeEvents(body)
}

// ResolveURL resolves an event url field against the feed origin. The
// feed serves these host relative; absolute URLs pass through untouched.
func (c *Client) ResolveURL(eventURL string) string {
	if eventURL == "" {
		return ""
	}

	if strings.HasPrefix(eventURL, "http://") || strings.HasPrefix(eventURL, "https://") {
		return eventURL
	}

	if !strings.HasPrefix(eventURL, "/") {
		return c.origin + "/" + eventURL
	}

	return c.origin + eventURL
}

// decodeEvents decodes the feed body as a JSON array. Elements that do
// not decode as events are skipped; a body that is not an array at all
// is a parse failure.
func decodeEvents(body []byte) ([]domain.RawEvent, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(body, &elements); err != nil {
		return nil, &domain.ParseError{Input: errorInput(body), Err: err}
	}

	events := make([]domain.RawEvent, 0, len(elements))

	for _, element := range elements {
		var ev domain.RawEvent
		if unmarshalErr := json.Unmarshal(element, &ev); unmarshalErr != nil {
			continue
		}

		events = append(events, ev)
	}

	return events, nil
}

// deriveOrigin extracts scheme://host from the endpoint URL.
func deriveOrigin(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "https://polisen.se"
	}

	return u.Scheme + "://" + u.Host
}

// errorInput returns a bounded prefix of the payload for error messages.
func errorInput(body []byte) string {
	s := string(body)
	if len(s) > errorInputLimit {
		return s[:errorInputLimit] + "..."
	}

	return s
}
