// Package nominatim is a small client for the OpenStreetMap Nominatim
// forward geocoding API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public Nominatim API endpoint
	DefaultBaseURL = "https://nominatim.openstreetmap.org"
	// DefaultUserAgent follows OSM usage policy requirements
	DefaultUserAgent = "mapgen/1.0"
	// DefaultTimeout for HTTP requests
	DefaultTimeout = 5 * time.Second
	// DefaultRateLimit is 1 request per second (OSM policy)
	DefaultRateLimit = rate.Limit(1.0)
	// RetryBaseDelay is the initial backoff delay
	RetryBaseDelay = 1 * time.Second
)

// Client handles communication with the Nominatim geocoding API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithRateLimit sets a custom rate limit (requests per second).
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithMaxRetries retries transient failures (network, 429, 5xx) up to n
// times with exponential backoff. The default is no retries.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n < 0 {
			n = 0
		}
		c.maxRetries = n
	}
}

// WithRetryDelay overrides the base backoff delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// NewClient creates a new Nominatim API client.
// email is included in the User-Agent header per OSM usage policy.
func NewClient(baseURL, email string, opts ...Option) *Client {
	userAgent := DefaultUserAgent
	if email != "" {
		userAgent = fmt.Sprintf("%s (%s)", DefaultUserAgent, email)
	}

	client := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(DefaultRateLimit, 1),
		retryDelay: RetryBaseDelay,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Search performs forward geocoding (query -> coordinates).
// Returns up to opts.Limit results (default: 1).
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")

	if opts.CountryCodes != "" {
		params.Set("countrycodes", opts.CountryCodes)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}
	params.Set("limit", strconv.Itoa(limit))

	if opts.Viewbox != nil {
		viewbox := fmt.Sprintf("%f,%f,%f,%f",
			opts.Viewbox.MinLon, opts.Viewbox.MinLat,
			opts.Viewbox.MaxLon, opts.Viewbox.MaxLat)
		params.Set("viewbox", viewbox)
		params.Set("bounded", "1")
	}

	requestURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	var results []SearchResult
	if err := c.doWithRetry(ctx, requestURL, &results); err != nil {
		return nil, fmt.Errorf("search geocoding: %w", err)
	}

	return results, nil
}

// doWithRetry executes an HTTP GET request, retrying transient failures.
func (c *Client) doWithRetry(ctx context.Context, requestURL string, result interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s, ...
			delay := c.retryDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error (%d)", resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
		}

		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("parse json: %w", err)
		}
		return nil
	}

	if c.maxRetries == 0 {
		return lastErr
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
