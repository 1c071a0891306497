// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openfda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	relayerrors "github.com/sirseerhq/fda-relay/internal/errors"
	"github.com/sirseerhq/fda-relay/internal/fdaerror"
	"github.com/sirseerhq/fda-relay/internal/ratelimit"
)

// DefaultEndpoint is the public openFDA 510(k) clearance endpoint.
const DefaultEndpoint = "https://api.fda.gov/device/510k.json"

// defaultTimeout bounds a single page request when the caller does not
// configure one.
const defaultTimeout = 30 * time.Second

// ClientConfig holds everything a RESTClient needs. All fields are
// optional; zero values fall back to working defaults against the public
// openFDA endpoint.
type ClientConfig struct {
	// Endpoint is the base URL of the 510(k) search API.
	// Defaults to DefaultEndpoint.
	Endpoint string

	// APIKey authenticates requests for the higher per-key quota.
	// Empty means anonymous access under the shared per-IP quota.
	APIKey string

	// Timeout bounds each page request. Defaults to 30 seconds.
	Timeout time.Duration

	// RequestsPerMinute paces outgoing requests. Zero derives the
	// quota from whether an API key is present.
	RequestsPerMinute int

	// UserAgent identifies the client to the API.
	UserAgent string

	// Logger receives per-page debug output. The zero value discards
	// all output; callers normally pass a component logger.
	Logger zerolog.Logger
}

// RESTClient implements the Client interface against the openFDA REST API.
// It provides paged access to 510(k) clearance records with request pacing,
// error classification, and safety features like timeouts and response size
// limits.
type RESTClient struct {
	httpClient *http.Client
	endpoint   string
	inspector  fdaerror.Inspector
	limiter    *ratelimit.Limiter
	log        zerolog.Logger
}

// NewRESTClient creates a new openFDA client from the given configuration.
// The client is configured with:
//   - API key authentication via Basic auth when a key is provided
//   - Custom endpoint URL (e.g., for a caching proxy)
//   - Per-request timeout handling
//   - Response size limiting to prevent memory issues
//   - User-Agent header for API compliance
//   - Request pacing against the published openFDA quotas
func NewRESTClient(cfg ClientConfig) *RESTClient {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = ratelimit.DefaultRequestsPerMinute
		if cfg.APIKey != "" {
			rpm = ratelimit.KeyedRequestsPerMinute
		}
	}
	limiter := ratelimit.NewLimiter(rpm)

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "fda-relay/dev"
	}

	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: newRateLimitTransport(cfg.APIKey, userAgent, limiter),
	}

	return &RESTClient{
		httpClient: httpClient,
		endpoint:   endpoint,
		inspector:  fdaerror.NewInspector(),
		limiter:    limiter,
		log:        cfg.Logger,
	}
}

// FetchDevices fetches a page of 510(k) clearance records for the given
// product code. It supports offset pagination via opts.Skip and configurable
// page sizes through opts.PageSize. The method returns a DevicePage
// containing the records and the pagination information needed to fetch
// subsequent pages.
func (c *RESTClient) FetchDevices(ctx context.Context, productCode string, opts FetchOptions) (*DevicePage, error) {
	pageSize := normalizePageSize(opts.PageSize)
	requestURL := buildRequestURL(c.endpoint, productCode, FetchOptions{
		PageSize: pageSize,
		Skip:     opts.Skip,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.mapTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// openFDA reports a search with zero matches as a structured 404.
		// That is a successful query with an empty result, not a failure.
		if resp.StatusCode == http.StatusNotFound && isNoMatches(body) {
			c.log.Debug().
				Str("product_code", productCode).
				Int("skip", opts.Skip).
				Msg("no matching records")
			return &DevicePage{Records: []DeviceRecord{}}, nil
		}
		return nil, c.mapStatusError(resp.StatusCode, body)
	}

	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode openFDA response: %w", err)
	}

	page := &DevicePage{
		Records: make([]DeviceRecord, 0, len(decoded.Results)),
		Total:   decoded.Meta.Results.Total,
	}
	for _, result := range decoded.Results {
		page.Records = append(page.Records, result.toRecord())
	}

	// A short page always means the result set is exhausted. A full page
	// may still be the last one when the reported total says so.
	fullPage := len(page.Records) == pageSize
	exhausted := page.Total > 0 && opts.Skip+len(page.Records) >= page.Total
	page.HasMore = fullPage && !exhausted

	c.log.Debug().
		Str("product_code", productCode).
		Int("skip", opts.Skip).
		Int("count", len(page.Records)).
		Int("total", page.Total).
		Bool("has_more", page.HasMore).
		Msg("fetched page")

	return page, nil
}

// isNoMatches reports whether an error body is openFDA's structured
// zero-match response.
func isNoMatches(body []byte) bool {
	var decoded errorResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return false
	}
	return decoded.Error.Code == "NOT_FOUND"
}

// mapTransportError maps request execution failures to domain errors with
// actionable messages. Context cancellation passes through untouched so
// callers can distinguish an interrupt from a network fault.
func (c *RESTClient) mapTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request to openFDA API timed out. Consider raising --request-timeout: %w", relayerrors.ErrNetworkFailure)
	}
	if c.inspector.IsNetworkError(err) {
		return fmt.Errorf("network error connecting to openFDA API. Please check your internet connection and try again: %w", relayerrors.ErrNetworkFailure)
	}
	return fmt.Errorf("request to openFDA API failed: %w", err)
}

// mapStatusError maps non-success HTTP responses to domain errors with
// actionable messages.
func (c *RESTClient) mapStatusError(statusCode int, body []byte) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("openFDA API authentication failed (status %d). Please provide a valid key via --api-key flag or FDA_API_KEY environment variable: %w", statusCode, relayerrors.ErrInvalidAPIKey)
	case http.StatusNotFound:
		return fmt.Errorf("openFDA API endpoint not found. Please check the configured endpoint URL: %w", relayerrors.ErrEndpointNotFound)
	case http.StatusTooManyRequests:
		return fmt.Errorf("openFDA API rate limit exceeded. Please wait before retrying, or provide an API key for a higher quota: %w", relayerrors.ErrRateLimit)
	}

	msg := apiErrorMessage(body)
	if statusCode >= 500 {
		return fmt.Errorf("openFDA API returned server error (status %d): %s", statusCode, msg)
	}
	return fmt.Errorf("openFDA API returned status %d: %s", statusCode, msg)
}

// apiErrorMessage extracts the human-readable message from an openFDA error
// body, falling back to a trimmed snippet of the raw body.
func apiErrorMessage(body []byte) string {
	var decoded errorResponse
	if err := json.Unmarshal(body, &decoded); err == nil && decoded.Error.Message != "" {
		return decoded.Error.Message
	}

	snippet := strings.TrimSpace(string(body))
	if len(snippet) > 200 {
		snippet = snippet[:200] + "..."
	}
	if snippet == "" {
		snippet = "(empty body)"
	}
	return snippet
}
