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
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	relayerrors "github.com/sirseerhq/fda-relay/internal/errors"
	"github.com/sirseerhq/fda-relay/internal/fdaerror"
)

// RetryConfig configures the retry behavior for API calls
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts
	MaxRetries int
	// InitialBackoff is the initial backoff duration
	InitialBackoff time.Duration
	// MaxBackoff is the maximum backoff duration
	MaxBackoff time.Duration
	// BackoffMultiplier is the multiplier for exponential backoff
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// RetryClient wraps an openFDA client with automatic retry logic for
// rate limits and transient failures using exponential backoff.
type RetryClient struct {
	client    Client
	config    *RetryConfig
	inspector fdaerror.Inspector
	log       zerolog.Logger
}

// NewRetryClient creates a new RetryClient with the given configuration
func NewRetryClient(client Client, config *RetryConfig, log zerolog.Logger) Client {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &RetryClient{
		client:    client,
		config:    config,
		inspector: fdaerror.NewInspector(),
		log:       log,
	}
}

// FetchDevices implements the Client interface with retry logic
func (r *RetryClient) FetchDevices(ctx context.Context, productCode string, opts FetchOptions) (*DevicePage, error) {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		page, err := r.client.FetchDevices(ctx, productCode, opts)
		if err == nil {
			return page, nil
		}

		lastErr = err

		// Don't retry on non-retryable errors
		if !r.shouldRetry(err) {
			return nil, err
		}

		// Don't retry if context is cancelled
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// Calculate backoff duration
		backoff := r.calculateBackoff(attempt)

		if r.inspector.IsRateLimitError(err) {
			r.log.Warn().
				Str("product_code", productCode).
				Int("skip", opts.Skip).
				Dur("backoff", backoff).
				Int("attempt", attempt+1).
				Int("max_retries", r.config.MaxRetries).
				Msg("rate limit hit, backing off")
		} else {
			r.log.Warn().
				Str("product_code", productCode).
				Int("skip", opts.Skip).
				Dur("backoff", backoff).
				Int("attempt", attempt+1).
				Int("max_retries", r.config.MaxRetries).
				Err(err).
				Msg("transient failure, retrying")
		}

		// Wait with context cancellation support
		select {
		case <-time.After(backoff):
			// Continue to next retry
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", r.config.MaxRetries, lastErr)
}

// shouldRetry determines if an error is retryable
func (r *RetryClient) shouldRetry(err error) bool {
	// Errors already classified by the REST client carry a sentinel.
	// Check those before falling back to string inspection, since the
	// mapped message may not preserve the transport's original text.
	if errors.Is(err, relayerrors.ErrRateLimit) || errors.Is(err, relayerrors.ErrNetworkFailure) {
		return true
	}

	// Retry on rate limit errors
	if r.inspector.IsRateLimitError(err) {
		return true
	}

	// Retry on transient server errors
	if r.inspector.IsServerError(err) {
		return true
	}

	// Retry on network errors
	if r.inspector.IsNetworkError(err) {
		return true
	}

	// Don't retry on other errors (auth, not found, etc.)
	return false
}

// calculateBackoff calculates the backoff duration for the given attempt
func (r *RetryClient) calculateBackoff(attempt int) time.Duration {
	// Calculate exponential backoff
	backoff := float64(r.config.InitialBackoff) * math.Pow(r.config.BackoffMultiplier, float64(attempt))

	// Apply max backoff limit
	if backoff > float64(r.config.MaxBackoff) {
		backoff = float64(r.config.MaxBackoff)
	}

	// Add jitter (±10%) to prevent thundering herd
	jitter := backoff * 0.1 * (2*float64(time.Now().UnixNano()%100)/100 - 1)
	backoff += jitter

	return time.Duration(backoff)
}
