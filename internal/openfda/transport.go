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
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirseerhq/fda-relay/internal/ratelimit"
)

// maxResponseBytes caps how much of a response body the client will read.
// A single openFDA page tops out well under this even at the maximum page
// size, so anything larger indicates a misbehaving endpoint.
const maxResponseBytes = 10 * 1024 * 1024 // 10MB

// newBaseTransport returns an HTTP transport tuned for repeated calls to a
// single API host.
func newBaseTransport() *http.Transport {
	return &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10, // Increased from default 2
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		DisableCompression:  false,
		ForceAttemptHTTP2:   true, // Ensure HTTP/2 is used
	}
}

// authTransport adds authentication and safety limits to HTTP requests.
// openFDA accepts the API key as the username of a Basic auth header;
// requests without a key are sent anonymously and draw from the shared
// per-IP quota.
type authTransport struct {
	apiKey    string
	userAgent string
	base      http.RoundTripper
}

// RoundTrip implements http.RoundTripper
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	req = req.Clone(req.Context())

	// Add auth header when a key is configured
	if t.apiKey != "" {
		req.SetBasicAuth(t.apiKey, "")
	}

	// Add user agent for identification
	req.Header.Set("User-Agent", t.userAgent)

	// Execute the request
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	// Apply response size limit
	if resp.Body != nil {
		resp.Body = &limitedReader{
			ReadCloser: resp.Body,
			limit:      maxResponseBytes,
		}
	}

	return resp, nil
}

// rateLimitTransport paces outgoing requests against the openFDA quota.
// It wraps the auth transport, blocking before each request until the
// limiter permits it, and feeds quota headers from each response back
// into the limiter.
type rateLimitTransport struct {
	base    http.RoundTripper
	limiter *ratelimit.Limiter
}

// newRateLimitTransport creates the full transport chain for the REST
// client: pooled base transport, then authentication, then rate pacing.
func newRateLimitTransport(apiKey, userAgent string, limiter *ratelimit.Limiter) http.RoundTripper {
	return &rateLimitTransport{
		base: &authTransport{
			apiKey:    apiKey,
			userAgent: userAgent,
			base:      newBaseTransport(),
		},
		limiter: limiter,
	}
}

// RoundTrip implements http.RoundTripper with rate limit pacing.
func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	t.limiter.UpdateFromResponse(resp)
	return resp, nil
}

// limitedReader wraps a ReadCloser with a size limit to prevent excessive memory usage.
type limitedReader struct {
	io.ReadCloser
	limit int64
	read  int64
}

// Read implements io.Reader with size limit enforcement.
func (lr *limitedReader) Read(p []byte) (n int, err error) {
	if lr.read >= lr.limit {
		return 0, fmt.Errorf("response size exceeded limit of %d bytes", lr.limit)
	}

	// Calculate how much we can read
	remaining := lr.limit - lr.read
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err = lr.ReadCloser.Read(p)
	lr.read += int64(n)

	return n, err
}
