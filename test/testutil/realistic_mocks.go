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

package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// searchPath is where the real service serves 510(k) queries.
const searchPath = "/device/510k.json"

// OpenFDALikeMockServer creates a mock server that behaves like the real
// openFDA API: GET with search/limit/skip query parameters, the API key as
// the Basic auth username, quota headers on every response, and structured
// error bodies.
type OpenFDALikeMockServer struct {
	*httptest.Server
	mu                 sync.RWMutex
	total              int
	requiredKey        string
	rateLimitRemaining int32
	rateLimitQuota     int32
	requestHistory     []SearchRequest
}

// SearchRequest represents a parsed 510(k) search request
type SearchRequest struct {
	ProductCode string
	Skip        int
	Limit       int
	Timestamp   time.Time
}

// NewOpenFDALikeMockServer creates a realistic openFDA mock holding the
// given number of clearance records
func NewOpenFDALikeMockServer(t *testing.T, total int) *OpenFDALikeMockServer {
	t.Helper()

	mock := &OpenFDALikeMockServer{
		total:              total,
		rateLimitRemaining: 240,
		rateLimitQuota:     240,
		requestHistory:     []SearchRequest{},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Validate request method and path
		if r.Method != "GET" || r.URL.Path != searchPath {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		// Check rate limit
		remaining := atomic.AddInt32(&mock.rateLimitRemaining, -1)
		headerRemaining := remaining
		if headerRemaining < 0 {
			headerRemaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(int(atomic.LoadInt32(&mock.rateLimitQuota))))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(headerRemaining)))
		if remaining < 0 {
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(GenerateErrorResponse("OVER_RATE_LIMIT",
				"You have exceeded your rate limit. Try again later."))
			return
		}

		// Check API key. The service accepts it as the Basic auth username.
		mock.mu.RLock()
		requiredKey := mock.requiredKey
		mock.mu.RUnlock()
		if requiredKey != "" {
			key, _, ok := r.BasicAuth()
			if !ok || key != requiredKey {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(GenerateErrorResponse("API_KEY_INVALID",
					"An invalid api_key was supplied."))
				return
			}
		}

		// Parse the search expression
		query := r.URL.Query()
		search := query.Get("search")
		if !strings.HasPrefix(search, "product_code:") {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(GenerateErrorResponse("BAD_REQUEST",
				"Search syntax error: unsupported search expression."))
			return
		}
		productCode := strings.TrimPrefix(search, "product_code:")

		// Parse pagination parameters. The real service defaults limit to 1
		// and rejects values outside its documented bounds.
		limit := 1
		if raw := query.Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > 100 {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(GenerateErrorResponse("BAD_REQUEST",
					"Invalid limit parameter: must be between 1 and 100."))
				return
			}
			limit = parsed
		}

		skip := 0
		if raw := query.Get("skip"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 || parsed > 25000 {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(GenerateErrorResponse("BAD_REQUEST",
					"Invalid skip parameter: must be between 0 and 25000."))
				return
			}
			skip = parsed
		}

		// Store request history
		mock.mu.Lock()
		mock.requestHistory = append(mock.requestHistory, SearchRequest{
			ProductCode: productCode,
			Skip:        skip,
			Limit:       limit,
			Timestamp:   time.Now(),
		})
		total := mock.total
		mock.mu.Unlock()

		if skip >= total {
			WriteNoMatches(w)
			return
		}

		end := skip + limit
		if end > total {
			end = total
		}

		devices := make([]map[string]interface{}, 0, end-skip)
		for i := skip + 1; i <= end; i++ {
			devices = append(devices, NewDeviceBuilder(i).WithProductCode(productCode).Build())
		}

		response := NewSearchResponseBuilder().
			WithDevices(devices...).
			WithMeta(skip, limit, total).
			Build()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}))

	mock.Server = server
	return mock
}

// Endpoint returns the full search URL for pointing a client at this mock
func (m *OpenFDALikeMockServer) Endpoint() string {
	return m.URL + searchPath
}

// RequireAPIKey makes the server reject requests whose Basic auth username
// is not the given key. An empty key disables the check.
func (m *OpenFDALikeMockServer) RequireAPIKey(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requiredKey = key
}

// GetRequestHistory returns the history of parsed search requests
func (m *OpenFDALikeMockServer) GetRequestHistory() []SearchRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := make([]SearchRequest, len(m.requestHistory))
	copy(history, m.requestHistory)
	return history
}

// ResetRateLimit resets the rate limit counter
func (m *OpenFDALikeMockServer) ResetRateLimit() {
	atomic.StoreInt32(&m.rateLimitRemaining, atomic.LoadInt32(&m.rateLimitQuota))
}

// SetRateLimit sets a specific remaining request count
func (m *OpenFDALikeMockServer) SetRateLimit(remaining int32) {
	atomic.StoreInt32(&m.rateLimitRemaining, remaining)
}
