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

// Package testutil provides common test helpers for fda-relay
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

// MockServer provides common mock server configurations for testing
type MockServer struct {
	*httptest.Server
	RequestCount int32
}

// Count returns the number of requests the server has received.
func (m *MockServer) Count() int {
	return int(atomic.LoadInt32(&m.RequestCount))
}

// NewMockServer creates a basic mock server with request counting around
// the given handler
func NewMockServer(t *testing.T, handler http.HandlerFunc) *MockServer {
	t.Helper()

	mock := &MockServer{}
	mock.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&mock.RequestCount, 1)
		handler(w, r)
	}))
	return mock
}

// NewDeviceServer creates a mock server backed by a fixed number of
// clearance records. It honors the limit and skip query parameters, so a
// paginating client sees contiguous slices of the same dataset. Requests
// past the end of the dataset get openFDA's structured no-match response.
func NewDeviceServer(t *testing.T, total int) *MockServer {
	t.Helper()

	mock := &MockServer{}
	mock.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&mock.RequestCount, 1)

		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil || limit <= 0 {
			limit = 100
		}

		if skip >= total {
			WriteNoMatches(w)
			return
		}

		end := skip + limit
		if end > total {
			end = total
		}

		response := GenerateDeviceResponse(skip+1, end, total)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}))

	return mock
}

// NewRateLimitServer creates a mock server that returns 429 for the first
// failCount requests and then serves a normal page. The 429 responses carry
// no X-RateLimit headers: a reported remaining count of zero would make the
// client sit out the rest of a one-minute quota window, which is far too
// slow for a test. Retry backoff alone paces the recovery.
func NewRateLimitServer(t *testing.T, failCount int) *MockServer {
	t.Helper()

	mock := &MockServer{}
	mock.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count := atomic.AddInt32(&mock.RequestCount, 1)

		if count <= int32(failCount) {
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(GenerateErrorResponse("OVER_RATE_LIMIT", "You have exceeded your rate limit. Try again later."))
			return
		}

		// Success response after rate limit
		response := GenerateDeviceResponse(1, 10, 10)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}))

	return mock
}

// NewFlakyDeviceServer creates a paginating device server that injects
// failures at fixed points in the request sequence. failOn maps a 1-based
// request ordinal to the HTTP status returned for it; every other request
// serves the dataset normally, so a retrying client recovers mid-fetch and
// still sees contiguous records.
func NewFlakyDeviceServer(t *testing.T, total int, failOn map[int]int) *MockServer {
	t.Helper()

	mock := &MockServer{}
	mock.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count := int(atomic.AddInt32(&mock.RequestCount, 1))

		if statusCode, ok := failOn[count]; ok {
			w.WriteHeader(statusCode)
			_, _ = w.Write([]byte(http.StatusText(statusCode)))
			return
		}

		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil || limit <= 0 {
			limit = 100
		}

		if skip >= total {
			WriteNoMatches(w)
			return
		}

		end := skip + limit
		if end > total {
			end = total
		}

		response := GenerateDeviceResponse(skip+1, end, total)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}))

	return mock
}

// NewErrorServer creates a mock server that always returns the specified error
func NewErrorServer(t *testing.T, statusCode int) *MockServer {
	t.Helper()

	mock := &MockServer{}
	mock.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&mock.RequestCount, 1)
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(http.StatusText(statusCode)))
	}))
	return mock
}

// NewTransientErrorServer creates a mock server that fails N times then succeeds
func NewTransientErrorServer(t *testing.T, failCount, errorCode int) *MockServer {
	t.Helper()

	mock := &MockServer{}
	mock.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count := atomic.AddInt32(&mock.RequestCount, 1)

		if count <= int32(failCount) {
			w.WriteHeader(errorCode)
			_, _ = w.Write([]byte(http.StatusText(errorCode)))
			return
		}

		// Success after failures
		response := GenerateDeviceResponse(1, 10, 10)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}))

	return mock
}

// NewTimeoutServer creates a mock server that times out N times then
// succeeds. A stalled handler returns as soon as the client hangs up, so
// closing the server at test cleanup does not wait out the full stall.
func NewTimeoutServer(t *testing.T, timeoutCount int) *MockServer {
	t.Helper()

	mock := &MockServer{}
	mock.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count := atomic.AddInt32(&mock.RequestCount, 1)

		if count <= int32(timeoutCount) {
			// Hold the request open past any sane client timeout
			select {
			case <-time.After(10 * time.Second):
			case <-r.Context().Done():
			}
			return
		}

		// Success after timeouts
		response := GenerateDeviceResponse(1, 10, 10)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}))

	return mock
}

// GenerateDeviceResponse generates a mock openFDA search response holding
// clearance records numbered startNum through endNum inclusive, with the
// given total reported in the result metadata
func GenerateDeviceResponse(startNum, endNum, total int) map[string]interface{} {
	devices := make([]map[string]interface{}, 0)

	for i := startNum; i <= endNum; i++ {
		devices = append(devices, map[string]interface{}{
			"k_number":              fmt.Sprintf("K%06d", i),
			"device_name":           fmt.Sprintf("Device %d", i),
			"applicant":             fmt.Sprintf("Manufacturer %d", i),
			"indications_for_use":   fmt.Sprintf("Indicated for condition %d", i),
			"summary_of_technology": fmt.Sprintf("Technology summary %d", i),
			"decision_date":         time.Now().AddDate(0, 0, -i).Format("2006-01-02"),
		})
	}

	return map[string]interface{}{
		"meta": map[string]interface{}{
			"results": map[string]interface{}{
				"skip":  startNum - 1,
				"limit": len(devices),
				"total": total,
			},
		},
		"results": devices,
	}
}

// GenerateErrorResponse generates an openFDA-style error body
func GenerateErrorResponse(code, message string) map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	}
}

// WriteNoMatches writes openFDA's structured response for a search that
// matches zero records: a 404 with a NOT_FOUND error body
func WriteNoMatches(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(GenerateErrorResponse("NOT_FOUND", "No matches found!"))
}

// AssertSearchRequest validates an openFDA search request structure
func AssertSearchRequest(t *testing.T, r *http.Request, productCode string) {
	t.Helper()
	if r.Method != "GET" {
		t.Errorf("Expected GET method, got: %s", r.Method)
	}

	query := r.URL.Query()
	wantSearch := "product_code:" + productCode
	if search := query.Get("search"); search != wantSearch {
		t.Errorf("Expected search=%q, got: %q", wantSearch, search)
	}
	if limit := query.Get("limit"); limit == "" {
		t.Error("Request missing limit parameter")
	} else if _, err := strconv.Atoi(limit); err != nil {
		t.Errorf("Invalid limit parameter: %q", limit)
	}
	if skip := query.Get("skip"); skip == "" {
		t.Error("Request missing skip parameter")
	} else if _, err := strconv.Atoi(skip); err != nil {
		t.Errorf("Invalid skip parameter: %q", skip)
	}
}
