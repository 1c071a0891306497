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

// Package ratelimit paces outbound requests against the openFDA per-minute
// quotas. It combines a proactive token bucket with reactive handling of the
// X-RateLimit-* response headers the service returns.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRequestsPerMinute is the openFDA quota without an API key.
	DefaultRequestsPerMinute = 40

	// KeyedRequestsPerMinute is the openFDA quota with an API key.
	KeyedRequestsPerMinute = 240

	// HeaderRateLimit is the per-window quota header.
	HeaderRateLimit = "X-RateLimit-Limit"

	// HeaderRateRemaining is the remaining requests header.
	HeaderRateRemaining = "X-RateLimit-Remaining"

	// minBuffer is the remaining-request floor below which the limiter
	// waits out the rest of the quota window instead of spending the
	// last requests and risking a 429.
	minBuffer = 2
)

// Limiter implements dual-strategy rate limiting for the openFDA API:
// a token bucket smooths request spacing below the quota, and response
// headers tighten the picture when the server reports its own counters.
// openFDA does not send a reset timestamp, so the reactive side treats
// each observation as the start of a worst-case one-minute window.
type Limiter struct {
	mu          sync.Mutex
	remaining   int
	limit       int
	lastUpdate  time.Time
	haveHeaders bool

	bucket *rate.Limiter
	window time.Duration
}

// NewLimiter creates a limiter pacing at the given requests-per-minute
// quota. Fetching is strictly sequential, so the bucket allows no burst
// beyond the first request.
func NewLimiter(requestsPerMinute int) *Limiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}
	return &Limiter{
		remaining: requestsPerMinute,
		limit:     requestsPerMinute,
		bucket:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
		window:    time.Minute,
	}
}

// Wait blocks until it is safe to make a request. It first waits on the
// proactive token bucket, then, if the server has reported the quota to
// be nearly exhausted, waits out the remainder of the current window.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.bucket.Wait(ctx); err != nil {
		return err
	}

	l.mu.Lock()
	exhausted := l.haveHeaders && l.remaining < minBuffer
	resumeAt := l.lastUpdate.Add(l.window)
	l.mu.Unlock()

	if exhausted && time.Now().Before(resumeAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(resumeAt)):
		}

		// The window has rolled over; assume a fresh quota until the
		// next response says otherwise.
		l.mu.Lock()
		l.remaining = l.limit
		l.mu.Unlock()
	}

	return nil
}

// UpdateFromResponse updates quota state from openFDA response headers.
// Responses without rate limit headers leave the state untouched.
func (l *Limiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if remaining := resp.Header.Get(HeaderRateRemaining); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			l.remaining = val
			l.lastUpdate = time.Now()
			l.haveHeaders = true
		}
	}

	if limit := resp.Header.Get(HeaderRateLimit); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			l.limit = val
		}
	}
}

// Remaining returns the last server-reported remaining request count.
func (l *Limiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remaining
}

// Limit returns the last server-reported per-window quota.
func (l *Limiter) Limit() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.limit
}
