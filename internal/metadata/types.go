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

// Package metadata types define the structures used for tracking and
// persisting information about fetch operations. These types capture
// comprehensive statistics and audit information for regulatory-affairs
// workflows.
package metadata

import (
	"fmt"
	"strings"
	"time"
)

// FetchMetadata represents the complete statistics record for a single fetch
// operation. It captures all relevant information about what was fetched,
// how it was fetched, and the results. This structure is designed to provide
// a complete audit trail for compliance reviews and troubleshooting.
type FetchMetadata struct {
	RelayVersion  string       `json:"relay_version"`
	MethodVersion string       `json:"method_version"`
	FetchID       string       `json:"fetch_id"`
	Parameters    FetchParams  `json:"parameters"`
	Results       FetchResults `json:"results"`
}

// FetchParams captures the input parameters used for a fetch operation.
// This includes the target product code, the endpoint queried, and
// operational settings like page size and record limit. These parameters
// are preserved to enable reproducible fetches and debugging.
type FetchParams struct {
	ProductCode string `json:"product_code"`
	Endpoint    string `json:"endpoint"`
	PageSize    int    `json:"page_size"`
	Limit       int    `json:"limit,omitempty"`
	Format      string `json:"output_format"`
}

// FetchResults contains comprehensive statistics about a completed fetch
// operation. It tracks both quantitative metrics (record counts, API calls)
// and temporal information (duration, timestamps). This data is essential
// for quota planning and troubleshooting.
type FetchResults struct {
	TotalRecords   int       `json:"total_records"`
	TotalAvailable int       `json:"total_available"`
	Truncated      bool      `json:"truncated"`
	FirstKNumber   string    `json:"first_k_number"`
	LastKNumber    string    `json:"last_k_number"`
	Duration       string    `json:"fetch_duration"`
	APICallCount   int       `json:"api_calls_made"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
}

// Summary returns a one-line human-readable description of the fetch,
// suitable for writing to stderr at the end of a successful run.
func (m *FetchMetadata) Summary() string {
	var b strings.Builder
	if m.Results.TotalAvailable > 0 {
		fmt.Fprintf(&b, "Fetched %d of %d records for product code %s",
			m.Results.TotalRecords, m.Results.TotalAvailable, m.Parameters.ProductCode)
	} else {
		fmt.Fprintf(&b, "Fetched %d records for product code %s",
			m.Results.TotalRecords, m.Parameters.ProductCode)
	}
	fmt.Fprintf(&b, " in %s (%d API calls)", m.Results.Duration, m.Results.APICallCount)
	if m.Results.Truncated {
		b.WriteString(" [truncated by --limit]")
	}
	return b.String()
}
