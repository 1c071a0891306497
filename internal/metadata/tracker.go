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

// Package metadata provides functionality for tracking and persisting
// statistics about fetch operations. It records the number of device
// records processed, API calls made, the range of clearance identifiers
// covered, and whether the run was cut short by a record limit.
//
// The statistics system serves several purposes:
//   - Provides audit trails for regulatory-affairs compliance
//   - Enables troubleshooting by recording fetch parameters
//   - Records performance metrics for quota planning
//
// Statistics are written as a JSON document when the user requests them,
// allowing external tools to analyze fetch history and performance.
package metadata

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	// MethodVersion identifies the fetch strategy used against openFDA
	MethodVersion = "rest-skip-limit-v1"
)

// Tracker collects statistics during a fetch operation and generates the
// final record. It tracks API calls, device record counts, and the
// identifier range throughout the fetch process. Create a new tracker at
// the start of each fetch operation and call its methods to record activity.
type Tracker struct {
	startTime    time.Time
	apiCallCount int
	truncated    bool
	recordStats  RecordStats
}

// RecordStats holds statistical information about device records processed
// during a fetch operation. It tracks the record counts and the clearance
// identifiers at the boundaries of the stream, in the order openFDA
// returned them.
type RecordStats struct {
	TotalRecords   int    // Number of records streamed to the writer
	TotalAvailable int    // Match count reported by the API, 0 if never reported
	FirstKNumber   string // Identifier of the first record in stream order
	LastKNumber    string // Identifier of the last record in stream order
}

// New creates a new statistics tracker and initializes it with the current
// time. Call this at the beginning of a fetch operation to start tracking.
func New() *Tracker {
	return &Tracker{
		startTime: time.Now(),
	}
}

// IncrementAPICall records that an API call was made. Call this after each
// successful openFDA request to maintain accurate API usage statistics.
func (t *Tracker) IncrementAPICall() {
	t.apiCallCount++
}

// RecordDevice updates the running statistics with a single device record.
// It advances the record count and maintains the first and last clearance
// identifiers seen in stream order.
func (t *Tracker) RecordDevice(kNumber string) {
	t.recordStats.TotalRecords++

	if t.recordStats.TotalRecords == 1 {
		t.recordStats.FirstKNumber = kNumber
	}
	t.recordStats.LastKNumber = kNumber
}

// SetTotalAvailable records the total match count the API reported for the
// query. Pages repeat the count, so later calls simply overwrite it.
func (t *Tracker) SetTotalAvailable(total int) {
	t.recordStats.TotalAvailable = total
}

// MarkTruncated records that the fetch stopped early because a record limit
// was reached before the result set was exhausted.
func (t *Tracker) MarkTruncated() {
	t.truncated = true
}

// GenerateMetadata creates a FetchMetadata instance capturing the complete
// fetch operation statistics. Call this at the end of a successful fetch
// to create the record.
//
// Parameters:
//   - relayVersion: The version of fda-relay (from version.Version)
//   - params: The fetch parameters used for this operation
//
// Returns a complete statistics record ready for persistence.
func (t *Tracker) GenerateMetadata(relayVersion string, params FetchParams) *FetchMetadata {
	completedAt := time.Now()
	duration := completedAt.Sub(t.startTime)

	return &FetchMetadata{
		RelayVersion:  relayVersion,
		MethodVersion: MethodVersion,
		FetchID:       uuid.NewString(),
		Parameters:    params,
		Results: FetchResults{
			TotalRecords:   t.recordStats.TotalRecords,
			TotalAvailable: t.recordStats.TotalAvailable,
			Truncated:      t.truncated,
			FirstKNumber:   t.recordStats.FirstKNumber,
			LastKNumber:    t.recordStats.LastKNumber,
			Duration:       duration.Round(time.Millisecond).String(),
			APICallCount:   t.apiCallCount,
			StartedAt:      t.startTime,
			CompletedAt:    completedAt,
		},
	}
}

// SaveMetadata persists a FetchMetadata record as a JSON file at the given
// path. The file is written atomically using a temporary file and rename
// to prevent partial documents. Parent directories are created as needed.
//
// Returns an error if the save operation fails.
func SaveMetadata(metadata *FetchMetadata, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create statistics directory: %w", err)
	}

	// Write to temporary file first for atomicity
	tmpFile := path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return fmt.Errorf("failed to create statistics file: %w", err)
	}

	if err := WriteMetadataToWriter(metadata, file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to write statistics: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to close statistics file: %w", err)
	}

	// Atomically rename to final location
	if err := os.Rename(tmpFile, path); err != nil {
		return fmt.Errorf("failed to save statistics file: %w", err)
	}

	return nil
}

// LoadMetadata reads and parses a previously saved statistics document.
// It is used by tooling that inspects the output of earlier runs.
func LoadMetadata(path string) (*FetchMetadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open statistics file: %w", err)
	}
	defer file.Close()

	var metadata FetchMetadata
	if err := json.NewDecoder(file).Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to parse statistics: %w", err)
	}

	return &metadata, nil
}

// WriteMetadataToWriter serializes metadata to JSON and writes it to the
// provided io.Writer. The output is formatted with indentation for
// readability. This function is useful for outputting statistics to stdout
// or network streams.
func WriteMetadataToWriter(metadata *FetchMetadata, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}
