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

package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirseerhq/fda-relay/test/testutil"
)

// TestFlagCombinations runs the paging flags against a fixed 60-record
// dataset and checks both the request count and the records written.
func TestFlagCombinations(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}

	tests := []struct {
		name         string
		extraArgs    []string
		wantRequests int
		wantRecords  int
	}{
		{
			name:         "default page size",
			extraArgs:    nil,
			wantRequests: 1,
			wantRecords:  60,
		},
		{
			name:         "custom page size",
			extraArgs:    []string{"--page-size", "30"},
			wantRequests: 2,
			wantRecords:  60,
		},
		{
			name:         "limit inside first page",
			extraArgs:    []string{"--limit", "10"},
			wantRequests: 1,
			wantRecords:  10,
		},
		{
			name:         "page size with limit",
			extraArgs:    []string{"--page-size", "25", "--limit", "30"},
			wantRequests: 2,
			wantRecords:  30,
		},
		{
			name:         "limit above match count",
			extraArgs:    []string{"--limit", "200"},
			wantRequests: 1,
			wantRecords:  60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := testutil.NewDeviceServer(t, 60)
			defer server.Close()

			dir := testutil.CreateTempDir(t, "flag-matrix")
			outputFile := filepath.Join(dir, "output.ndjson")

			args := append([]string{"--format", "ndjson", "--output", outputFile}, tt.extraArgs...)
			result := testutil.RunWithMockServer(t, server, "LLZ", args...)

			testutil.AssertCLISuccess(t, result)

			if got := server.Count(); got != tt.wantRequests {
				t.Errorf("request count = %d, want %d", got, tt.wantRequests)
			}
			testutil.AssertNDJSONOutput(t, outputFile, tt.wantRecords)
		})
	}
}

// TestDefaultFormatIsJSONArray verifies a run without --format emits a
// single JSON array on stdout.
func TestDefaultFormatIsJSONArray(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}

	server := testutil.NewDeviceServer(t, 60)
	defer server.Close()

	result := testutil.RunWithMockServer(t, server, "LLZ")

	testutil.AssertCLISuccess(t, result)

	var records []map[string]interface{}
	if err := json.Unmarshal([]byte(result.Stdout), &records); err != nil {
		t.Fatalf("stdout is not a JSON array: %v", err)
	}
	if len(records) != 60 {
		t.Fatalf("stdout array has %d records, want 60", len(records))
	}
	if got := records[0]["k_number"]; got != "K000001" {
		t.Errorf("first record = %v, want K000001", got)
	}
	if got := records[59]["k_number"]; got != "K000060" {
		t.Errorf("last record = %v, want K000060", got)
	}
}

// TestStatsFlagWritesFile verifies --stats produces a well-formed fetch
// statistics document alongside the records.
func TestStatsFlagWritesFile(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}

	server := testutil.NewDeviceServer(t, 15)
	defer server.Close()

	dir := testutil.CreateTempDir(t, "stats-flag")
	outputFile := filepath.Join(dir, "output.ndjson")
	statsFile := filepath.Join(dir, "stats.json")

	result := testutil.RunWithMockServer(t, server, "LLZ",
		"--format", "ndjson",
		"--output", outputFile,
		"--stats", statsFile,
	)

	testutil.AssertCLISuccess(t, result)
	testutil.AssertNDJSONOutput(t, outputFile, 15)
	testutil.AssertStatsFile(t, statsFile)
}

// TestConfigFlagPageSize verifies an explicit --config file drives the
// page size used on the wire.
func TestConfigFlagPageSize(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}

	server := testutil.NewDeviceServer(t, 60)
	defer server.Close()

	dir := testutil.CreateTempDir(t, "config-flag")
	configPath := testutil.CreateTempFile(t, dir, "config-*.yaml", "defaults:\n  page_size: 12\n")

	outputFile := filepath.Join(dir, "output.ndjson")
	result := testutil.RunWithMockServer(t, server, "LLZ",
		"--config", configPath,
		"--format", "ndjson",
		"--output", outputFile,
	)

	testutil.AssertCLISuccess(t, result)

	// 60 records at 12 per page
	if got := server.Count(); got != 5 {
		t.Errorf("request count = %d, want 5", got)
	}
	testutil.AssertNDJSONOutput(t, outputFile, 60)

	if !strings.Contains(result.Stderr, "Fetched 60 of 60 records") {
		t.Errorf("summary missing counts: %s", result.Stderr)
	}
}
