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
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirseerhq/fda-relay/test/testutil"
)

// TestFullFetch drives the binary through complete paginated fetches of
// varying shapes and verifies the request count, the record count, and that
// the concatenated pages form the full dataset with no gaps or duplicates.
func TestFullFetch(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}

	tests := []struct {
		name         string
		totalRecords int
		pageSize     int
		wantRequests int
	}{
		{
			name:         "single short page",
			totalRecords: 5,
			pageSize:     10,
			wantRequests: 1,
		},
		{
			name:         "exact page boundary",
			totalRecords: 20,
			pageSize:     10,
			// The reported total lets the client stop without probing
			// past the end
			wantRequests: 2,
		},
		{
			name:         "many pages with short last page",
			totalRecords: 157,
			pageSize:     25,
			wantRequests: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := testutil.NewDeviceServer(t, tt.totalRecords)
			defer server.Close()

			dir := testutil.CreateTempDir(t, "full-fetch")
			outputFile := filepath.Join(dir, "output.ndjson")

			result := testutil.RunWithMockServer(t, server, "LLZ",
				"--page-size", fmt.Sprintf("%d", tt.pageSize),
				"--format", "ndjson",
				"--output", outputFile,
			)

			testutil.AssertCLISuccess(t, result)

			if got := server.Count(); got != tt.wantRequests {
				t.Errorf("request count = %d, want %d", got, tt.wantRequests)
			}

			testutil.AssertNDJSONOutput(t, outputFile, tt.totalRecords)
			assertContiguousKNumbers(t, outputFile, tt.totalRecords)

			if !strings.Contains(result.Stderr, fmt.Sprintf("Fetched %d of %d records for product code LLZ", tt.totalRecords, tt.totalRecords)) {
				t.Errorf("summary missing from stderr: %s", result.Stderr)
			}
		})
	}
}

// TestFullFetch_ManyPages pages a larger dataset through a small page size.
// The record stream must stay complete and ordered across 20 requests.
func TestFullFetch_ManyPages(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}

	server := testutil.NewDeviceServer(t, 1000)
	defer server.Close()

	dir := testutil.CreateTempDir(t, "many-pages")
	outputFile := filepath.Join(dir, "output.ndjson")

	result := testutil.RunWithMockServer(t, server, "LLZ",
		"--page-size", "50",
		"--format", "ndjson",
		"--output", outputFile,
	)

	testutil.AssertCLISuccess(t, result)

	if got := server.Count(); got != 20 {
		t.Errorf("request count = %d, want 20", got)
	}
	testutil.AssertNDJSONOutput(t, outputFile, 1000)
	assertContiguousKNumbers(t, outputFile, 1000)
}

// TestFullFetch_StdoutDefault checks that records go to stdout when no
// output file is given, with the summary kept on stderr so piped output
// stays parseable.
func TestFullFetch_StdoutDefault(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}

	server := testutil.NewDeviceServer(t, 8)
	defer server.Close()

	result := testutil.RunWithMockServer(t, server, "LLZ", "--format", "ndjson")
	testutil.AssertCLISuccess(t, result)

	lines := strings.Split(strings.TrimSpace(result.Stdout), "\n")
	if len(lines) != 8 {
		t.Fatalf("stdout lines = %d, want 8", len(lines))
	}
	for i, line := range lines {
		var record map[string]interface{}
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("stdout line %d is not valid JSON: %v", i, err)
		}
	}

	if !strings.Contains(result.Stderr, "Fetched 8 of 8 records") {
		t.Errorf("summary missing from stderr: %s", result.Stderr)
	}
	if strings.Contains(result.Stdout, "Fetched") {
		t.Error("summary leaked into stdout")
	}
}

// TestFullFetch_JSONArrayFormat verifies the default array format produces
// one well-formed JSON document spanning all pages.
func TestFullFetch_JSONArrayFormat(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}

	server := testutil.NewDeviceServer(t, 30)
	defer server.Close()

	dir := testutil.CreateTempDir(t, "json-array")
	outputFile := filepath.Join(dir, "output.json")

	result := testutil.RunWithMockServer(t, server, "LLZ",
		"--page-size", "10",
		"--format", "json",
		"--output", outputFile,
	)

	testutil.AssertCLISuccess(t, result)
	testutil.AssertJSONArrayOutput(t, outputFile, 30)

	// Records must keep the service order across page boundaries
	data, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	var records []map[string]interface{}
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if records[0]["k_number"] != "K000001" || records[29]["k_number"] != "K000030" {
		t.Errorf("record range = %v..%v, want K000001..K000030",
			records[0]["k_number"], records[29]["k_number"])
	}
}

// assertContiguousKNumbers reads an NDJSON file of generated records and
// fails if any clearance number is missing, duplicated, or out of order.
func assertContiguousKNumbers(t *testing.T, path string, total int) {
	t.Helper()

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open output file: %v", err)
	}
	defer file.Close()

	seen := make(map[string]bool, total)
	line := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		line++

		var record struct {
			KNumber string `json:"k_number"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", line, err)
		}

		want := fmt.Sprintf("K%06d", line)
		if record.KNumber != want {
			t.Fatalf("line %d k_number = %s, want %s", line, record.KNumber, want)
		}
		if seen[record.KNumber] {
			t.Fatalf("duplicate record %s", record.KNumber)
		}
		seen[record.KNumber] = true
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	if line != total {
		t.Errorf("record count = %d, want %d", line, total)
	}
}
