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
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

// recordFields are the fields every emitted clearance record must carry,
// even when the source document had no value for them.
var recordFields = []string{
	"k_number", "device_name", "manufacturer",
	"indications_for_use", "summary_of_technology",
}

// AssertNDJSONOutput validates that a file contains valid NDJSON with the
// expected record count
func AssertNDJSONOutput(t *testing.T, filePath string, expectedCount int) {
	t.Helper()

	file, err := os.Open(filePath)
	if err != nil {
		t.Fatalf("Failed to open output file: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	count := 0

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		var record map[string]interface{}
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Errorf("Line %d: invalid JSON: %v", count+1, err)
			continue
		}

		assertRecordFields(t, record, count+1)
		count++
	}

	if err := scanner.Err(); err != nil {
		t.Fatalf("Error reading file: %v", err)
	}

	if count != expectedCount {
		t.Errorf("Expected %d records, got %d", expectedCount, count)
	}
}

// AssertJSONArrayOutput validates that a file contains a JSON array with the
// expected record count
func AssertJSONArrayOutput(t *testing.T, filePath string, expectedCount int) {
	t.Helper()

	data, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("Failed to read output file: %v", err)
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("Output is not a JSON array: %v", err)
	}

	for i, record := range records {
		assertRecordFields(t, record, i+1)
	}

	if len(records) != expectedCount {
		t.Errorf("Expected %d records, got %d", expectedCount, len(records))
	}
}

// assertRecordFields checks one emitted record for the full field set
func assertRecordFields(t *testing.T, record map[string]interface{}, position int) {
	t.Helper()

	for _, field := range recordFields {
		if _, ok := record[field]; !ok {
			t.Errorf("Record %d: missing required field '%s'", position, field)
		}
	}
}

// AssertStatsFile validates a fetch statistics document
func AssertStatsFile(t *testing.T, path string) {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read stats file: %v", err)
	}

	var stats map[string]interface{}
	if err := json.Unmarshal(data, &stats); err != nil {
		t.Fatalf("Invalid stats JSON: %v", err)
	}

	// Check required top-level fields
	requiredFields := []string{"relay_version", "method_version", "fetch_id", "parameters", "results"}
	for _, field := range requiredFields {
		if _, ok := stats[field]; !ok {
			t.Errorf("Missing required stats field: %s", field)
		}
	}

	results, ok := stats["results"].(map[string]interface{})
	if !ok {
		t.Fatal("Stats 'results' is not an object")
	}

	requiredResults := []string{"total_records", "api_calls_made", "fetch_duration", "started_at", "completed_at"}
	for _, field := range requiredResults {
		if _, ok := results[field]; !ok {
			t.Errorf("Missing required stats results field: %s", field)
		}
	}
}

// AssertContainsString checks if a string contains a substring
func AssertContainsString(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Errorf("Expected string to contain %q, got: %s", needle, haystack)
	}
}

// AssertNotContainsString checks if a string does not contain a substring
func AssertNotContainsString(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		t.Errorf("Expected string to NOT contain %q, got: %s", needle, haystack)
	}
}

// AssertErrorContains checks if an error contains expected text
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), expected) {
		t.Errorf("Expected error to contain %q, got: %v", expected, err)
	}
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertEqual compares two values and fails if they're not equal
func AssertEqual(t *testing.T, got, want interface{}) {
	t.Helper()
	if got != want {
		t.Errorf("Got %v, want %v", got, want)
	}
}

// AssertNotEqual compares two values and fails if they're equal
func AssertNotEqual(t *testing.T, got, notWant interface{}) {
	t.Helper()
	if got == notWant {
		t.Errorf("Got %v, but didn't want it", got)
	}
}

// AssertFilePermissions checks file has expected permissions
func AssertFilePermissions(t *testing.T, path string, expectedMode os.FileMode) {
	t.Helper()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Failed to stat file: %v", err)
	}

	mode := info.Mode()
	if mode != expectedMode {
		t.Errorf("Expected file mode %v, got %v", expectedMode, mode)
	}
}

// AssertDirExists checks that a directory exists
func AssertDirExists(t *testing.T, path string) {
	t.Helper()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("Expected directory to exist: %s", path)
		}
		t.Fatalf("Failed to stat directory: %v", err)
	}

	if !info.IsDir() {
		t.Fatalf("Expected %s to be a directory", path)
	}
}
