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
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirseerhq/fda-relay/test/testutil"
)

// TestLimitStopsMidPage verifies a --limit that lands inside a page stops
// the fetch immediately: no further requests, only limit records written,
// and the run reported as truncated.
func TestLimitStopsMidPage(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}

	server := testutil.NewDeviceServer(t, 100)
	defer server.Close()

	dir := testutil.CreateTempDir(t, "limit-mid-page")
	outputFile := filepath.Join(dir, "output.ndjson")

	result := testutil.RunWithMockServer(t, server, "LLZ",
		"--page-size", "20",
		"--limit", "30",
		"--format", "ndjson",
		"--output", outputFile,
	)

	testutil.AssertCLISuccess(t, result)

	// The limit is reached 10 records into the second page
	if got := server.Count(); got != 2 {
		t.Errorf("request count = %d, want 2", got)
	}
	testutil.AssertNDJSONOutput(t, outputFile, 30)

	if !strings.Contains(result.Stderr, "[truncated by --limit]") {
		t.Errorf("summary does not report truncation: %s", result.Stderr)
	}
	if !strings.Contains(result.Stderr, "Fetched 30 of 100 records") {
		t.Errorf("summary missing counts: %s", result.Stderr)
	}
}

// TestLimitOnPageBoundary verifies a --limit equal to a page boundary does
// not fetch the next page just to learn there was more.
func TestLimitOnPageBoundary(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}

	server := testutil.NewDeviceServer(t, 100)
	defer server.Close()

	dir := testutil.CreateTempDir(t, "limit-boundary")
	outputFile := filepath.Join(dir, "output.ndjson")

	result := testutil.RunWithMockServer(t, server, "LLZ",
		"--page-size", "20",
		"--limit", "20",
		"--format", "ndjson",
		"--output", outputFile,
	)

	testutil.AssertCLISuccess(t, result)

	if got := server.Count(); got != 1 {
		t.Errorf("request count = %d, want 1", got)
	}
	testutil.AssertNDJSONOutput(t, outputFile, 20)

	// 80 matching records were never fetched, so this is still a
	// truncated run
	if !strings.Contains(result.Stderr, "[truncated by --limit]") {
		t.Errorf("summary does not report truncation: %s", result.Stderr)
	}
}

// TestLimitAboveMatchCount verifies a generous --limit changes nothing:
// the full result set is fetched and the run is not marked truncated.
func TestLimitAboveMatchCount(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}

	server := testutil.NewDeviceServer(t, 12)
	defer server.Close()

	dir := testutil.CreateTempDir(t, "limit-above")
	outputFile := filepath.Join(dir, "output.ndjson")

	result := testutil.RunWithMockServer(t, server, "LLZ",
		"--limit", "500",
		"--format", "ndjson",
		"--output", outputFile,
	)

	testutil.AssertCLISuccess(t, result)
	testutil.AssertNDJSONOutput(t, outputFile, 12)

	if strings.Contains(result.Stderr, "truncated") {
		t.Errorf("run wrongly reported as truncated: %s", result.Stderr)
	}
}

// TestQuietSuppressesSummary verifies --quiet leaves stderr empty on a
// clean run so the binary composes quietly in pipelines.
func TestQuietSuppressesSummary(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}

	server := testutil.NewDeviceServer(t, 10)
	defer server.Close()

	dir := testutil.CreateTempDir(t, "quiet")
	outputFile := filepath.Join(dir, "output.ndjson")

	result := testutil.RunWithMockServer(t, server, "LLZ",
		"--quiet",
		"--format", "ndjson",
		"--output", outputFile,
	)

	testutil.AssertCLISuccess(t, result)
	testutil.AssertNDJSONOutput(t, outputFile, 10)

	if strings.Contains(result.Stderr, "Fetched") {
		t.Errorf("summary printed despite --quiet: %s", result.Stderr)
	}
}

// TestVerboseLogsPageProgress verifies --verbose surfaces the per-page
// debug log on stderr.
func TestVerboseLogsPageProgress(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}

	server := testutil.NewDeviceServer(t, 30)
	defer server.Close()

	dir := testutil.CreateTempDir(t, "verbose")
	outputFile := filepath.Join(dir, "output.ndjson")

	result := testutil.RunWithMockServer(t, server, "LLZ",
		"--verbose",
		"--page-size", "10",
		"--format", "ndjson",
		"--output", outputFile,
	)

	testutil.AssertCLISuccess(t, result)

	if !strings.Contains(result.Stderr, "advancing to next page") {
		t.Errorf("verbose run missing page debug log: %s", result.Stderr)
	}
}

// TestDefaultRunIsNotVerbose verifies debug logs stay hidden without
// --verbose.
func TestDefaultRunIsNotVerbose(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}

	server := testutil.NewDeviceServer(t, 30)
	defer server.Close()

	dir := testutil.CreateTempDir(t, "not-verbose")
	outputFile := filepath.Join(dir, "output.ndjson")

	result := testutil.RunWithMockServer(t, server, "LLZ",
		"--page-size", "10",
		"--format", "ndjson",
		"--output", outputFile,
	)

	testutil.AssertCLISuccess(t, result)

	if strings.Contains(result.Stderr, "advancing to next page") {
		t.Errorf("debug log leaked without --verbose: %s", result.Stderr)
	}
}

// TestProductCodeIsCaseInsensitive verifies a lowercase code reaches the
// service uppercased, matching how openFDA stores product codes.
func TestProductCodeIsCaseInsensitive(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}

	var gotSearch string
	server := testutil.NewMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotSearch = r.URL.Query().Get("search")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(testutil.GenerateDeviceResponse(1, 3, 3))
	})
	defer server.Close()

	dir := testutil.CreateTempDir(t, "case")
	result := testutil.RunWithMockServer(t, server, "llz",
		"--format", "ndjson",
		"--output", filepath.Join(dir, "out.ndjson"),
	)

	testutil.AssertCLISuccess(t, result)
	if gotSearch != "product_code:LLZ" {
		t.Errorf("search parameter = %q, want %q", gotSearch, "product_code:LLZ")
	}
}
