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

// Package output provides utilities for writing device records as a JSON
// array or as NDJSON (Newline Delimited JSON). NDJSON keeps each record on
// its own line, which makes it convenient for streaming large result sets
// into log pipelines and line-oriented tools. The JSON array format matches
// what ad-hoc consumers and jq-style tooling expect from a single document.
//
// Both writers stream: records go to the underlying io.Writer as they are
// written, and nothing accumulates in memory. The array writer defers only
// its closing bracket, so Close must be called to produce a valid document.
//
// Example usage:
//
//	// Write NDJSON to a file
//	w, err := output.NewFileWriter(output.FormatNDJSON, "devices.ndjson")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	// Write records
//	for _, record := range records {
//	    if err := w.Write(record); err != nil {
//	        log.Printf("Failed to write record: %v", err)
//	    }
//	}
//
//	fmt.Printf("Wrote %d records\n", w.Count())
package output
