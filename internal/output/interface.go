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

package output

import (
	"fmt"
	"io"
	"os"
)

// Supported output formats.
const (
	FormatJSON   = "json"
	FormatNDJSON = "ndjson"
)

// ValidFormat reports whether format names a supported output format.
func ValidFormat(format string) bool {
	switch format {
	case FormatJSON, FormatNDJSON:
		return true
	}
	return false
}

// OutputWriter defines the interface for writing device record data.
// This abstraction allows different output formats (JSON array, NDJSON)
// to share the fetch loop without its involvement in formatting.
type OutputWriter interface {
	// Write writes a single record to the output.
	// The record should be immediately flushed to avoid memory accumulation.
	Write(record interface{}) error

	// Close finalizes the output and releases any resources.
	// This must be called when all writing is complete; the JSON array
	// format is not valid until Close has run.
	Close() error

	// Count returns the number of records written so far.
	Count() int
}

// NewWriter creates a writer for the given format targeting w.
func NewWriter(format string, w io.Writer) (OutputWriter, error) {
	switch format {
	case FormatJSON:
		return NewArrayWriter(w), nil
	case FormatNDJSON:
		return NewNDJSONWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (supported: %s, %s)", format, FormatJSON, FormatNDJSON)
	}
}

// NewFileWriter creates a writer for the given format that writes to a file.
// The caller must call Close() when done to ensure the file is properly closed.
func NewFileWriter(format, filename string) (OutputWriter, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	writer, err := NewWriter(format, file)
	if err != nil {
		file.Close()
		return nil, err
	}

	switch w := writer.(type) {
	case *ArrayWriter:
		w.closeFunc = file.Close
	case *NDJSONWriter:
		w.closeFunc = file.Close
	}
	return writer, nil
}
