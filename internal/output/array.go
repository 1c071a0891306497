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
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// ArrayWriter streams records as one pretty-printed JSON array. Records are
// written to the output as they arrive; only the closing bracket is deferred
// until Close. An ArrayWriter that is never closed produces an unterminated
// document, so callers must always pair it with Close.
type ArrayWriter struct {
	mu        sync.Mutex
	output    io.Writer
	count     int
	closed    bool
	closeFunc func() error
}

// NewArrayWriter creates a new JSON array writer that writes to the
// specified output.
func NewArrayWriter(w io.Writer) *ArrayWriter {
	return &ArrayWriter{output: w}
}

// Write appends a single record to the array. The first record opens the
// array; later records are preceded by an element separator. Records are
// indented two spaces per level to match conventional pretty-printed JSON.
func (w *ArrayWriter) Write(record interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("write after close")
	}

	data, err := json.MarshalIndent(record, "  ", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	prefix := ",\n  "
	if w.count == 0 {
		prefix = "[\n  "
	}

	if _, err := io.WriteString(w.output, prefix); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	if _, err := w.output.Write(data); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	w.count++
	return nil
}

// Count returns the number of records written.
func (w *ArrayWriter) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close terminates the array and closes the underlying writer if it's a
// file. An empty result closes as a bare empty array. Close is idempotent.
func (w *ArrayWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	closing := "\n]\n"
	if w.count == 0 {
		closing = "[]\n"
	}

	if _, err := io.WriteString(w.output, closing); err != nil {
		return fmt.Errorf("failed to finalize output: %w", err)
	}

	if w.closeFunc != nil {
		return w.closeFunc()
	}
	return nil
}
