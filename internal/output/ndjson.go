package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// NDJSONWriter handles streaming NDJSON output to a file or io.Writer.
// It ensures memory-efficient writing without accumulating data.
type NDJSONWriter struct {
	mu        sync.Mutex
	output    io.Writer
	encoder   *json.Encoder
	count     int
	closeFunc func() error
}

// NewNDJSONWriter creates a new NDJSON writer that writes to the specified output.
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	return &NDJSONWriter{
		output:  w,
		encoder: json.NewEncoder(w),
	}
}

// Write writes a single record as NDJSON.
// Each record is immediately flushed to the output.
func (w *NDJSONWriter) Write(record interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.encoder.Encode(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	w.count++
	return nil
}

// Count returns the number of records written.
func (w *NDJSONWriter) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close closes the underlying writer if it's a file.
func (w *NDJSONWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closeFunc != nil {
		fn := w.closeFunc
		w.closeFunc = nil
		return fn()
	}
	return nil
}
