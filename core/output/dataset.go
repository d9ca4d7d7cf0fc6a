package output

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/gaurav-prasanna/pagechunk/core"
)

// DatasetFile is the JSON Lines file name inside the output directory.
const DatasetFile = "dataset.jsonl"

// JSONLSink appends one JSON-encoded record per line.
type JSONLSink struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
}

// NewJSONLSink writes records to w. Close flushes but does not close w.
func NewJSONLSink(w io.Writer) *JSONLSink {
	return &JSONLSink{w: bufio.NewWriter(w)}
}

// OpenDataset opens <dir>/dataset.jsonl for appending.
func OpenDataset(dir string) (*JSONLSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(dir, DatasetFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", path, err)
	}
	return &JSONLSink{w: bufio.NewWriter(f), closer: f}, nil
}

// Push writes rec as one line.
func (s *JSONLSink) Push(_ context.Context, rec *core.PageRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record %s: %w", rec.URL, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing record %s: %w", rec.URL, err)
	}
	return s.w.Flush()
}

// Close flushes buffered output and closes the underlying file, if any.
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.w.Flush()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
