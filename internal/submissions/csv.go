package submissions

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// CSVSink appends submissions to a local CSV file.
type CSVSink struct {
	mu   sync.Mutex
	path string
}

// NewCSVSink prepares path for appending. The header is written when the
// file does not exist yet.
func NewCSVSink(path string) (*CSVSink, error) {
	if path == "" {
		return nil, fmt.Errorf("csv sink needs a file path")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return &CSVSink{path: path}, nil
}

func (s *CSVSink) Name() string { return KindCSV }

func (s *CSVSink) Write(ctx context.Context, sub Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, statErr := os.Stat(s.path)
	isNew := os.IsNotExist(statErr)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open submissions log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(columns); err != nil {
			return err
		}
	}
	if err := w.Write(sub.row()); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (s *CSVSink) Close() error { return nil }
