package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"listing-optimizer/models"
)

// CSVWriter writes pipeline results to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	// Write header
	if err := w.Write(columns); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends one row per result.
func (c *CSVWriter) Write(results []*models.PipelineResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, res := range results {
		r := toRow(res)
		record := []string{
			r.RunID,
			r.URL,
			r.OriginalTitle,
			r.OptimizedTitle,
			strconv.FormatFloat(r.OriginalPrice, 'f', 2, 64),
			strconv.FormatFloat(r.RecommendedPrice, 'f', 2, 64),
			strconv.FormatFloat(r.Confidence, 'f', 2, 64),
			r.Keywords,
			r.SellingPoints,
			r.Description,
			r.Rendered,
			strconv.FormatInt(r.ElapsedMs, 10),
			r.CreatedAt.Format(time.RFC3339),
		}
		if err := c.writer.Write(record); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
