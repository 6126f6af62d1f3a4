package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"catalog-reconciler/models"
)

// CSVWriter exports canonical records to a CSV file for spreadsheet review.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

var csvHeader = []string{
	"brand", "product_id", "name", "category", "gender",
	"price", "sale_price", "currency", "colors", "sizes", "url",
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
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteRecords appends one row per canonical record. List fields are joined
// with "; " so they stay readable in a single cell.
func (c *CSVWriter) WriteRecords(records []models.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, rec := range records {
		row := []string{
			rec.String("brand"),
			rec.String("product_id"),
			rec.String("name"),
			rec.String("category"),
			rec.String("gender"),
			csvFloat(rec, "price"),
			csvFloat(rec, "sale_price"),
			rec.String("currency"),
			strings.Join(rec.Strings("colors"), "; "),
			strings.Join(rec.Strings("sizes"), "; "),
			rec.String("url"),
		}
		if err := c.writer.Write(row); err != nil {
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

func csvFloat(rec models.Record, key string) string {
	if v, ok := rec.Float(key); ok {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	return ""
}
