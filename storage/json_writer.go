package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"catalog-reconciler/models"
)

// JSONWriter writes a canonical record set to a JSON file for audit before
// upload. The output is a JSON array with the canonical field shape: images
// always a list, price in place of any original_price.
type JSONWriter struct {
	path string
}

// NewJSONWriter creates a writer for the given path. Intermediate
// directories are created automatically.
func NewJSONWriter(path string) (*JSONWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("json: create output dir: %w", err)
	}
	return &JSONWriter{path: path}, nil
}

// WriteRecords writes the full record set, replacing any previous content.
func (w *JSONWriter) WriteRecords(records []models.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("json: marshal records: %w", err)
	}
	if err := os.WriteFile(w.path, data, 0644); err != nil {
		return fmt.Errorf("json: write %q: %w", w.path, err)
	}
	return nil
}

// Close is a no-op; it exists to satisfy CanonicalWriter.
func (w *JSONWriter) Close() error { return nil }

// ReadRecords loads a previously written canonical JSON file (or any raw
// batch file shaped as an array of records).
func ReadRecords(path string) ([]models.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("json: read %q: %w", path, err)
	}
	var records []models.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("json: parse %q: %w", path, err)
	}
	return records, nil
}
