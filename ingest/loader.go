// Package ingest discovers and parses raw batch files. A batch file holds
// either a JSON array of product objects or a single object (a one-element
// batch). Malformed files are reported and skipped; the run continues.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"catalog-reconciler/models"
	"catalog-reconciler/utils"
)

// Loader reads raw batches from disk.
type Loader struct {
	logger *utils.Logger
}

// NewLoader creates a Loader with the given logger.
func NewLoader(logger *utils.Logger) *Loader {
	return &Loader{logger: logger}
}

// LoadGlob loads every batch file matching the glob pattern. Files are
// sorted by name before loading so first-seen-wins tie-breaking in the
// merger is stable across runs regardless of directory enumeration order.
func (l *Loader) LoadGlob(pattern string) ([]models.Batch, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("ingest: bad glob %q: %w", pattern, err)
	}
	sort.Strings(paths)

	batches := make([]models.Batch, 0, len(paths))
	for _, path := range paths {
		batch, err := l.LoadFile(path)
		if err != nil {
			l.logger.Warn("[ingest] skipping %s: %v", path, err)
			continue
		}
		l.logger.Info("[ingest] loaded %d records from %s", len(batch.Records), path)
		batches = append(batches, batch)
	}
	return batches, nil
}

// LoadFile parses one batch file. The batch carries the file's base name as
// classification context.
func (l *Loader) LoadFile(path string) (models.Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Batch{}, fmt.Errorf("ingest: read: %w", err)
	}

	records, err := ParseBatch(data)
	if err != nil {
		return models.Batch{}, err
	}

	return models.Batch{File: filepath.Base(path), Records: records}, nil
}

// ParseBatch decodes a raw batch payload: a JSON array of objects, or a
// single object treated as a one-element batch.
func ParseBatch(data []byte) ([]models.Record, error) {
	var records []models.Record
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var single models.Record
	if err := json.Unmarshal(data, &single); err == nil {
		return []models.Record{single}, nil
	}

	return nil, fmt.Errorf("ingest: not a JSON array or object")
}
