package services

import (
	"errors"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"catalog-reconciler/models"
	"catalog-reconciler/utils"
)

// ErrNoInput is returned when a run has no readable raw batches at all. It
// is the only run-fatal condition in the engine.
var ErrNoInput = errors.New("assembler: no raw batches to reconcile")

// RunResult is the outcome of one reconciliation run: the canonical record
// set plus diagnostics.
type RunResult struct {
	RunID         string
	Records       []models.Record
	Batches       []models.BatchStats
	DroppedNoName int
}

// Assembler drives the full reconciliation: normalize each record, resolve
// its canonical key, classify it with batch filename context, and merge key
// collisions. Processing is single-threaded and strictly in input order
// because collision resolution is first-seen-wins on ties.
type Assembler struct {
	normalizer *Normalizer
	resolver   *Resolver
	merger     *Merger
	classifier *Classifier
	logger     *utils.Logger
}

// NewAssembler wires the pipeline components together.
func NewAssembler(n *Normalizer, r *Resolver, logger *utils.Logger) *Assembler {
	return &Assembler{
		normalizer: n,
		resolver:   r,
		merger:     NewMerger(),
		classifier: NewClassifier(),
		logger:     logger,
	}
}

// Assemble reconciles the ordered batches into a deduplicated, classified
// canonical record set. The accumulation map is local to this call; the
// engine holds no state between runs.
func (a *Assembler) Assemble(batches []models.Batch) (*RunResult, error) {
	if len(batches) == 0 {
		return nil, ErrNoInput
	}

	result := &RunResult{RunID: uuid.NewString()}

	byKey := make(map[string]models.Record)
	var order []string

	for _, batch := range batches {
		stats := models.BatchStats{File: batch.File, Read: len(batch.Records)}

		for _, raw := range batch.Records {
			rec := a.normalizer.Normalize(raw)

			key, ok := a.resolver.Resolve(rec)
			if !ok {
				stats.Skipped++
				a.logger.Debug("[assembler] %s: dropping unresolvable record (name=%q)",
					batch.File, rec.String("name"))
				continue
			}

			fromFilename := a.classifier.Apply(rec, batch.File)

			existing, seen := byKey[key]
			if !seen {
				byKey[key] = rec
				order = append(order, key)
				stats.New++
				continue
			}

			merged := a.merger.Merge(existing, rec)
			if fromFilename {
				// Filename-derived category is ground truth, stronger than
				// any inferred or merged value.
				merged["category"] = rec["category"]
			}
			byKey[key] = merged
			stats.Merged++
		}

		a.logger.Info("[assembler] %s: read=%d new=%d merged=%d skipped=%d",
			batch.File, stats.Read, stats.New, stats.Merged, stats.Skipped)
		result.Batches = append(result.Batches, stats)
	}

	// Final pass: re-normalize so the images/price invariants hold even for
	// single-source records, backfill names from slug-like product ids, and
	// drop what still has no name (store constraint, never fatal).
	result.Records = make([]models.Record, 0, len(order))
	for _, key := range order {
		rec := a.normalizer.Normalize(byKey[key])

		if rec.String("name") == "" {
			if name := NameFromSlug(rec.String("product_id")); name != "" {
				rec["name"] = name
			} else {
				result.DroppedNoName++
				continue
			}
		}

		result.Records = append(result.Records, rec)
	}

	if result.DroppedNoName > 0 {
		a.logger.Warn("[assembler] dropped %d records without a name", result.DroppedNoName)
	}

	return result, nil
}

// NameFromSlug derives a display name from a slug-style product id
// ("womens-performance-jogger/" → "Performance Jogger"). Numeric ids return
// "", there is no name to recover from them.
func NameFromSlug(productID string) string {
	slug := strings.TrimSuffix(strings.TrimSpace(productID), "/")
	if slug == "" || !strings.ContainsFunc(slug, unicode.IsLetter) {
		return ""
	}

	slug = strings.ReplaceAll(slug, "womens-", "")
	slug = strings.ReplaceAll(slug, "mens-", "")

	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.TrimSpace(strings.Join(words, " "))
}
