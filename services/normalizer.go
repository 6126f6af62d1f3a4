package services

import (
	"time"

	"catalog-reconciler/models"
)

// Defaults parameterises the Normalizer so every run is reproducible given
// the same inputs: no hidden globals, the clock is injected.
type Defaults struct {
	Currency string
	Brand    string
	Now      func() time.Time
}

// Normalizer fills structural defaults on a single raw record so every
// record has a uniform shape before identity resolution and merging.
// Normalization is pure and idempotent: the input record is never mutated,
// and normalizing twice yields the same result as once.
type Normalizer struct {
	defaults Defaults
}

// NewNormalizer creates a Normalizer with the given defaults table.
func NewNormalizer(d Defaults) *Normalizer {
	if d.Currency == "" {
		d.Currency = "USD"
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Normalizer{defaults: d}
}

// Normalize returns a copy of r with the default-field table applied and the
// legacy field shapes rewritten. Existing values are left untouched.
func (n *Normalizer) Normalize(r models.Record) models.Record {
	out := r.Clone()

	// Legacy single-image shape: images = [image], image dropped. No record
	// may carry both forms, so a stray image field is dropped even when a
	// proper images list is already present.
	if img, ok := out["image"]; ok {
		if !out.Has("images") && !models.IsEmpty(img) {
			out["images"] = []any{img}
		}
		delete(out, "image")
	}

	// Sources sometimes emit images as a bare string; output must always be
	// a list.
	if s, ok := out["images"].(string); ok {
		if s == "" {
			out["images"] = []any{}
		} else {
			out["images"] = []any{s}
		}
	}

	// The sync boundary accepts price, not original_price.
	if op, ok := out["original_price"]; ok {
		if models.IsEmpty(out["price"]) && !models.IsEmpty(op) {
			out["price"] = op
		}
		delete(out, "original_price")
	}

	if !out.Has("scraped_at") {
		out["scraped_at"] = n.defaults.Now().Format(time.RFC3339)
	}
	if !out.Has("currency") {
		out["currency"] = n.defaults.Currency
	}
	if n.defaults.Brand != "" && models.IsEmpty(out["brand"]) {
		out["brand"] = n.defaults.Brand
	}
	for _, key := range []string{"colors", "sizes", "fabrics", "images"} {
		if !out.Has(key) {
			out[key] = []any{}
		}
	}
	if !out.Has("is_best_seller") {
		out["is_best_seller"] = false
	}
	if !out.Has("availability") {
		out["availability"] = "Unknown"
	}

	return out
}
