package services

import (
	"fmt"
	"net/url"
	"strings"

	"catalog-reconciler/models"
)

// KeyStrategy selects how canonical keys are computed for a run. A run uses
// exactly one strategy; mixing strategies is a configuration decision, not a
// per-record one.
type KeyStrategy string

const (
	// KeyByURL keys records on their product URL with volatile query
	// parameters stripped. Requires url and product_id.
	KeyByURL KeyStrategy = "url"

	// KeyByImage keys records on their first image URL, treating each
	// distinct product photo as an independently addressable unit (one
	// color = one unit). Requires a non-empty images list.
	KeyByImage KeyStrategy = "image"
)

// ParseKeyStrategy validates a strategy name from configuration.
func ParseKeyStrategy(s string) (KeyStrategy, error) {
	switch KeyStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case KeyByURL:
		return KeyByURL, nil
	case KeyByImage:
		return KeyByImage, nil
	}
	return "", fmt.Errorf("identity: unknown key strategy %q (want url or image)", s)
}

// Resolver computes the canonical key used to detect that two raw records
// describe the same catalog entity.
type Resolver struct {
	strategy KeyStrategy
}

// NewResolver creates a Resolver for the given strategy.
func NewResolver(strategy KeyStrategy) *Resolver {
	return &Resolver{strategy: strategy}
}

// Resolve returns the canonical key for a normalized record, or ok=false
// when the record lacks the fields the strategy needs and must be dropped.
func (r *Resolver) Resolve(rec models.Record) (string, bool) {
	switch r.strategy {
	case KeyByImage:
		images := rec.Strings("images")
		if len(images) == 0 || images[0] == "" {
			return "", false
		}
		return images[0], true
	default:
		rawURL := rec.String("url")
		if rawURL == "" || rec.String("product_id") == "" {
			return "", false
		}
		return CanonicalURL(rawURL), true
	}
}

// CanonicalURL strips all query parameters from a product URL except
// variant. Tracking and scroll markers are volatile noise, but a variant
// parameter encodes true product-variant identity and must not be collapsed.
func CanonicalURL(rawURL string) string {
	base, query, found := strings.Cut(rawURL, "?")
	if !found {
		return base
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return base
	}
	if v := values.Get("variant"); v != "" {
		return base + "?variant=" + v
	}
	return base
}
