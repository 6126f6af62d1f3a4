package services

import (
	"reflect"
	"testing"
	"time"

	"catalog-reconciler/models"
)

func testNormalizer() *Normalizer {
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return NewNormalizer(Defaults{
		Currency: "USD",
		Brand:    "Rhone",
		Now:      func() time.Time { return fixed },
	})
}

func TestNormalizeFillsDefaults(t *testing.T) {
	n := testNormalizer()

	out := n.Normalize(models.Record{"url": "https://x.test/p/a", "product_id": "1"})

	if got := out.String("currency"); got != "USD" {
		t.Errorf("currency: got %q, want USD", got)
	}
	if got := out.String("scraped_at"); got != "2026-08-01T12:00:00Z" {
		t.Errorf("scraped_at: got %q", got)
	}
	if got := out.String("availability"); got != "Unknown" {
		t.Errorf("availability: got %q, want Unknown", got)
	}
	if out["is_best_seller"] != false {
		t.Errorf("is_best_seller: got %v, want false", out["is_best_seller"])
	}
	for _, key := range []string{"colors", "sizes", "fabrics", "images"} {
		seq, ok := out[key].([]any)
		if !ok || len(seq) != 0 {
			t.Errorf("%s: got %v, want empty list", key, out[key])
		}
	}
}

func TestNormalizeKeepsExistingValues(t *testing.T) {
	n := testNormalizer()

	out := n.Normalize(models.Record{
		"currency":     "EUR",
		"availability": "In Stock",
		"colors":       []any{"Black"},
	})

	if got := out.String("currency"); got != "EUR" {
		t.Errorf("currency overwritten: got %q", got)
	}
	if got := out.String("availability"); got != "In Stock" {
		t.Errorf("availability overwritten: got %q", got)
	}
	if got := out.Strings("colors"); !reflect.DeepEqual(got, []string{"Black"}) {
		t.Errorf("colors overwritten: got %v", got)
	}
}

func TestNormalizeImageRewrite(t *testing.T) {
	n := testNormalizer()

	tests := []struct {
		name       string
		in         models.Record
		wantImages []string
	}{
		{"singular image becomes list", models.Record{"image": "i1.jpg"}, []string{"i1.jpg"}},
		{"images list untouched", models.Record{"images": []any{"a.jpg", "b.jpg"}}, []string{"a.jpg", "b.jpg"}},
		{"both forms keep images", models.Record{"image": "x.jpg", "images": []any{"a.jpg"}}, []string{"a.jpg"}},
		{"bare string images wrapped", models.Record{"images": "solo.jpg"}, []string{"solo.jpg"}},
	}

	for _, tt := range tests {
		out := n.Normalize(tt.in)
		if out.Has("image") {
			t.Errorf("%s: singular image field survived", tt.name)
		}
		if got := out.Strings("images"); !reflect.DeepEqual(got, tt.wantImages) {
			t.Errorf("%s: images = %v, want %v", tt.name, got, tt.wantImages)
		}
	}
}

func TestNormalizeOriginalPriceRewrite(t *testing.T) {
	n := testNormalizer()

	out := n.Normalize(models.Record{"original_price": 98.0})
	if out.Has("original_price") {
		t.Error("original_price survived normalization")
	}
	if price, ok := out.Float("price"); !ok || price != 98.0 {
		t.Errorf("price: got %v, want 98", out["price"])
	}

	// An existing price is never replaced.
	out = n.Normalize(models.Record{"price": 58.0, "original_price": 98.0})
	if price, _ := out.Float("price"); price != 58.0 {
		t.Errorf("price: got %v, want 58", out["price"])
	}
	if out.Has("original_price") {
		t.Error("original_price survived when price present")
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := testNormalizer()

	records := []models.Record{
		{"url": "https://x.test/p/a", "product_id": "1"},
		{"image": "i1.jpg", "original_price": 98.0},
		{"images": "solo.jpg", "colors": []any{"Black", "Navy"}},
	}

	for i, rec := range records {
		once := n.Normalize(rec)
		twice := n.Normalize(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("record %d: normalize(normalize(r)) != normalize(r)\nonce:  %v\ntwice: %v",
				i, once, twice)
		}
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	n := testNormalizer()

	in := models.Record{"image": "i1.jpg"}
	n.Normalize(in)

	if !in.Has("image") || in.Has("images") {
		t.Errorf("input record was mutated: %v", in)
	}
}
