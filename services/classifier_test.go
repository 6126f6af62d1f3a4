package services

import (
	"testing"

	"catalog-reconciler/models"
)

func TestCategoryFromTextPrecedence(t *testing.T) {
	tests := []struct {
		url  string
		name string
		want string
	}{
		// The short+sleeve exception fires on the Outerwear tier.
		{"", "Quarter-Zip Short Sleeve Pullover", CategoryTops},
		{"", "Quarter-Zip Pullover", CategoryOuterwear},
		{"", "Commuter Jacket", CategoryOuterwear},
		// "short sleeve" must not read as Shorts.
		{"", "Reign Short Sleeve", CategoryTops},
		{"", "Mako Short 7\"", CategoryShorts},
		{"https://s/collections/shorts/p/mako", "", CategoryShorts},
		// Accessories beat everything.
		{"", "Gym Bag", CategoryAccessories},
		{"", "Crew Sock 3-Pack", CategoryAccessories},
		{"", "Everyday Beanie", CategoryAccessories},
		{"", "Delta Pique Polo", CategoryTops},
		{"", "Commuter Pant Slim", CategoryBottoms},
		{"", "Spar Jogger", CategoryBottoms},
		{"", "High-Rise Legging", CategoryLeggings},
		{"", "Adapt Sports Bra", CategorySportsBras},
		// Nothing matches: default Tops.
		{"", "Mystery Item", CategoryTops},
		{"https://s/p/x", "", CategoryTops},
	}

	for _, tt := range tests {
		if got := CategoryFromText(tt.url, tt.name); got != tt.want {
			t.Errorf("CategoryFromText(%q, %q) = %q, want %q", tt.url, tt.name, got, tt.want)
		}
	}
}

func TestCategoryFromFilename(t *testing.T) {
	tests := []struct {
		file string
		want string
		ok   bool
	}{
		{"rhone_products_mens_tops.json", CategoryTops, true},
		{"rhone_products_womens_bottoms.json", CategoryBottoms, true},
		{"products_outerwear_20260801.json", CategoryOuterwear, true},
		{"womens_sports_bras.json", CategorySportsBras, true},
		{"accessories.json", CategoryAccessories, true},
		{"mens_shorts.json", CategoryShorts, true},
		{"womens_leggings.json", CategoryLeggings, true},
		{"mens-view-all__123.json", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := CategoryFromFilename(tt.file)
		if got != tt.want || ok != tt.ok {
			t.Errorf("CategoryFromFilename(%q) = (%q, %v), want (%q, %v)",
				tt.file, got, ok, tt.want, tt.ok)
		}
	}
}

func TestGenderFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
		ok   bool
	}{
		{"https://s/collections/mens-tops/p/1", GenderMen, true},
		{"https://s/collections/womens-tops/p/1", GenderWomen, true},
		{"https://s/shop/women/leggings", GenderWomen, true},
		{"https://s/shop/men/pants", GenderMen, true},
		{"https://s/collections/view-all", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := GenderFromURL(tt.url)
		if got != tt.want || ok != tt.ok {
			t.Errorf("GenderFromURL(%q) = (%q, %v), want (%q, %v)", tt.url, got, ok, tt.want, tt.ok)
		}
	}
}

func TestApplyGenderOverride(t *testing.T) {
	c := NewClassifier()

	// URL signal always wins over a previously supplied gender.
	rec := models.Record{
		"url":    "https://s/collections/mens/p/jogger",
		"name":   "Spar Jogger",
		"gender": "Women",
	}
	c.Apply(rec, "")
	if got := rec.String("gender"); got != GenderMen {
		t.Errorf("gender: got %q, want Men", got)
	}

	// No URL signal leaves the existing value alone.
	rec = models.Record{"url": "https://s/p/jogger", "name": "Spar Jogger", "gender": "Women"}
	c.Apply(rec, "")
	if got := rec.String("gender"); got != "Women" {
		t.Errorf("gender: got %q, want Women untouched", got)
	}
}

func TestApplyPlaceholderCategories(t *testing.T) {
	c := NewClassifier()

	for _, placeholder := range []string{"", "Other", "null", "Unknown"} {
		rec := models.Record{"url": "https://s/p/x", "name": "Spar Jogger", "category": placeholder}
		c.Apply(rec, "")
		if got := rec.String("category"); got != CategoryBottoms {
			t.Errorf("placeholder %q: category = %q, want Bottoms", placeholder, got)
		}
	}

	// A real source-provided category is left untouched.
	rec := models.Record{"url": "https://s/p/x", "name": "Spar Jogger", "category": "Loungewear"}
	c.Apply(rec, "")
	if got := rec.String("category"); got != "Loungewear" {
		t.Errorf("category: got %q, want Loungewear untouched", got)
	}
}

func TestApplyFilenameTierIsAuthoritative(t *testing.T) {
	c := NewClassifier()

	rec := models.Record{"url": "https://s/p/x", "name": "Spar Jogger", "category": "Bottoms"}
	fromFile := c.Apply(rec, "rhone_products_mens_tops.json")

	if !fromFile {
		t.Fatal("expected filename tier to fire")
	}
	if got := rec.String("category"); got != CategoryTops {
		t.Errorf("category: got %q, want filename-pinned Tops", got)
	}
}
