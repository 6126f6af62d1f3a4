package services

import (
	"strings"

	"catalog-reconciler/models"
)

// The closed category set assigned by the cascade. Source-provided values
// outside this set are left untouched unless they are placeholders.
const (
	CategoryAccessories = "Accessories"
	CategoryOuterwear   = "Outerwear"
	CategorySportsBras  = "Sports Bras"
	CategoryLeggings    = "Leggings"
	CategoryShorts      = "Shorts"
	CategoryBottoms     = "Bottoms"
	CategoryTops        = "Tops"
)

const (
	GenderWomen = "Women"
	GenderMen   = "Men"
)

// taxonomyRule is one tier of the keyword cascade: if any token appears in
// the lower-cased URL+name text, the rule fires. Veto suppresses the rule
// based on the product name alone; Refine can redirect the category after a
// match. Rules are evaluated top to bottom and the first match wins, so
// ordering encodes disambiguation (a jacket named "short sleeve" must not
// land in Shorts).
type taxonomyRule struct {
	Category string
	Tokens   []string
	Veto     func(name string) bool
	Refine   func(name string) string
}

var taxonomyCascade = []taxonomyRule{
	{
		Category: CategoryAccessories,
		Tokens: []string{
			"accessories", "beanie", "hat", "cap", "sock", "glove", "belt",
			"bag", "backpack", "headband", "wristband", "towel", "tumbler", "gift",
		},
	},
	{
		Category: CategoryOuterwear,
		Tokens: []string{
			"jacket", "hoodie", "vest", "fleece", "blazer", "coat",
			"pullover", "quarter-zip", "half-zip", "full-zip",
		},
		// "Short Sleeve" pullover-style names are almost always shirts.
		Refine: func(name string) string {
			if strings.Contains(name, "short") && strings.Contains(name, "sleeve") &&
				!strings.Contains(name, "jacket") {
				return CategoryTops
			}
			return CategoryOuterwear
		},
	},
	{
		Category: CategorySportsBras,
		Tokens:   []string{"sports-bra", "sportsbra", "bra"},
	},
	{
		Category: CategoryLeggings,
		Tokens:   []string{"legging"},
	},
	{
		Category: CategoryShorts,
		Tokens:   []string{"short"},
		Veto: func(name string) bool {
			return strings.Contains(name, "sleeve")
		},
	},
	{
		Category: CategoryBottoms,
		Tokens:   []string{"pant", "jogger", "bottom", "sweatpant", "trouser", "chino", "commuter"},
	},
	{
		Category: CategoryTops,
		Tokens: []string{
			"shirt", "tee", "t-shirt", "tank", "polo", "top",
			"henley", "crew", "v-neck", "crewneck", "sleeve", "sweater",
		},
	},
}

// filenameTokens maps an unambiguous category token in a batch filename to
// the category it pins. Ordered most-specific first so "sports_bras" never
// reads as something else.
var filenameTokens = []struct {
	Token    string
	Category string
}{
	{"accessories", CategoryAccessories},
	{"outerwear", CategoryOuterwear},
	{"legging", CategoryLeggings},
	{"bra", CategorySportsBras},
	{"short", CategoryShorts},
	{"bottom", CategoryBottoms},
	{"top", CategoryTops},
}

// placeholder category values are treated as unset and re-classified.
var placeholderCategories = map[string]struct{}{
	"":        {},
	"Other":   {},
	"null":    {},
	"Unknown": {},
}

// Classifier infers category and gender for a record from weak textual
// signals: the batch filename, the product URL, and the product name.
type Classifier struct{}

// NewClassifier creates a Classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Apply fills category and gender on the record in place. sourceFile is the
// name of the batch file the record came from, or "" when unknown. The
// returned flag reports whether the filename tier supplied the category;
// filename-derived categories are authoritative and overwrite whatever the
// record carried.
func (c *Classifier) Apply(rec models.Record, sourceFile string) bool {
	fromFilename := false

	if cat, ok := CategoryFromFilename(sourceFile); ok {
		rec["category"] = cat
		fromFilename = true
	} else if c.needsCategory(rec) {
		rec["category"] = CategoryFromText(rec.String("url"), rec.String("name"))
	}

	// Gender runs unconditionally: the URL is more reliable than any
	// previously supplied value, so a signal always overwrites.
	if g, ok := GenderFromURL(rec.String("url")); ok {
		rec["gender"] = g
	}

	return fromFilename
}

func (c *Classifier) needsCategory(rec models.Record) bool {
	cat, ok := rec["category"].(string)
	if !ok {
		return true
	}
	_, placeholder := placeholderCategories[cat]
	return placeholder
}

// CategoryFromFilename returns the category pinned by an unambiguous token
// in the batch filename, if any.
func CategoryFromFilename(filename string) (string, bool) {
	if filename == "" {
		return "", false
	}
	lower := strings.ToLower(filename)
	for _, ft := range filenameTokens {
		if strings.Contains(lower, ft.Token) {
			return ft.Category, true
		}
	}
	return "", false
}

// CategoryFromText runs the keyword cascade over the lower-cased
// concatenation of URL and name. The cascade always terminates with a
// definite category; Tops is the default when nothing matches.
func CategoryFromText(url, name string) string {
	hay := strings.ToLower(url) + " " + strings.ToLower(name)
	lowerName := strings.ToLower(name)

	for _, rule := range taxonomyCascade {
		if !containsAny(hay, rule.Tokens) {
			continue
		}
		if rule.Veto != nil && rule.Veto(lowerName) {
			continue
		}
		if rule.Refine != nil {
			return rule.Refine(lowerName)
		}
		return rule.Category
	}
	return CategoryTops
}

// GenderFromURL infers gender from the URL only, since product copy is full of
// false positives. Women is tested first because "womens" contains "mens".
func GenderFromURL(url string) (string, bool) {
	lower := strings.ToLower(url)
	if strings.Contains(lower, "womens") || strings.Contains(lower, "/women") {
		return GenderWomen, true
	}
	if strings.Contains(lower, "mens") || strings.Contains(lower, "/men") {
		return GenderMen, true
	}
	return "", false
}

func containsAny(hay string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(hay, t) {
			return true
		}
	}
	return false
}
