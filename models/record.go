package models

// Record is one product as decoded from a raw batch file or assembled by the
// reconciler. Records are open maps: fields the pipeline does not recognise
// pass through to the output untouched, so a closed struct would lose data.
type Record map[string]any

// Clone returns a shallow copy of the record. List values are copied one
// level deep so merging never aliases a slice between two records.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		if seq, ok := v.([]any); ok {
			cp := make([]any, len(seq))
			copy(cp, seq)
			out[k] = cp
			continue
		}
		out[k] = v
	}
	return out
}

// Has reports whether the key is present at all, even with a nil value.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// String returns the value for key when it is a string, or "" otherwise.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Strings returns the value for key as a string slice. JSON-decoded lists
// arrive as []any; non-string elements are skipped.
func (r Record) Strings(key string) []string {
	switch v := r[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, el := range v {
			if s, ok := el.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Float returns the value for key as a float64. JSON numbers decode to
// float64; int is accepted for values set in code.
func (r Record) Float(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// IsEmpty reports whether v counts as empty under the completeness policy:
// nil, the empty string, or an empty sequence. Zero numbers and false are
// not empty: a zero price is still a value.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}

// SeqLen returns the length of v when it is a sequence.
func SeqLen(v any) (int, bool) {
	switch t := v.(type) {
	case []any:
		return len(t), true
	case []string:
		return len(t), true
	}
	return 0, false
}

// Batch is one raw input file worth of records plus the filename it came
// from. The filename doubles as classification context: a file named after a
// category pins that category for every record in it.
type Batch struct {
	File    string
	Records []Record
}

// BatchStats holds per-batch reconciliation counters.
type BatchStats struct {
	File    string
	Read    int
	Skipped int // unresolvable identity, dropped
	Merged  int // collided with an already-seen key
	New     int
}

// UploadReport summarises one sync run against the store.
type UploadReport struct {
	Accepted         int
	SkippedDuplicate int
	SkippedInvalid   int // missing required field at the store
	Failed           int
}

// CatalogReport holds the computed analytics over a canonical record set.
type CatalogReport struct {
	Total        int
	ByCategory   map[string]int
	ByGender     map[string]int
	ByBrand      map[string]int
	PricedCount  int
	AveragePrice float64
	MinPrice     float64
	MaxPrice     float64
	OnSale       int
	BestSellers  int
}
