package services

import (
	"catalog-reconciler/models"
)

// Merger combines two records that share a canonical key using the
// completeness policy: empty values lose, fuller sequences and longer
// strings win, everything else keeps the first-seen value. The policy is
// local and field-independent; it never reasons about correlations between
// fields.
type Merger struct{}

// NewMerger creates a Merger.
func NewMerger() *Merger {
	return &Merger{}
}

// Merge folds the incoming record into the existing one and returns the
// merged result. Every field present on the incoming record is considered,
// including fields the pipeline knows nothing about. Neither input is
// mutated.
func (m *Merger) Merge(existing, incoming models.Record) models.Record {
	out := existing.Clone()

	for key, inVal := range incoming {
		if models.IsEmpty(inVal) {
			continue
		}

		exVal, present := out[key]
		if !present || models.IsEmpty(exVal) {
			out[key] = inVal
			continue
		}

		if inLen, inSeq := models.SeqLen(inVal); inSeq {
			if exLen, exSeq := models.SeqLen(exVal); exSeq && inLen > exLen {
				out[key] = inVal
			}
			continue
		}

		if inStr, ok := inVal.(string); ok {
			if exStr, ok := exVal.(string); ok && len(inStr) > len(exStr) {
				out[key] = inVal
			}
			continue
		}

		// Other scalars: first-seen wins (prices, flags, ids).
	}

	return out
}
