package storage

import "catalog-reconciler/models"

// Rejection classifies why the store refused a record. Duplicate and
// missing-field rejections are expected and recoverable; anything else is
// surfaced to the caller per record.
type Rejection int

const (
	RejectionNone Rejection = iota
	RejectionDuplicate
	RejectionMissingField
	RejectionOther
)

// InsertResult is the per-record outcome of a bulk insert: an accepted row
// id, or a structured rejection.
type InsertResult struct {
	ID        int64
	Rejection Rejection
	Err       error
}

// ProductStore is the contract the sync boundary consumes. Writes are
// insert-or-fail per record, not blind upserts, so genuine duplicates
// surface as recoverable rejections instead of silently overwriting state.
type ProductStore interface {
	InsertBatch(records []models.Record) ([]InsertResult, error)
	Count() (int, error)
	FetchAll() ([]models.Record, error)
	DeleteByBrand(brand string) (int, error)
	Close() error
}

// CanonicalWriter persists a canonical record set for audit.
type CanonicalWriter interface {
	WriteRecords(records []models.Record) error
	Close() error
}
