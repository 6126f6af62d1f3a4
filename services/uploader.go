package services

import (
	"catalog-reconciler/models"
	"catalog-reconciler/storage"
	"catalog-reconciler/utils"
)

// Uploader pushes canonical records to the external store in batches with
// per-record failure isolation: duplicate and missing-field rejections are
// skipped and counted, anything else is logged per record, and no rejection
// aborts the remaining records or batches.
type Uploader struct {
	store     storage.ProductStore
	batchSize int
	logger    *utils.Logger
}

// NewUploader creates an Uploader writing batches of batchSize records.
func NewUploader(store storage.ProductStore, batchSize int, logger *utils.Logger) *Uploader {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Uploader{store: store, batchSize: batchSize, logger: logger}
}

// Upload syncs the record sequence and returns what was accepted, skipped,
// and failed. Records without a name never reach the store.
func (u *Uploader) Upload(records []models.Record) *models.UploadReport {
	report := &models.UploadReport{}

	writable := make([]models.Record, 0, len(records))
	for _, rec := range records {
		if rec.String("name") == "" {
			report.SkippedInvalid++
			continue
		}
		writable = append(writable, rec)
	}
	if report.SkippedInvalid > 0 {
		u.logger.Warn("[uploader] withheld %d records without a name", report.SkippedInvalid)
	}

	for start := 0; start < len(writable); start += u.batchSize {
		end := start + u.batchSize
		if end > len(writable) {
			end = len(writable)
		}
		batch := writable[start:end]

		results, err := u.store.InsertBatch(batch)
		if err != nil {
			// Batch-level failure: report and move on to the next batch.
			u.logger.Error("[uploader] batch %d-%d failed: %v", start, end, err)
			report.Failed += len(batch)
			continue
		}

		for i, res := range results {
			switch res.Rejection {
			case storage.RejectionNone:
				report.Accepted++
			case storage.RejectionDuplicate:
				report.SkippedDuplicate++
			case storage.RejectionMissingField:
				report.SkippedInvalid++
			default:
				report.Failed++
				u.logger.Error("[uploader] record %q rejected: %v",
					batch[i].String("product_id"), res.Err)
			}
		}

		u.logger.Info("[uploader] batch %d/%d: %d accepted so far",
			start/u.batchSize+1, (len(writable)+u.batchSize-1)/u.batchSize, report.Accepted)
	}

	return report
}
