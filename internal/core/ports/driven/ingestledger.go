package driven

import (
	"context"

	"github.com/jobforge/jobforge/internal/core/domain"
)

// IngestLedger persists per-document ingestion state so unchanged
// documents can be skipped on later runs.
type IngestLedger interface {
	// Get returns the record for a source document.
	// Returns domain.ErrNotFound if the document was never ingested.
	Get(ctx context.Context, source string) (domain.IngestRecord, error)

	// Save writes or replaces the record for a source document.
	Save(ctx context.Context, record domain.IngestRecord) error

	// List returns all records, ordered by source.
	List(ctx context.Context) ([]domain.IngestRecord, error)

	// Delete removes the record for a source document.
	Delete(ctx context.Context, source string) error

	// Reset removes all records. Used when the collection is recreated.
	Reset(ctx context.Context) error

	// Close releases resources.
	Close() error
}
