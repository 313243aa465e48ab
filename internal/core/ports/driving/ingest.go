package driving

import (
	"context"

	"github.com/jobforge/jobforge/internal/core/domain"
)

// IngestOrchestrator loads knowledge-base documents into the fragment store.
type IngestOrchestrator interface {
	// IngestDir chunks and stores every supported document under dir.
	// Unchanged documents are skipped unless force is set. With recreate
	// the collection is rebuilt from scratch first.
	IngestDir(ctx context.Context, dir string, opts domain.IngestOptions) ([]domain.IngestReport, error)

	// IngestFile chunks and stores a single document.
	IngestFile(ctx context.Context, path string, opts domain.IngestOptions) (domain.IngestReport, error)
}
