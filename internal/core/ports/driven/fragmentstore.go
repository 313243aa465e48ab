package driven

import (
	"context"

	"github.com/jobforge/jobforge/internal/core/domain"
)

// FragmentStore retrieves and persists knowledge fragments by semantic
// similarity. Scores returned by Search are backend similarity scores;
// ordering and filtering beyond the threshold is the backend's.
//
// Implementations may include:
//   - Qdrant over its REST API
//   - In-memory store for tests and local development
type FragmentStore interface {
	// Search returns up to limit fragments semantically close to the query.
	// Fragments scoring below threshold are excluded. An empty result is
	// not an error; callers decide whether that is a failure.
	Search(ctx context.Context, query string, limit int, threshold float64) ([]domain.Fragment, error)

	// Upsert writes fragments, replacing any with the same ID.
	Upsert(ctx context.Context, fragments []domain.Fragment) error

	// EnsureReady prepares the backing collection. With recreate set the
	// collection is dropped and rebuilt, discarding all stored fragments.
	EnsureReady(ctx context.Context, recreate bool) error

	// Count returns the number of stored fragments.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
