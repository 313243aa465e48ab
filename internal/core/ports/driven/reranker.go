package driven

import (
	"context"

	"github.com/jobforge/jobforge/internal/core/domain"
)

// Reranker scores retrieval candidates against a query with a
// cross-encoder and returns the best ones.
//
// Contract:
//   - The result is sorted by RerankScore descending.
//   - Ties keep their input order (stable).
//   - At most topK fragments are returned.
//   - An empty candidate list returns empty without any remote call.
type Reranker interface {
	// Rerank scores fragments against the query and returns the topK
	// most relevant, each with RerankScore set.
	Rerank(ctx context.Context, query string, fragments []domain.Fragment, topK int) ([]domain.Fragment, error)

	// ModelName returns the name of the reranking model being used.
	ModelName() string
}
