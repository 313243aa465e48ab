package driving

import (
	"context"

	"github.com/jobforge/jobforge/internal/core/domain"
)

// GenerationService runs the full retrieval-augmented generation pipeline
// for one job application content request.
type GenerationService interface {
	// Generate produces application content for the offer.
	// The pipeline is: analysis, query synthesis, retrieval, reranking,
	// context assembly, writing. Returns domain.ErrNoFragments when the
	// knowledge base yields nothing relevant.
	Generate(ctx context.Context, offer domain.JobOffer, contentType domain.ContentType) (*domain.GenerationResult, error)
}
