package driven

import (
	"context"

	"github.com/jobforge/jobforge/internal/core/domain"
)

// ContentWriter generates one kind of application content. The generation
// orchestrator holds one writer per supported content type and dispatches
// by ContentType.
type ContentWriter interface {
	// Write produces the application content from the offer, its analysis,
	// and the assembled knowledge-base context. An empty result is an
	// error at the adapter level, never a valid output.
	Write(ctx context.Context, offer domain.JobOffer, analysis domain.JobAnalysis, ragContext string) (string, error)

	// ContentType returns the content type this writer produces.
	ContentType() domain.ContentType
}
