package driven

import (
	"context"

	"github.com/jobforge/jobforge/internal/core/domain"
)

// Analyzer extracts structured insights from a raw job offer.
//
// Implementations must not fail on imperfect model output: when the
// response cannot be parsed into a full analysis, a minimal analysis
// (summary + default position) is acceptable. Only transport-level
// failures or empty responses should surface as errors.
type Analyzer interface {
	// Analyze extracts a JobAnalysis from the offer, oriented towards
	// the requested content type.
	Analyze(ctx context.Context, offer domain.JobOffer, contentType domain.ContentType) (domain.JobAnalysis, error)
}
