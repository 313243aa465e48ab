package driven

import "github.com/jobforge/jobforge/internal/core/domain"

// Chunker splits raw document content into fragments ready for storage.
// Implementations decide the splitting strategy; the contract is that
// ruleset sections survive whole and fragments carry their ingestion
// metadata (type, ruleset type, section, index).
type Chunker interface {
	// Chunk splits content into fragments attributed to source.
	// Empty content yields no fragments.
	Chunk(content, source string) []domain.Fragment
}
