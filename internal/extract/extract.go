// Package extract converts knowledge-base document formats into text
// ready for chunking. Each extractor claims a set of file extensions;
// formats with structure (HTML headings, Word heading styles, email
// subjects) are rendered as markdown headers so the section-aware
// chunker keeps their shape.
package extract

import (
	"github.com/jobforge/jobforge/internal/core/ports/driven"
)

// Default returns every built-in extractor.
func Default() []driven.TextExtractor {
	return []driven.TextExtractor{
		NewText(),
		NewHTML(),
		NewDocx(),
		NewEML(),
	}
}
