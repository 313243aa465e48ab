package extract

import (
	"bytes"
	"strings"

	"github.com/jobforge/jobforge/internal/core/ports/driven"
)

// Ensure Text implements the interface.
var _ driven.TextExtractor = (*Text)(nil)

// Text handles markdown and plain-text documents. Content passes through
// untouched apart from newline normalisation; markdown keeps its
// structure so the chunker can split on headers.
type Text struct{}

// NewText creates a markdown and plain-text extractor.
func NewText() *Text {
	return &Text{}
}

// Extensions returns the file extensions this extractor claims.
func (e *Text) Extensions() []string {
	return []string{".md", ".markdown", ".txt"}
}

// Extract returns the document text with a leading BOM removed and
// Windows line endings normalised.
func (e *Text) Extract(data []byte) (string, error) {
	text := string(bytes.TrimPrefix(data, []byte("\uFEFF")))
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return text, nil
}
