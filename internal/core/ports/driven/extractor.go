package driven

// TextExtractor converts one document format into text ready for chunking.
// Implementations render structure the format can express (HTML headings,
// Word heading styles, email subjects) as markdown headers, so the
// section-aware chunker keeps the document's shape.
type TextExtractor interface {
	// Extensions returns the lowercased file extensions this extractor
	// claims, dot included (".md", ".docx").
	Extensions() []string

	// Extract converts raw file bytes into chunkable text.
	Extract(data []byte) (string, error)
}
