package extract

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/jobforge/jobforge/internal/core/ports/driven"
)

// Ensure HTML implements the interface.
var _ driven.TextExtractor = (*HTML)(nil)

// HTML extracts readable text from HTML documents. Headings become
// markdown headers so section-aware chunking still applies.
type HTML struct{}

// NewHTML creates an HTML extractor.
func NewHTML() *HTML {
	return &HTML{}
}

// Extensions returns the file extensions this extractor claims.
func (e *HTML) Extensions() []string {
	return []string{".html", ".htm"}
}

// Pre-compiled regular expressions for HTML parsing performance.
var (
	scriptTag    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag     = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag  = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag      = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag       = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	htmlComment  = regexp.MustCompile(`(?s)<!--.*?-->`)
	headingTag   = regexp.MustCompile(`(?is)<h([1-6])[^>]*>(.*?)</h[1-6]>`)
	paraBreakTag = regexp.MustCompile(`(?i)</(p|div|blockquote|pre|table|section|article|ul|ol)>`)
	lineBreakTag = regexp.MustCompile(`(?i)<(br|hr)\s*/?>|</(li|tr)>`)
	anyTag       = regexp.MustCompile(`<[^>]+>`)
	spaceRun     = regexp.MustCompile(`[ \t]+`)
	blankRun     = regexp.MustCompile(`\n{3,}`)
)

// Extract strips tags and returns the readable text. Block elements
// separate paragraphs; h1-h6 turn into #-prefixed header lines.
func (e *HTML) Extract(data []byte) (string, error) {
	content := string(data)

	// Drop invisible content entirely.
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = noscriptTag.ReplaceAllString(content, "")
	content = headTag.ReplaceAllString(content, "")
	content = svgTag.ReplaceAllString(content, "")
	content = htmlComment.ReplaceAllString(content, "")

	// Headings become markdown headers; entities decode later with the
	// rest of the text.
	content = headingTag.ReplaceAllStringFunc(content, func(m string) string {
		sub := headingTag.FindStringSubmatch(m)
		level, _ := strconv.Atoi(sub[1])
		text := strings.TrimSpace(anyTag.ReplaceAllString(sub[2], ""))
		if text == "" {
			return "\n\n"
		}
		return "\n\n" + strings.Repeat("#", level) + " " + text + "\n\n"
	})

	content = paraBreakTag.ReplaceAllString(content, "\n\n")
	content = lineBreakTag.ReplaceAllString(content, "\n")
	content = anyTag.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = spaceRun.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	content = strings.Join(lines, "\n")
	content = blankRun.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content), nil
}
