package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// headingLine matches ATX headings from level 1 to 4. Deeper headings
// are treated as body text.
var headingLine = regexp.MustCompile(`^(#{1,4})\s+(.+?)\s*$`)

// multiBlank collapses runs of blank lines left by section extraction.
var multiBlank = regexp.MustCompile(`\n{3,}`)

// splitSections walks the document line by line and cuts it at markdown
// headings, tracking the header hierarchy. Text before the first heading
// becomes a section with no headers.
func splitSections(content string) []section {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	var sections []section
	var stack []string // header text per level, index 0 = level 1
	var body []string
	headers := func() []string {
		out := make([]string, 0, len(stack))
		for _, h := range stack {
			if h != "" {
				out = append(out, h)
			}
		}
		return out
	}
	flush := func(hs []string) {
		text := strings.Join(body, "\n")
		body = body[:0]
		if strings.TrimSpace(text) == "" {
			return
		}
		sections = append(sections, section{headers: hs, body: text})
	}

	current := headers()
	for _, line := range lines {
		m := headingLine.FindStringSubmatch(line)
		if m == nil {
			body = append(body, line)
			continue
		}
		flush(current)
		level := len(m[1])
		if level > len(stack) {
			grown := make([]string, level)
			copy(grown, stack)
			stack = grown
		} else {
			stack = stack[:level]
		}
		stack[level-1] = m[2]
		current = headers()
	}
	flush(current)

	return sections
}

// split subdivides an oversized section body into overlapping chunks,
// preferring paragraph, then line, then sentence boundaries before
// falling back to hard cuts.
func (c *Chunker) split(text string) []string {
	atoms := c.atoms(text, []string{"\n\n", "\n", ". ", " "})
	return c.merge(atoms)
}

// atoms recursively breaks text into pieces no larger than the chunk
// size, trying coarser separators first.
func (c *Chunker) atoms(text string, separators []string) []string {
	if runeLen(text) <= c.chunkSize {
		return []string{text}
	}
	if len(separators) == 0 {
		return c.hardSplit(text)
	}

	parts := splitKeepSep(text, separators[0])
	if len(parts) == 1 {
		return c.atoms(text, separators[1:])
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if runeLen(p) <= c.chunkSize {
			out = append(out, p)
			continue
		}
		out = append(out, c.atoms(p, separators[1:])...)
	}
	return out
}

// merge greedily packs atoms into chunks up to the chunk size. When a
// chunk is flushed, trailing atoms within the overlap budget seed the
// next chunk so consecutive chunks share context.
func (c *Chunker) merge(atoms []string) []string {
	var chunks []string
	var window []string
	total := 0

	emit := func() {
		chunk := strings.TrimSpace(strings.Join(window, ""))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, a := range atoms {
		size := runeLen(a)
		if total+size > c.chunkSize && total > 0 {
			emit()
			for total > c.overlap && len(window) > 0 {
				total -= runeLen(window[0])
				window = window[1:]
			}
		}
		window = append(window, a)
		total += size
	}
	emit()

	return chunks
}

// hardSplit cuts text at fixed rune offsets when no separator applies.
func (c *Chunker) hardSplit(text string) []string {
	runes := []rune(text)
	step := c.chunkSize - c.overlap
	if step <= 0 {
		step = c.chunkSize
	}

	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}

// splitKeepSep splits text on sep, keeping the separator attached to the
// preceding part so recombination loses nothing.
func splitKeepSep(text, sep string) []string {
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i < len(parts)-1 {
			p += sep
		}
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// cleanText normalises whitespace: CRLF to LF, trailing spaces stripped,
// runs of blank lines collapsed to one blank line.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	text = strings.Join(lines, "\n")
	text = multiBlank.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// runeLen measures text length in runes so multibyte content is sized
// consistently with the configured limits.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
