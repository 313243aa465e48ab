// Package chunker splits knowledge-base documents into retrievable fragments.
//
// Splitting is structure-aware: markdown sections are the unit of work,
// and sections carrying a ruleset marker are kept whole regardless of
// size so writing rules always reach the prompt intact.
package chunker

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jobforge/jobforge/internal/core/domain"
)

// DefaultChunkSize is the default target chunk size in characters.
const DefaultChunkSize = 400

// DefaultChunkOverlap is the default overlap between consecutive sub-chunks.
const DefaultChunkOverlap = 50

// Chunker splits document content into fragments.
type Chunker struct {
	chunkSize int
	overlap   int

	// threshold is the section size above which regular sections are
	// subdivided. Sections at or below it are kept whole to avoid
	// over-fragmenting mid-size content.
	threshold int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between sub-chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithSectionThreshold sets the subdivision threshold for regular sections.
// Zero keeps the default of twice the chunk size.
func WithSectionThreshold(threshold int) Option {
	return func(c *Chunker) {
		if threshold > 0 {
			c.threshold = threshold
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}
	if c.threshold == 0 {
		c.threshold = c.chunkSize * 2
	}

	return c
}

// Chunk splits document content into fragments. Source is recorded on
// every fragment. Content without any markdown structure is treated as
// a single section. Empty content produces no fragments.
func (c *Chunker) Chunk(content, source string) []domain.Fragment {
	sections := splitSections(content)
	if len(sections) == 0 {
		return nil
	}

	fragments := make([]domain.Fragment, 0, len(sections))
	index := 0

	for _, sec := range sections {
		body := cleanText(sec.body)
		if body == "" {
			continue
		}

		if name, ok := sec.rulesetName(); ok {
			fragments = append(fragments, c.newFragment(body, source, sec.path(), index, map[string]string{
				domain.MetaType:        domain.FragmentTypeRuleset,
				domain.MetaRulesetType: name,
			}))
			index++
			continue
		}

		if runeLen(body) > c.threshold {
			for _, sub := range c.split(body) {
				text := sub
				if p := sec.path(); p != "" {
					text = p + "\n\n" + sub
				}
				fragments = append(fragments, c.newFragment(text, source, sec.path(), index, map[string]string{
					domain.MetaType: domain.FragmentTypeProfile,
				}))
				index++
			}
			continue
		}

		fragments = append(fragments, c.newFragment(body, source, sec.path(), index, map[string]string{
			domain.MetaType: domain.FragmentTypeProfile,
		}))
		index++
	}

	return fragments
}

// newFragment assembles a fragment with its ingestion metadata.
func (c *Chunker) newFragment(text, source, section string, index int, meta map[string]string) domain.Fragment {
	meta[domain.MetaChunkIndex] = strconv.Itoa(index)
	if section != "" {
		meta[domain.MetaSection] = section
	}
	return domain.Fragment{
		ID:       uuid.New().String(),
		Text:     text,
		Source:   source,
		Metadata: meta,
	}
}

// section is one markdown section: the header path leading to it and
// its body text.
type section struct {
	headers []string
	body    string
}

// path joins the header hierarchy into a single breadcrumb.
func (s section) path() string {
	return strings.Join(s.headers, " > ")
}

// rulesetName extracts the ruleset marker from the section body or any
// of its headers. The second return is false for regular sections.
func (s section) rulesetName() (string, bool) {
	if name, ok := domain.RulesetMarker(s.body); ok {
		return name, true
	}
	for _, h := range s.headers {
		if name, ok := domain.RulesetMarker(h); ok {
			return name, true
		}
	}
	return "", false
}
