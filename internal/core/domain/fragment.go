package domain

import (
	"regexp"
	"strings"
)

// Fragment metadata keys. Adapters persist these alongside the text;
// the context assembler reads them back to categorise retrieval hits.
const (
	// MetaType distinguishes profile content from writing rules.
	MetaType = "type"

	// MetaRulesetType names the ruleset a rule fragment belongs to
	// (e.g. "global", "email", "letter", "linkedin", "signature").
	MetaRulesetType = "ruleset_type"

	// MetaSection is the markdown header path the fragment came from.
	MetaSection = "section"

	// MetaChunkIndex is the ordinal position within the source document.
	MetaChunkIndex = "chunk_index"
)

// Fragment type values stored under MetaType.
const (
	// FragmentTypeProfile marks candidate profile content (CV, experience).
	FragmentTypeProfile = "profile"

	// FragmentTypeRuleset marks writing-rule content. Ruleset fragments are
	// kept whole at ingestion and injected verbatim into prompts.
	FragmentTypeRuleset = "ruleset"
)

// RulesetGlobal is the ruleset type applying to every content type.
const RulesetGlobal = "global"

// RulesetSignature is the ruleset type carrying contact/signature details.
const RulesetSignature = "signature"

// rulesetMarkerPattern matches the literal ruleset marker authors put in
// knowledge-base documents, e.g. "[RULESET: EMAIL]".
var rulesetMarkerPattern = regexp.MustCompile(`\[RULESET:\s*([^\]]+)\]`)

// RulesetMarker extracts the ruleset name from a marker in text.
// The name is normalised to lower case. The second return is false
// when no marker is present.
func RulesetMarker(text string) (string, bool) {
	m := rulesetMarkerPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(m[1])), true
}

// Fragment is a retrievable unit of knowledge-base content: a chunk of
// the candidate's profile or a complete ruleset section.
type Fragment struct {
	// ID is the unique identifier (UUID assigned at ingestion).
	ID string

	// Text is the fragment content.
	Text string

	// Source is the document the fragment came from (file name).
	Source string

	// Score is the vector similarity score from retrieval.
	// Zero for fragments that never went through a search.
	Score float64

	// RerankScore is the cross-encoder relevance score.
	// Nil until the fragment has been reranked.
	RerankScore *float64

	// Metadata carries the ingestion metadata (MetaType, MetaRulesetType,
	// MetaSection, MetaChunkIndex).
	Metadata map[string]string
}

// Type returns the fragment type, defaulting to profile when the
// metadata is absent.
func (f Fragment) Type() string {
	if t, ok := f.Metadata[MetaType]; ok && t != "" {
		return t
	}
	return FragmentTypeProfile
}

// IsRuleset reports whether the fragment carries writing rules.
func (f Fragment) IsRuleset() bool {
	return f.Type() == FragmentTypeRuleset
}

// RulesetType returns the normalised ruleset type, or "" for
// non-ruleset fragments.
func (f Fragment) RulesetType() string {
	if !f.IsRuleset() {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(f.Metadata[MetaRulesetType]))
}

// Section returns the markdown header path the fragment came from.
func (f Fragment) Section() string {
	return f.Metadata[MetaSection]
}

// WithRerankScore returns a copy of the fragment with the rerank score set.
func (f Fragment) WithRerankScore(score float64) Fragment {
	f.RerankScore = &score
	return f
}
