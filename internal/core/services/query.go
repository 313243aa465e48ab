package services

import (
	"strings"

	"github.com/jobforge/jobforge/internal/core/domain"
)

// Query synthesis defaults.
const (
	// DefaultQueryMaxSkills caps the skills carried into the search query.
	DefaultQueryMaxSkills = 5

	// DefaultQueryMaxValues caps the company values carried into the query.
	DefaultQueryMaxValues = 3

	// DefaultQueryMaxSoftSkills caps the soft skills carried into the query.
	DefaultQueryMaxSoftSkills = 3
)

// QueryOptions tunes search query synthesis. The zero value selects
// the defaults returned by DefaultQueryOptions.
type QueryOptions struct {
	// MaxSkills caps the key skills included.
	MaxSkills int

	// MaxValues caps the company values included.
	MaxValues int

	// MaxSoftSkills caps the soft skills included.
	MaxSoftSkills int

	// SuffixByType appends content-type specific retrieval tokens.
	// The suffix pulls the matching ruleset fragments into recall.
	SuffixByType map[domain.ContentType]string

	// AnchorTerms are appended to every query regardless of type,
	// anchoring retrieval in the application-writing domain.
	AnchorTerms string

	// FallbackPosition replaces an empty analysis position so the query
	// never starts hollow.
	FallbackPosition string
}

// DefaultQueryOptions returns the standard synthesis configuration.
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		MaxSkills:     DefaultQueryMaxSkills,
		MaxValues:     DefaultQueryMaxValues,
		MaxSoftSkills: DefaultQueryMaxSoftSkills,
		SuffixByType: map[domain.ContentType]string{
			domain.ContentTypeEmail:    "email writing rules RULESET:EMAIL",
			domain.ContentTypeLinkedIn: "linkedin message rules RULESET:LINKEDIN",
			domain.ContentTypeLetter:   "cover letter writing rules RULESET:LETTER",
		},
		AnchorTerms:      "application writing rules candidate profile RULESET:GLOBAL",
		FallbackPosition: "candidature",
	}
}

// BuildSearchQuery synthesises the retrieval query from an analysis.
// The query is a flat token string: position first, then capped skill,
// sector, value and soft-skill terms, then the content-type suffix and
// the anchor terms. Empty analysis fields are skipped.
//
// The function is deterministic: the same analysis and options always
// produce the same query.
func BuildSearchQuery(analysis domain.JobAnalysis, contentType domain.ContentType, opts QueryOptions) string {
	if opts.MaxSkills == 0 && opts.MaxValues == 0 && opts.MaxSoftSkills == 0 &&
		opts.SuffixByType == nil && opts.AnchorTerms == "" && opts.FallbackPosition == "" {
		opts = DefaultQueryOptions()
	}

	parts := make([]string, 0, 8)
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}

	if strings.TrimSpace(analysis.Position) != "" {
		add(analysis.Position)
	} else {
		add(opts.FallbackPosition)
	}
	for _, skill := range analysis.TopSkills(opts.MaxSkills) {
		add(skill)
	}
	add(analysis.Sector)
	for _, v := range capped(analysis.Values, opts.MaxValues) {
		add(v)
	}
	for _, s := range capped(analysis.SoftSkills, opts.MaxSoftSkills) {
		add(s)
	}
	add(opts.SuffixByType[contentType])
	add(opts.AnchorTerms)

	return strings.Join(parts, " ")
}

// capped returns at most n items, preserving order.
func capped(items []string, n int) []string {
	if n <= 0 || len(items) == 0 {
		return nil
	}
	if len(items) <= n {
		return items
	}
	return items[:n]
}
