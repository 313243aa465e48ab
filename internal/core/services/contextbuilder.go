package services

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jobforge/jobforge/internal/core/domain"
)

// DefaultCategoryCap bounds each profile category in the assembled context.
const DefaultCategoryCap = 3

// CategoryRule routes profile fragments into one labelled context section.
// A fragment matches when its text contains any keyword (case-insensitive)
// or its source contains any source pattern.
type CategoryRule struct {
	// Name is the section label emitted into the context.
	Name string `yaml:"name"`

	// Keywords are matched against the fragment text.
	Keywords []string `yaml:"keywords"`

	// SourcePatterns are matched against the fragment source.
	SourcePatterns []string `yaml:"source_patterns"`

	// Cap bounds the fragments in this category. Zero uses the default.
	Cap int `yaml:"cap"`
}

// AssemblerConfig configures context assembly. Category rules are data,
// not code: deployments tune them to their knowledge base via YAML.
type AssemblerConfig struct {
	// Categories are evaluated in order; the first match wins.
	Categories []CategoryRule `yaml:"categories"`

	// SupplementaryName labels the catch-all section for profile
	// fragments no category rule claims.
	SupplementaryName string `yaml:"supplementary_name"`

	// DefaultCap is the per-category bound when a rule has none.
	DefaultCap int `yaml:"default_cap"`

	// ScanTextForMarkers enables the legacy fallback: fragments stored
	// without type metadata are still treated as rulesets when their
	// text carries a ruleset marker.
	ScanTextForMarkers bool `yaml:"scan_text_for_markers"`
}

// DefaultAssemblerConfig returns generic category rules that work for a
// typical knowledge base layout (skills document, CV export, rules file).
func DefaultAssemblerConfig() AssemblerConfig {
	return AssemblerConfig{
		Categories: []CategoryRule{
			{
				Name:           "TECHNICAL SKILLS",
				Keywords:       []string{"skill", "stack", "framework", "language", "tool", "technolog"},
				SourcePatterns: []string{"competence", "skills"},
			},
			{
				Name:           "EXPERIENCE",
				Keywords:       []string{"experience", "project", "mission", "responsibilit", "achievement"},
				SourcePatterns: []string{"cv", "linkedin", "experience"},
			},
		},
		SupplementaryName:  "ADDITIONAL CONTEXT",
		DefaultCap:         DefaultCategoryCap,
		ScanTextForMarkers: true,
	}
}

// ContextBuilder assembles the retrieval context handed to writers.
//
// Fragments arrive in relevance order and leave grouped: the writing
// rules for the requested content type first, then the global rules,
// then capped profile categories, then the signature block. Duplicate
// texts are dropped, keeping the most relevant occurrence.
type ContextBuilder struct {
	cfg AssemblerConfig
	log *slog.Logger
}

// NewContextBuilder creates a context builder.
// A nil logger falls back to slog.Default.
func NewContextBuilder(cfg AssemblerConfig, log *slog.Logger) *ContextBuilder {
	if log == nil {
		log = slog.Default()
	}
	if cfg.DefaultCap <= 0 {
		cfg.DefaultCap = DefaultCategoryCap
	}
	if cfg.SupplementaryName == "" {
		cfg.SupplementaryName = "ADDITIONAL CONTEXT"
	}
	return &ContextBuilder{
		cfg: cfg,
		log: log.With("component", "context_builder"),
	}
}

// Build assembles the context string for the given content type.
// It returns the context and the fragments actually included, in
// emission order. Empty input yields an empty context.
func (b *ContextBuilder) Build(contentType domain.ContentType, fragments []domain.Fragment) (string, []domain.Fragment) {
	if len(fragments) == 0 {
		return "", nil
	}

	var (
		typeRule   []domain.Fragment
		globalRule []domain.Fragment
		signature  []domain.Fragment
		categories = make([][]domain.Fragment, len(b.cfg.Categories))
		extra      []domain.Fragment
	)

	seen := make(map[string]bool, len(fragments))
	for _, f := range fragments {
		key := strings.TrimSpace(f.Text)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		switch rulesetType := b.rulesetType(f); {
		case rulesetType == contentType.RulesetName():
			typeRule = appendCapped(typeRule, f, 1)
		case rulesetType == domain.RulesetGlobal:
			globalRule = appendCapped(globalRule, f, 1)
		case rulesetType == domain.RulesetSignature:
			signature = appendCapped(signature, f, 1)
		case rulesetType != "":
			// Rules for another content type are noise here.
			continue
		default:
			if i, ok := b.matchCategory(f); ok {
				categories[i] = appendCapped(categories[i], f, b.categoryCap(i))
			} else {
				extra = appendCapped(extra, f, b.cfg.DefaultCap)
			}
		}
	}

	if len(typeRule) == 0 {
		b.log.Warn("no writing rules retrieved for content type", "content_type", contentType.String())
	}
	if len(globalRule) == 0 {
		b.log.Warn("no global writing rules retrieved")
	}

	var sections []string
	var used []domain.Fragment
	emit := func(label string, group []domain.Fragment) {
		if len(group) == 0 {
			return
		}
		texts := make([]string, len(group))
		for i, f := range group {
			texts[i] = strings.TrimSpace(f.Text)
		}
		sections = append(sections, fmt.Sprintf("=== %s ===\n%s", label, strings.Join(texts, "\n\n")))
		used = append(used, group...)
	}

	emit(strings.ToUpper(contentType.String())+" WRITING RULES", typeRule)
	emit("GLOBAL WRITING RULES", globalRule)
	for i, rule := range b.cfg.Categories {
		emit(rule.Name, categories[i])
	}
	emit(b.cfg.SupplementaryName, extra)
	emit("SIGNATURE", signature)

	if len(sections) == 0 {
		return "", nil
	}

	b.log.Debug("context assembled",
		"sections", len(sections),
		"fragments_in", len(fragments),
		"fragments_used", len(used))

	return strings.Join(sections, "\n\n"), used
}

// rulesetType resolves the effective ruleset type of a fragment,
// falling back to a text scan for fragments ingested before type
// metadata existed.
func (b *ContextBuilder) rulesetType(f domain.Fragment) string {
	if t := f.RulesetType(); t != "" {
		return t
	}
	if _, hasType := f.Metadata[domain.MetaType]; hasType {
		return ""
	}
	if !b.cfg.ScanTextForMarkers {
		return ""
	}
	if name, ok := domain.RulesetMarker(f.Text); ok {
		return name
	}
	return ""
}

// matchCategory returns the index of the first category rule claiming
// the fragment.
func (b *ContextBuilder) matchCategory(f domain.Fragment) (int, bool) {
	text := strings.ToLower(f.Text)
	source := strings.ToLower(f.Source)
	for i, rule := range b.cfg.Categories {
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
				return i, true
			}
		}
		for _, p := range rule.SourcePatterns {
			if p != "" && strings.Contains(source, strings.ToLower(p)) {
				return i, true
			}
		}
	}
	return 0, false
}

// categoryCap resolves the bound for one category.
func (b *ContextBuilder) categoryCap(i int) int {
	if c := b.cfg.Categories[i].Cap; c > 0 {
		return c
	}
	return b.cfg.DefaultCap
}

// appendCapped appends f unless the group is already at its bound.
func appendCapped(group []domain.Fragment, f domain.Fragment, limit int) []domain.Fragment {
	if len(group) >= limit {
		return group
	}
	return append(group, f)
}
