package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobforge/jobforge/internal/adapters/driven/vectorstore/memory"
	"github.com/jobforge/jobforge/internal/chunker"
	"github.com/jobforge/jobforge/internal/core/domain"
	"github.com/jobforge/jobforge/internal/core/ports/driven"
	"github.com/jobforge/jobforge/internal/extract"
)

// writeKnowledgeBase lays out a small knowledge base on disk: writing
// rules, a profile document and an off-topic distractor.
func writeKnowledgeBase(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	rules := `# Writing Rules

## Email

[RULESET: EMAIL]
- Application writing rules for email: three short paragraphs.
- Open with the role and one proof point.

## Global

[RULESET: GLOBAL]
- Global writing rules for every application: never invent candidate facts.
`
	profile := `# Profile

Profile of a senior backend engineer: ten years of Go and PostgreSQL on payment platforms.
`
	notes := `# Groceries

Buy bread, milk and oats before the weekend.
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.md"), []byte(rules), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profile.md"), []byte(profile), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte(notes), 0600))
	return dir
}

// TestPipeline_IngestThenGenerate drives ingestion and generation
// against the in-memory fragment store, so chunking, retrieval scoring
// and context assembly run for real instead of through port mocks.
func TestPipeline_IngestThenGenerate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewFragmentStore()

	ingest := NewIngestService(store, chunker.New(), nil, extract.Default(), nil)
	reports, err := ingest.IngestDir(ctx, writeKnowledgeBase(t), domain.IngestOptions{})
	require.NoError(t, err)
	require.Len(t, reports, 3)
	for _, r := range reports {
		assert.Equal(t, domain.IngestActionIngested, r.Action, r.Source)
	}

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count, "two rulesets, one profile, one distractor")

	writer := &mockWriter{contentType: domain.ContentTypeEmail, content: "Subject: Senior Backend Engineer\n\nHello,"}
	svc := NewGenerationService(
		&mockAnalyzer{analysis: testAnalysis()},
		store,
		&mockReranker{},
		[]driven.ContentWriter{writer},
		NewContextBuilder(DefaultAssemblerConfig(), nil),
		nil,
		DefaultGenerationConfig(),
		nil,
	)

	result, err := svc.Generate(ctx, testOffer(t), domain.ContentTypeEmail)
	require.NoError(t, err)

	require.Len(t, result.Sources, 3, "the distractor never clears the score threshold")
	for _, f := range result.Sources {
		assert.NotEqual(t, "notes.md", f.Source)
	}

	assert.Contains(t, writer.lastContext, "=== EMAIL WRITING RULES ===")
	assert.Contains(t, writer.lastContext, "=== GLOBAL WRITING RULES ===")
	assert.Contains(t, writer.lastContext, "ten years of Go and PostgreSQL")
	assert.NotContains(t, writer.lastContext, "bread")
}

// TestPipeline_RecreateDropsOldFragments checks that a recreate run
// leaves only the fragments of the new corpus behind.
func TestPipeline_RecreateDropsOldFragments(t *testing.T) {
	ctx := context.Background()
	store := memory.NewFragmentStore()

	ingest := NewIngestService(store, chunker.New(), nil, extract.Default(), nil)

	dir := writeKnowledgeBase(t)
	_, err := ingest.IngestDir(ctx, dir, domain.IngestOptions{})
	require.NoError(t, err)

	smaller := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(smaller, "only.md"), []byte("# Only\n\nOne document left."), 0600))

	_, err = ingest.IngestDir(ctx, smaller, domain.IngestOptions{Recreate: true})
	require.NoError(t, err)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
