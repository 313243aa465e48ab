// Package memory provides an in-memory fragment store for tests and
// local development without a running Qdrant.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/jobforge/jobforge/internal/core/domain"
	"github.com/jobforge/jobforge/internal/core/ports/driven"
)

// Ensure FragmentStore implements the interface.
var _ driven.FragmentStore = (*FragmentStore)(nil)

// FragmentStore is an in-memory implementation of driven.FragmentStore.
// Search scores fragments by token overlap with the query, a cheap stand-in
// for semantic similarity that keeps retrieval behaviour observable in tests.
type FragmentStore struct {
	mu        sync.RWMutex
	fragments map[string]domain.Fragment
	order     []string
}

// NewFragmentStore creates a new in-memory fragment store.
func NewFragmentStore() *FragmentStore {
	return &FragmentStore{
		fragments: make(map[string]domain.Fragment),
	}
}

// EnsureReady prepares the store. With recreate set all fragments are
// discarded.
func (s *FragmentStore) EnsureReady(_ context.Context, recreate bool) error {
	if !recreate {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fragments = make(map[string]domain.Fragment)
	s.order = nil
	return nil
}

// Upsert stores fragments, replacing any with the same ID.
func (s *FragmentStore) Upsert(_ context.Context, fragments []domain.Fragment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range fragments {
		if _, exists := s.fragments[f.ID]; !exists {
			s.order = append(s.order, f.ID)
		}
		s.fragments[f.ID] = f
	}
	return nil
}

// Search returns up to limit fragments whose token overlap with the query
// reaches threshold, best first. Ties keep insertion order.
func (s *FragmentStore) Search(_ context.Context, query string, limit int, threshold float64) ([]domain.Fragment, error) {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 || limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var scored []domain.Fragment
	for _, id := range s.order {
		f := s.fragments[id]
		score := overlapScore(queryTokens, tokenize(f.Text))
		if score <= 0 || score < threshold {
			continue
		}
		f.Score = score
		scored = append(scored, f)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// Count returns the number of stored fragments.
func (s *FragmentStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fragments), nil
}

// Close releases resources.
func (s *FragmentStore) Close() error {
	return nil
}

// tokenize lowercases text and splits it into unique word tokens.
func tokenize(text string) map[string]bool {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make(map[string]bool, len(words))
	for _, w := range words {
		tokens[w] = true
	}
	return tokens
}

// overlapScore is the share of query tokens present in the fragment.
func overlapScore(query, fragment map[string]bool) float64 {
	if len(query) == 0 {
		return 0
	}
	matches := 0
	for token := range query {
		if fragment[token] {
			matches++
		}
	}
	return float64(matches) / float64(len(query))
}
