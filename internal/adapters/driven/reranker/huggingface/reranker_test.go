package huggingface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobforge/jobforge/internal/core/domain"
)

func newTestReranker(t *testing.T, handler http.HandlerFunc) *Reranker {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	r, err := New(Config{
		APIKey:            "hf-test-key",
		BaseURL:           srv.URL,
		RequestsPerSecond: 1000,
	})
	require.NoError(t, err)
	return r
}

func candidates() []domain.Fragment {
	return []domain.Fragment{
		{ID: "f1", Text: "Enjoys hiking.", Score: 0.8},
		{ID: "f2", Text: "Go engineer with Kubernetes experience.", Score: 0.7},
		{ID: "f3", Text: "Email writing rules.", Score: 0.6},
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestReranker_Rerank(t *testing.T) {
	var gotReq similarityRequest
	r := newTestReranker(t, func(w http.ResponseWriter, req *http.Request) {
		assert.NoError(t, json.NewDecoder(req.Body).Decode(&gotReq))
		assert.NoError(t, json.NewEncoder(w).Encode([]float64{0.1, 0.9, 0.5}))
	})

	reranked, err := r.Rerank(context.Background(), "backend engineer", candidates(), 10)

	require.NoError(t, err)
	require.Len(t, reranked, 3)

	assert.Equal(t, "backend engineer", gotReq.Inputs.SourceSentence)
	assert.Equal(t, []string{
		"Enjoys hiking.",
		"Go engineer with Kubernetes experience.",
		"Email writing rules.",
	}, gotReq.Inputs.Sentences)
	assert.True(t, gotReq.Options.WaitForModel)

	assert.Equal(t, []string{"f2", "f3", "f1"}, ids(reranked), "sorted by rerank score descending")
	require.NotNil(t, reranked[0].RerankScore)
	assert.InDelta(t, 0.9, *reranked[0].RerankScore, 1e-9)
	assert.InDelta(t, 0.7, reranked[0].Score, 1e-9, "the original similarity score is preserved")
}

func TestReranker_Rerank_TopK(t *testing.T) {
	r := newTestReranker(t, func(w http.ResponseWriter, _ *http.Request) {
		assert.NoError(t, json.NewEncoder(w).Encode([]float64{0.1, 0.9, 0.5}))
	})

	reranked, err := r.Rerank(context.Background(), "query", candidates(), 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"f2", "f3"}, ids(reranked))
}

func TestReranker_Rerank_StableTies(t *testing.T) {
	r := newTestReranker(t, func(w http.ResponseWriter, _ *http.Request) {
		assert.NoError(t, json.NewEncoder(w).Encode([]float64{0.5, 0.5, 0.5}))
	})

	reranked, err := r.Rerank(context.Background(), "query", candidates(), 10)

	require.NoError(t, err)
	assert.Equal(t, []string{"f1", "f2", "f3"}, ids(reranked), "equal scores keep input order")
}

func TestReranker_Rerank_EmptyInput(t *testing.T) {
	called := false
	r := newTestReranker(t, func(http.ResponseWriter, *http.Request) {
		called = true
	})

	reranked, err := r.Rerank(context.Background(), "query", nil, 10)

	require.NoError(t, err)
	assert.Empty(t, reranked)
	assert.False(t, called, "no remote call for an empty candidate list")
}

func TestReranker_Rerank_APIError(t *testing.T) {
	r := newTestReranker(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		assert.NoError(t, json.NewEncoder(w).Encode(apiError{Error: "rate limit reached"}))
	})

	_, err := r.Rerank(context.Background(), "query", candidates(), 10)

	require.ErrorContains(t, err, "rate limit reached")
}

func TestReranker_Rerank_ScoreCountMismatch(t *testing.T) {
	r := newTestReranker(t, func(w http.ResponseWriter, _ *http.Request) {
		assert.NoError(t, json.NewEncoder(w).Encode([]float64{0.5}))
	})

	_, err := r.Rerank(context.Background(), "query", candidates(), 10)

	require.ErrorContains(t, err, "got 1 scores for 3 fragments")
}

func TestReranker_Rerank_DoesNotMutateInput(t *testing.T) {
	r := newTestReranker(t, func(w http.ResponseWriter, _ *http.Request) {
		assert.NoError(t, json.NewEncoder(w).Encode([]float64{0.1, 0.9, 0.5}))
	})
	input := candidates()

	_, err := r.Rerank(context.Background(), "query", input, 10)

	require.NoError(t, err)
	assert.Equal(t, "f1", input[0].ID)
	assert.Nil(t, input[0].RerankScore, "candidates are copied, not annotated in place")
}

func ids(fragments []domain.Fragment) []string {
	out := make([]string, len(fragments))
	for i, f := range fragments {
		out[i] = f.ID
	}
	return out
}
