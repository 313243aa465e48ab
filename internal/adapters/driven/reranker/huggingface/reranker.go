// Package huggingface provides a cross-encoder reranker adapter using the
// HuggingFace Inference API.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/jobforge/jobforge/internal/core/domain"
	"github.com/jobforge/jobforge/internal/core/ports/driven"
)

// Ensure Reranker implements the interface.
var _ driven.Reranker = (*Reranker)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api-inference.huggingface.co"
	DefaultModel   = domain.DefaultRerankerModel
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerSecond throttles inference calls.
	DefaultRequestsPerSecond = 2
)

// Config holds configuration for the HuggingFace reranker.
type Config struct {
	// APIKey is the HuggingFace API token (required).
	APIKey string

	// BaseURL is the Inference API base URL
	// (default: https://api-inference.huggingface.co).
	BaseURL string

	// Model is the cross-encoder model to use
	// (default: BAAI/bge-reranker-base).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// RequestsPerSecond throttles inference calls (default: 2).
	RequestsPerSecond float64
}

// Reranker scores retrieval candidates against a query with a hosted
// cross-encoder. One request scores all candidates.
type Reranker struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
	apiKey  string
	model   string
}

// similarityRequest is the sentence-similarity request format: the query
// against every candidate text.
type similarityRequest struct {
	Inputs  similarityInputs `json:"inputs"`
	Options struct {
		WaitForModel bool `json:"wait_for_model"`
	} `json:"options"`
}

type similarityInputs struct {
	SourceSentence string   `json:"source_sentence"`
	Sentences      []string `json:"sentences"`
}

// apiError is the Inference API error format.
type apiError struct {
	Error string `json:"error"`
}

// New creates a new HuggingFace reranker.
func New(cfg Config) (*Reranker, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("huggingface: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	return &Reranker{
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Rerank scores fragments against the query and returns the topK most
// relevant, sorted by rerank score descending. Ties keep their input
// order. An empty candidate list returns empty without a remote call.
func (r *Reranker) Rerank(ctx context.Context, query string, fragments []domain.Fragment, topK int) ([]domain.Fragment, error) {
	if len(fragments) == 0 {
		return nil, nil
	}

	scores, err := r.score(ctx, query, fragments)
	if err != nil {
		return nil, err
	}

	reranked := make([]domain.Fragment, len(fragments))
	for i, f := range fragments {
		reranked[i] = f.WithRerankScore(scores[i])
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return *reranked[i].RerankScore > *reranked[j].RerankScore
	})

	if topK > 0 && len(reranked) > topK {
		reranked = reranked[:topK]
	}
	return reranked, nil
}

// ModelName returns the name of the reranking model being used.
func (r *Reranker) ModelName() string {
	return r.model
}

// score calls the Inference API and returns one relevance score per
// fragment, in input order.
func (r *Reranker) score(ctx context.Context, query string, fragments []domain.Fragment) ([]float64, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("huggingface: rate limiter: %w", err)
	}

	reqBody := similarityRequest{
		Inputs: similarityInputs{
			SourceSentence: query,
			Sentences:      fragmentTexts(fragments),
		},
	}
	reqBody.Options.WaitForModel = true

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := r.baseURL + "/models/" + r.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("huggingface error (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("huggingface error (status %d): %s", resp.StatusCode, string(body))
	}

	var scores []float64
	if err := json.Unmarshal(body, &scores); err != nil {
		return nil, fmt.Errorf("huggingface: decode scores: %w", err)
	}
	if len(scores) != len(fragments) {
		return nil, fmt.Errorf("huggingface: got %d scores for %d fragments", len(scores), len(fragments))
	}
	return scores, nil
}

func fragmentTexts(fragments []domain.Fragment) []string {
	texts := make([]string, len(fragments))
	for i, f := range fragments {
		texts[i] = f.Text
	}
	return texts
}
