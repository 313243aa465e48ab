// Package qdrant provides a fragment store adapter over the Qdrant REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jobforge/jobforge/internal/core/domain"
	"github.com/jobforge/jobforge/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.FragmentStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:6333"
	DefaultCollection = domain.DefaultCollection
	DefaultTimeout    = 30 * time.Second

	// embedBatchSize bounds the texts sent per embedding request.
	embedBatchSize = 32

	// maxConcurrentBatches bounds parallel embedding requests during upsert.
	maxConcurrentBatches = 4
)

// Reserved payload keys. Everything else in a point payload is fragment
// metadata.
const (
	payloadText   = "text"
	payloadSource = "source"
)

// Config holds configuration for the Qdrant fragment store.
type Config struct {
	// BaseURL is the Qdrant HTTP endpoint (default: http://localhost:6333).
	BaseURL string

	// APIKey authenticates requests. Empty for unsecured local instances.
	APIKey string

	// Collection is the collection holding the knowledge base.
	Collection string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration
}

// Store is a fragment store backed by a Qdrant collection. Vectors are
// produced by the configured embedding service; the collection uses
// cosine distance with the embedder's dimensionality.
type Store struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	collection string
	embedder   driven.EmbeddingService
}

// --- Qdrant wire format ---

type vectorParams struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"`
}

type createCollectionRequest struct {
	Vectors vectorParams `json:"vectors"`
}

type point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

type upsertRequest struct {
	Points []point `json:"points"`
}

type searchRequest struct {
	Vector         []float32 `json:"vector"`
	Limit          int       `json:"limit"`
	WithPayload    bool      `json:"with_payload"`
	ScoreThreshold float64   `json:"score_threshold,omitempty"`
}

type searchResponse struct {
	Result []struct {
		ID      any            `json:"id"`
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

type existsResponse struct {
	Result struct {
		Exists bool `json:"exists"`
	} `json:"result"`
}

type countResponse struct {
	Result struct {
		Count int `json:"count"`
	} `json:"result"`
}

// New creates a Qdrant-backed fragment store.
func New(cfg Config, embedder driven.EmbeddingService) (*Store, error) {
	if embedder == nil {
		return nil, fmt.Errorf("qdrant: embedding service is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Store{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		embedder:   embedder,
	}, nil
}

// EnsureReady creates the collection if it does not exist. With recreate
// set an existing collection is dropped first, discarding all fragments.
func (s *Store) EnsureReady(ctx context.Context, recreate bool) error {
	exists, err := s.collectionExists(ctx)
	if err != nil {
		return err
	}

	if recreate && exists {
		if err := s.do(ctx, http.MethodDelete, s.collectionPath(""), nil, nil); err != nil {
			return fmt.Errorf("delete collection %q: %w", s.collection, err)
		}
		exists = false
	}

	if exists {
		return nil
	}

	req := createCollectionRequest{
		Vectors: vectorParams{Size: s.embedder.Dimensions(), Distance: "Cosine"},
	}
	if err := s.do(ctx, http.MethodPut, s.collectionPath(""), req, nil); err != nil {
		return fmt.Errorf("create collection %q: %w", s.collection, err)
	}
	return nil
}

// Search embeds the query and returns fragments above the score threshold,
// most similar first.
func (s *Store) Search(ctx context.Context, query string, limit int, threshold float64) ([]domain.Fragment, error) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	req := searchRequest{
		Vector:         vector,
		Limit:          limit,
		WithPayload:    true,
		ScoreThreshold: threshold,
	}
	var resp searchResponse
	if err := s.do(ctx, http.MethodPost, s.collectionPath("/points/search"), req, &resp); err != nil {
		return nil, fmt.Errorf("search collection %q: %w", s.collection, err)
	}

	fragments := make([]domain.Fragment, 0, len(resp.Result))
	for _, hit := range resp.Result {
		fragments = append(fragments, fragmentFromPayload(pointID(hit.ID), hit.Score, hit.Payload))
	}
	return fragments, nil
}

// Upsert embeds and writes fragments, replacing points with the same ID.
// Embedding runs in bounded parallel batches.
func (s *Store) Upsert(ctx context.Context, fragments []domain.Fragment) error {
	if len(fragments) == 0 {
		return nil
	}

	vectors := make([][]float32, len(fragments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentBatches)
	for start := 0; start < len(fragments); start += embedBatchSize {
		end := min(start+embedBatchSize, len(fragments))
		g.Go(func() error {
			texts := make([]string, end-start)
			for i := start; i < end; i++ {
				texts[i-start] = fragments[i].Text
			}
			batch, err := s.embedder.EmbedBatch(gctx, texts)
			if err != nil {
				return fmt.Errorf("embed fragments [%d:%d]: %w", start, end, err)
			}
			if len(batch) != end-start {
				return fmt.Errorf("embed fragments [%d:%d]: got %d vectors", start, end, len(batch))
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	points := make([]point, len(fragments))
	for i, f := range fragments {
		payload := map[string]any{
			payloadText:   f.Text,
			payloadSource: f.Source,
		}
		for k, v := range f.Metadata {
			payload[k] = v
		}
		points[i] = point{ID: f.ID, Vector: vectors[i], Payload: payload}
	}

	req := upsertRequest{Points: points}
	if err := s.do(ctx, http.MethodPut, s.collectionPath("/points?wait=true"), req, nil); err != nil {
		return fmt.Errorf("upsert %d points: %w", len(points), err)
	}
	return nil
}

// Count returns the exact number of stored fragments.
func (s *Store) Count(ctx context.Context) (int, error) {
	req := map[string]any{"exact": true}
	var resp countResponse
	if err := s.do(ctx, http.MethodPost, s.collectionPath("/points/count"), req, &resp); err != nil {
		return 0, fmt.Errorf("count collection %q: %w", s.collection, err)
	}
	return resp.Result.Count, nil
}

// Close releases resources. The embedding service is owned by the
// composition root and is not closed here.
func (s *Store) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *Store) collectionExists(ctx context.Context) (bool, error) {
	var resp existsResponse
	if err := s.do(ctx, http.MethodGet, s.collectionPath("/exists"), nil, &resp); err != nil {
		return false, fmt.Errorf("check collection %q: %w", s.collection, err)
	}
	return resp.Result.Exists, nil
}

func (s *Store) collectionPath(suffix string) string {
	return "/collections/" + s.collection + suffix
}

// do sends one JSON request to Qdrant and decodes the response into out.
// Transport failures and non-2xx statuses surface as ErrStoreUnavailable.
func (s *Store) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("qdrant: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("qdrant: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant: %w: %w", domain.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("qdrant: %w: %s %s returned %d: %s",
			domain.ErrStoreUnavailable, method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("qdrant: decode response: %w", err)
		}
	}
	return nil
}

// fragmentFromPayload rebuilds a fragment from a search hit. Payload keys
// beyond text and source become fragment metadata.
func fragmentFromPayload(id string, score float64, payload map[string]any) domain.Fragment {
	f := domain.Fragment{ID: id, Score: score}
	if v, ok := payload[payloadText].(string); ok {
		f.Text = v
	}
	if v, ok := payload[payloadSource].(string); ok {
		f.Source = v
	}
	for k, v := range payload {
		if k == payloadText || k == payloadSource {
			continue
		}
		if f.Metadata == nil {
			f.Metadata = make(map[string]string)
		}
		f.Metadata[k] = fmt.Sprint(v)
	}
	return f
}

// pointID renders a Qdrant point ID, which the API returns as either a
// string or a number.
func pointID(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprint(v)
	}
}
