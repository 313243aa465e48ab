// Package httpapi exposes the generation pipeline over HTTP.
//
// The surface is one generation endpoint plus system probes. Handlers
// translate domain errors into HTTP statuses; request and response
// shapes live in wire structs next to the handlers.
package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jobforge/jobforge/internal/core/domain"
	"github.com/jobforge/jobforge/internal/core/ports/driven"
	"github.com/jobforge/jobforge/internal/core/ports/driving"
)

// apiPrefix is the base path of the versioned API.
const apiPrefix = "/api/v1"

// sourceExcerptLen bounds the source text echoed back in responses.
const sourceExcerptLen = 200

// maxRequestBytes bounds the request body; job postings are text, a
// megabyte is already generous.
const maxRequestBytes = 1 << 20

// Handler serves the generation API.
type Handler struct {
	generator driving.GenerationService
	store     driven.FragmentStore
	prompts   driven.PromptStore
	settings  domain.AppSettings
	log       *slog.Logger
}

// NewHandler creates the API handler. The prompt store may be nil when
// prompts come from the embedded defaults only.
func NewHandler(
	generator driving.GenerationService,
	store driven.FragmentStore,
	prompts driven.PromptStore,
	settings domain.AppSettings,
	log *slog.Logger,
) (*Handler, error) {
	if generator == nil {
		return nil, fmt.Errorf("httpapi: generation service is required")
	}
	if store == nil {
		return nil, fmt.Errorf("httpapi: fragment store is required")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Handler{
		generator: generator,
		store:     store,
		prompts:   prompts,
		settings:  settings,
		log:       log.With("component", "httpapi"),
	}, nil
}

// Routes returns the request mux for the API.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+apiPrefix+"/generate", h.Generate)
	mux.HandleFunc("GET "+apiPrefix+"/health", h.Health)
	mux.HandleFunc("GET "+apiPrefix+"/system/health", h.Health)
	mux.HandleFunc("GET "+apiPrefix+"/system/info", h.Info)
	mux.HandleFunc("GET "+apiPrefix+"/system/ready", h.Ready)
	mux.HandleFunc("GET "+apiPrefix+"/system/live", h.Live)
	mux.HandleFunc("POST "+apiPrefix+"/system/prompts/reload", h.ReloadPrompts)
	return mux
}

// API wire format.
type generateRequest struct {
	// JobOffer is the raw posting text.
	JobOffer string `json:"job_offer"`

	// JobOfferFile is a base64-encoded markdown file, used instead of
	// JobOffer when the client uploads the posting as a file.
	JobOfferFile string `json:"job_offer_file"`

	OutputType string `json:"output_type"`
}

// offerText resolves the posting text from whichever field the client used.
func (r generateRequest) offerText() (string, error) {
	if r.JobOfferFile != "" {
		decoded, err := base64.StdEncoding.DecodeString(r.JobOfferFile)
		if err != nil {
			return "", fmt.Errorf("decoding job_offer_file: %w", err)
		}
		return string(decoded), nil
	}
	return r.JobOffer, nil
}

type sourcePayload struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

type generateResponse struct {
	Output     string          `json:"output"`
	OutputType string          `json:"output_type"`
	Sources    []sourcePayload `json:"sources"`
	TraceID    string          `json:"trace_id"`
}

// Generate runs the full pipeline for one content request.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	text, err := req.offerText()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contentType, err := domain.ParseContentType(req.OutputType)
	if err != nil {
		h.writeError(w, statusFromError(err), err.Error())
		return
	}

	offer, err := domain.NewJobOffer(text)
	if err != nil {
		h.writeError(w, statusFromError(err), err.Error())
		return
	}

	ctx := r.Context()
	if timeout := h.settings.Server.RequestTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := h.generator.Generate(ctx, offer, contentType)
	if err != nil {
		status := statusFromError(err)
		h.log.Error("generation failed",
			"content_type", contentType,
			"status", status,
			"error", err,
		)
		h.writeError(w, status, err.Error())
		return
	}

	h.log.Info("generation completed",
		"content_type", result.ContentType,
		"output_length", len(result.Content),
		"sources", len(result.Sources),
		"trace_id", result.TraceID,
	)
	h.writeJSON(w, http.StatusOK, toGenerateResponse(result))
}

// Health is a quick health probe.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Live is the liveness probe.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready reports whether the fragment store is reachable.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.Count(r.Context()); err != nil {
		h.log.Error("readiness check failed", "error", err)
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Info returns the effective non-secret configuration.
func (h *Handler) Info(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"models": map[string]string{
			"llm":       h.settings.LLM.Model,
			"embedding": h.settings.HuggingFace.EmbeddingModel,
			"reranker":  h.settings.HuggingFace.RerankerModel,
		},
		"storage": map[string]string{
			"collection": h.settings.Store.Collection,
		},
		"retrieval": map[string]any{
			"search_limit":    h.settings.Retrieval.SearchLimit,
			"score_threshold": h.settings.Retrieval.ScoreThreshold,
			"rerank_top_k":    h.settings.Retrieval.RerankTopK,
		},
		"chunking": map[string]int{
			"chunk_size":    h.settings.Ingest.ChunkSize,
			"chunk_overlap": h.settings.Ingest.ChunkOverlap,
		},
	})
}

// ReloadPrompts clears the prompt cache so edited files take effect.
func (h *Handler) ReloadPrompts(w http.ResponseWriter, _ *http.Request) {
	if h.prompts == nil {
		h.writeError(w, http.StatusNotFound, "prompt files not configured")
		return
	}
	h.prompts.Reload()
	h.log.Info("prompt cache cleared")
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

func toGenerateResponse(result *domain.GenerationResult) generateResponse {
	sources := make([]sourcePayload, 0, len(result.Sources))
	for _, f := range result.Sources {
		score := f.Score
		if f.RerankScore != nil {
			score = *f.RerankScore
		}
		sources = append(sources, sourcePayload{
			ID:     f.ID,
			Text:   excerpt(f.Text, sourceExcerptLen),
			Source: f.Source,
			Score:  score,
		})
	}

	return generateResponse{
		Output:     result.Content,
		OutputType: result.ContentType.String(),
		Sources:    sources,
		TraceID:    result.TraceID,
	}
}

// excerpt truncates text to n runes, marking the cut.
func excerpt(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrOfferTooShort),
		errors.Is(err, domain.ErrUnknownContentType),
		errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoFragments):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("failed to write response", "error", err)
	}
}

// writeError emits the {"detail": "..."} error envelope.
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"detail": message})
}
