package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jobforge/jobforge/internal/core/domain"
	"github.com/jobforge/jobforge/internal/core/ports/driven"
	"github.com/jobforge/jobforge/internal/core/ports/driving"
)

// Ensure GenerationService implements the interface.
var _ driving.GenerationService = (*GenerationService)(nil)

// runState tracks how far a generation run progressed. The state is
// attached to trace events and error logs so a failed run names the
// stage it died in.
type runState string

// Generation run states.
const (
	stateCreated   runState = "created"
	stateTraced    runState = "traced"
	stateAnalyzed  runState = "analyzed"
	stateSearched  runState = "searched"
	stateReranked  runState = "reranked"
	stateGenerated runState = "generated"
	stateCompleted runState = "completed"
	stateFailed    runState = "failed"
)

// offerExcerptLen bounds the offer text recorded on traces.
const offerExcerptLen = 300

// GenerationConfig holds the retrieval funnel knobs.
type GenerationConfig struct {
	// SearchLimit is the broad-recall candidate count.
	SearchLimit int

	// ScoreThreshold is the minimum similarity score for candidates.
	ScoreThreshold float64

	// RerankTopK bounds the fragments kept after reranking.
	RerankTopK int

	// Query tunes search query synthesis.
	Query QueryOptions
}

// DefaultGenerationConfig returns the standard funnel configuration:
// broad recall, then precision via reranking.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		SearchLimit:    domain.DefaultSearchLimit,
		ScoreThreshold: domain.DefaultScoreThreshold,
		RerankTopK:     domain.DefaultRerankTopK,
		Query:          DefaultQueryOptions(),
	}
}

// GenerationService orchestrates the retrieval-augmented generation
// pipeline: analysis, query synthesis, retrieval, reranking, context
// assembly, writing. It owns no business rules of its own stages; it
// sequences ports and enforces the error taxonomy.
type GenerationService struct {
	analyzer driven.Analyzer
	store    driven.FragmentStore
	reranker driven.Reranker
	writers  map[domain.ContentType]driven.ContentWriter
	tracer   driven.Tracer
	builder  *ContextBuilder
	cfg      GenerationConfig
	log      *slog.Logger
}

// NewGenerationService creates a generation orchestrator.
// One writer per content type is expected; requests for types without a
// writer fail with domain.ErrUnknownContentType. A nil tracer disables
// tracing; a nil logger falls back to slog.Default.
func NewGenerationService(
	analyzer driven.Analyzer,
	store driven.FragmentStore,
	reranker driven.Reranker,
	writers []driven.ContentWriter,
	builder *ContextBuilder,
	tracer driven.Tracer,
	cfg GenerationConfig,
	log *slog.Logger,
) *GenerationService {
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = domain.DefaultSearchLimit
	}
	if cfg.ScoreThreshold <= 0 {
		cfg.ScoreThreshold = domain.DefaultScoreThreshold
	}
	if cfg.RerankTopK <= 0 {
		cfg.RerankTopK = domain.DefaultRerankTopK
	}
	if log == nil {
		log = slog.Default()
	}
	writerMap := make(map[domain.ContentType]driven.ContentWriter, len(writers))
	for _, w := range writers {
		writerMap[w.ContentType()] = w
	}
	return &GenerationService{
		analyzer: analyzer,
		store:    store,
		reranker: reranker,
		writers:  writerMap,
		tracer:   tracer,
		builder:  builder,
		cfg:      cfg,
		log:      log.With("component", "generation"),
	}
}

// Generate produces application content for the offer.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (s *GenerationService) Generate(
	ctx context.Context, offer domain.JobOffer, contentType domain.ContentType,
) (*domain.GenerationResult, error) {
	state := stateCreated

	// 1. Validate the request before any external call.
	if offer.IsZero() {
		return nil, fmt.Errorf("%w: empty job offer", domain.ErrInvalidInput)
	}
	writer, ok := s.writers[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownContentType, contentType.String())
	}

	// 2. Open the trace. A failing backend degrades to a no-op trace;
	// the run continues either way.
	trace := s.startTrace(ctx, offer, contentType)
	state = stateTraced
	defer s.flushTrace()

	s.log.Info("generation started",
		"content_type", contentType.String(),
		"offer_chars", len(offer.Text()),
		"trace_id", trace.TraceID)

	// 3. Analyse the offer.
	analysis, err := s.analyze(ctx, trace, offer, contentType)
	if err != nil {
		return nil, s.fail(ctx, trace, state, err)
	}
	state = stateAnalyzed

	// 4. Synthesise the retrieval query.
	query := BuildSearchQuery(analysis, contentType, s.cfg.Query)
	s.log.Debug("search query built", "query", query)

	// 5. Broad-recall retrieval.
	fragments, err := s.search(ctx, trace, query)
	if err != nil {
		return nil, s.fail(ctx, trace, state, err)
	}
	state = stateSearched

	// 6. Rerank for precision.
	reranked, err := s.rerank(ctx, trace, query, fragments)
	if err != nil {
		return nil, s.fail(ctx, trace, state, err)
	}
	state = stateReranked

	// 7. Assemble the writer context.
	ragContext, used := s.builder.Build(contentType, reranked)
	if ragContext == "" {
		s.log.Warn("assembled context is empty", "fragments", len(reranked))
	}

	// 8. Write the content.
	content, err := s.write(ctx, trace, writer, offer, analysis, ragContext)
	if err != nil {
		return nil, s.fail(ctx, trace, state, err)
	}
	state = stateGenerated
	s.log.Debug("content written", "state", string(state), "content_chars", len(content))

	// 9. Close out the trace with the run outcome.
	s.endTrace(ctx, trace, map[string]string{
		"state":          string(stateCompleted),
		"content_length": strconv.Itoa(len(content)),
		"fragments_used": strconv.Itoa(len(used)),
	})

	traceID := trace.TraceID
	if trace.IsNoop() {
		traceID = domain.NoopTraceID
	}

	s.log.Info("generation completed",
		"content_type", contentType.String(),
		"content_chars", len(content),
		"sources", len(reranked),
		"trace_id", traceID)

	return &domain.GenerationResult{
		Content:     content,
		ContentType: contentType,
		Sources:     reranked,
		TraceID:     traceID,
	}, nil
}

// analyze runs the analysis stage under a span and enforces the
// analysis error taxonomy.
func (s *GenerationService) analyze(
	ctx context.Context, trace domain.TraceContext, offer domain.JobOffer, contentType domain.ContentType,
) (domain.JobAnalysis, error) {
	span := s.startSpan(ctx, trace, "job_analysis", map[string]string{
		"content_type": contentType.String(),
	})

	analysis, err := s.analyzer.Analyze(ctx, offer, contentType)
	if err != nil {
		if !errors.Is(err, domain.ErrAnalysisFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrAnalysisFailed, err)
		}
		return domain.JobAnalysis{}, fmt.Errorf("analyze offer: %w", err)
	}
	if err := analysis.Validate(); err != nil {
		return domain.JobAnalysis{}, fmt.Errorf("analyze offer: %w", err)
	}

	s.endSpan(ctx, span, map[string]string{
		"position": analysis.Position,
		"company":  analysis.Company,
		"skills":   strconv.Itoa(len(analysis.KeySkills)),
	})
	s.log.Info("analysis completed",
		"position", analysis.Position,
		"company", analysis.Company,
		"skills", len(analysis.KeySkills))

	return analysis, nil
}

// search runs broad-recall retrieval under a span. An empty result is
// the ErrNoFragments business outcome, not an infrastructure error.
func (s *GenerationService) search(
	ctx context.Context, trace domain.TraceContext, query string,
) ([]domain.Fragment, error) {
	span := s.startSpan(ctx, trace, "fragment_search", map[string]string{
		"query": query,
		"limit": strconv.Itoa(s.cfg.SearchLimit),
	})

	fragments, err := s.store.Search(ctx, query, s.cfg.SearchLimit, s.cfg.ScoreThreshold)
	if err != nil {
		return nil, fmt.Errorf("search fragments: %w", err)
	}
	if len(fragments) == 0 {
		return nil, fmt.Errorf("search fragments: %w", domain.ErrNoFragments)
	}

	s.endSpan(ctx, span, map[string]string{
		"results": strconv.Itoa(len(fragments)),
	})
	s.log.Info("fragments retrieved", "count", len(fragments))

	return fragments, nil
}

// rerank runs the precision stage under a span.
func (s *GenerationService) rerank(
	ctx context.Context, trace domain.TraceContext, query string, fragments []domain.Fragment,
) ([]domain.Fragment, error) {
	span := s.startSpan(ctx, trace, "rerank", map[string]string{
		"candidates": strconv.Itoa(len(fragments)),
		"top_k":      strconv.Itoa(s.cfg.RerankTopK),
	})

	reranked, err := s.reranker.Rerank(ctx, query, fragments, s.cfg.RerankTopK)
	if err != nil {
		return nil, fmt.Errorf("rerank fragments: %w", err)
	}

	s.endSpan(ctx, span, map[string]string{
		"results": strconv.Itoa(len(reranked)),
	})
	s.log.Info("rerank completed", "kept", len(reranked), "model", s.reranker.ModelName())

	return reranked, nil
}

// write runs the writing stage under a span and enforces the generation
// error taxonomy: an empty result is a failure.
func (s *GenerationService) write(
	ctx context.Context, trace domain.TraceContext, writer driven.ContentWriter,
	offer domain.JobOffer, analysis domain.JobAnalysis, ragContext string,
) (string, error) {
	span := s.startSpan(ctx, trace, "content_generation", map[string]string{
		"context_length": strconv.Itoa(len(ragContext)),
	})

	content, err := writer.Write(ctx, offer, analysis, ragContext)
	if err != nil {
		if !errors.Is(err, domain.ErrGenerationFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
		}
		return "", fmt.Errorf("write content: %w", err)
	}
	if content == "" {
		return "", fmt.Errorf("write content: %w: writer returned empty output", domain.ErrGenerationFailed)
	}

	s.endSpan(ctx, span, map[string]string{
		"content_length": strconv.Itoa(len(content)),
	})

	return content, nil
}

// fail records the failure on the trace and logs it. The error passes
// through unchanged so callers keep the full taxonomy.
func (s *GenerationService) fail(
	ctx context.Context, trace domain.TraceContext, reached runState, err error,
) error {
	s.log.Error("generation failed",
		"state", string(stateFailed),
		"reached", string(reached),
		"error", err)
	if s.tracer != nil {
		s.tracer.RecordError(ctx, trace, string(reached), err)
	}
	return err
}

// startTrace opens the workflow trace. Tracing is best-effort: with no
// tracer configured the run proceeds with a no-op trace.
func (s *GenerationService) startTrace(
	ctx context.Context, offer domain.JobOffer, contentType domain.ContentType,
) domain.TraceContext {
	if s.tracer == nil {
		return domain.TraceContext{TraceID: domain.NoopTraceID}
	}
	name := fmt.Sprintf("generate_%s_workflow", contentType.String())
	return s.tracer.StartTrace(ctx, name, map[string]string{
		"content_type":  contentType.String(),
		"offer_excerpt": offer.Excerpt(offerExcerptLen),
	})
}

func (s *GenerationService) startSpan(
	ctx context.Context, trace domain.TraceContext, name string, input map[string]string,
) domain.Span {
	if s.tracer == nil {
		return domain.Span{}
	}
	return s.tracer.StartSpan(ctx, trace, name, input)
}

func (s *GenerationService) endSpan(ctx context.Context, span domain.Span, output map[string]string) {
	if s.tracer == nil {
		return
	}
	s.tracer.EndSpan(ctx, span, output)
}

func (s *GenerationService) endTrace(ctx context.Context, trace domain.TraceContext, output map[string]string) {
	if s.tracer == nil {
		return
	}
	s.tracer.EndTrace(ctx, trace, output)
}

// flushTrace pushes buffered observability events in the background.
// Called exactly once per run; the request never waits on the backend.
func (s *GenerationService) flushTrace() {
	if s.tracer == nil {
		return
	}
	s.tracer.FlushAsync()
}
