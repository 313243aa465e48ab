// Package noop provides a tracer that discards every event. It stands
// in for Langfuse when tracing is disabled or no credentials are
// configured, so callers never branch on whether tracing is on.
package noop

import (
	"context"

	"github.com/jobforge/jobforge/internal/core/domain"
	"github.com/jobforge/jobforge/internal/core/ports/driven"
)

// Tracer discards every observability event.
type Tracer struct{}

// Interface compliance check.
var _ driven.Tracer = (*Tracer)(nil)

// NewTracer returns a tracer that discards every event.
func NewTracer() *Tracer {
	return &Tracer{}
}

// StartTrace returns a no-op trace context that keeps the input as
// metadata but records nothing.
func (*Tracer) StartTrace(_ context.Context, _ string, input map[string]string) domain.TraceContext {
	return domain.TraceContext{TraceID: domain.NoopTraceID, Metadata: input}
}

// StartSpan returns a span that discards everything recorded against it.
func (*Tracer) StartSpan(_ context.Context, _ domain.TraceContext, name string, _ map[string]string) domain.Span {
	return domain.Span{TraceID: domain.NoopTraceID, Name: name}
}

// EndSpan does nothing.
func (*Tracer) EndSpan(context.Context, domain.Span, map[string]string) {}

// EndTrace does nothing.
func (*Tracer) EndTrace(context.Context, domain.TraceContext, map[string]string) {}

// RecordError does nothing.
func (*Tracer) RecordError(context.Context, domain.TraceContext, string, error) {}

// FlushAsync does nothing.
func (*Tracer) FlushAsync() {}

// Flush does nothing.
func (*Tracer) Flush(context.Context) error { return nil }

// Close does nothing.
func (*Tracer) Close() error { return nil }
