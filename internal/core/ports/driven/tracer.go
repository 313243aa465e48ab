package driven

import (
	"context"

	"github.com/jobforge/jobforge/internal/core/domain"
)

// Tracer records generation runs against an observability backend.
//
// Tracing is strictly best-effort: no method returns an error, and
// implementations absorb and log backend failures internally. A broken
// tracing backend must never break a generation run. StartTrace falls
// back to a no-op TraceContext when the backend is unavailable;
// subsequent calls against a no-op trace are discarded.
type Tracer interface {
	// StartTrace opens a trace for one generation run.
	StartTrace(ctx context.Context, name string, input map[string]string) domain.TraceContext

	// StartSpan opens a span for one stage of the run.
	StartSpan(ctx context.Context, trace domain.TraceContext, name string, input map[string]string) domain.Span

	// EndSpan closes a span with its output.
	EndSpan(ctx context.Context, span domain.Span, output map[string]string)

	// EndTrace records the final output of the run on the trace.
	EndTrace(ctx context.Context, trace domain.TraceContext, output map[string]string)

	// RecordError marks the trace as failed, recording the state the
	// run had reached when the error occurred.
	RecordError(ctx context.Context, trace domain.TraceContext, state string, err error)

	// FlushAsync sends buffered events in the background and returns
	// immediately. Used at the end of a request so the caller never
	// waits on the observability backend.
	FlushAsync()

	// Flush sends buffered events and waits for completion.
	Flush(ctx context.Context) error

	// Close flushes remaining events and releases resources.
	Close() error
}
