package domain

// NoopTraceID marks a run that produced no real observability trace,
// either because tracing is disabled or because the backend was
// unavailable when the run started.
const NoopTraceID = "noop"

// TraceContext correlates one generation run across observability events.
// A no-op trace discards spans and outputs recorded against it, so a
// failing tracing backend never blocks a run.
type TraceContext struct {
	// TraceID is the backend-assigned trace identifier,
	// or NoopTraceID when no trace exists.
	TraceID string

	// Metadata carries the trace input recorded at creation.
	Metadata map[string]string
}

// IsNoop reports whether events against this trace are discarded.
func (t TraceContext) IsNoop() bool {
	return t.TraceID == "" || t.TraceID == NoopTraceID
}

// Span is one observed stage inside a trace.
type Span struct {
	// SpanID is the backend-assigned span identifier.
	SpanID string

	// TraceID links back to the owning trace.
	TraceID string

	// Name is the stage name (e.g. "job_analysis", "rerank").
	Name string
}

// GenerationResult is the outcome of a completed generation run.
type GenerationResult struct {
	// Content is the generated application text.
	Content string

	// ContentType is the kind of content generated.
	ContentType ContentType

	// Sources are the reranked fragments the content was grounded on,
	// in relevance order.
	Sources []Fragment

	// TraceID correlates the run with its observability trace.
	// NoopTraceID when tracing was disabled or unavailable.
	TraceID string
}
