package langfuse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobforge/jobforge/internal/core/domain"
)

type capturedEvent struct {
	ID        string         `json:"id"`
	Timestamp string         `json:"timestamp"`
	Type      string         `json:"type"`
	Body      map[string]any `json:"body"`
}

type capturedRequest struct {
	Batch []capturedEvent `json:"batch"`

	user string
	pass string
}

// fakeLangfuse records ingestion requests and answers like the real
// backend (207 Multi-Status on success).
type fakeLangfuse struct {
	mu       sync.Mutex
	requests []capturedRequest
	status   int
}

func (f *fakeLangfuse) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/public/ingestion", func(w http.ResponseWriter, r *http.Request) {
		var req capturedRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		req.user, req.pass, _ = r.BasicAuth()

		f.mu.Lock()
		f.requests = append(f.requests, req)
		status := f.status
		f.mu.Unlock()

		if status == 0 {
			status = http.StatusMultiStatus
		}
		w.WriteHeader(status)
	})
	return mux
}

func (f *fakeLangfuse) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeLangfuse) request(t *testing.T, i int) capturedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.Greater(t, len(f.requests), i)
	return f.requests[i]
}

func newTestTracer(t *testing.T, baseURL string) *Tracer {
	t.Helper()
	tracer, err := NewTracer(Config{
		BaseURL:   baseURL,
		PublicKey: "pk-lf-test",
		SecretKey: "sk-lf-test",
	}, nil)
	require.NoError(t, err)
	return tracer
}

func bodyField(t *testing.T, e capturedEvent, key string) string {
	t.Helper()
	v, ok := e.Body[key].(string)
	require.True(t, ok, "body field %q missing or not a string", key)
	return v
}

func TestNewTracer_RequiresKeys(t *testing.T) {
	_, err := NewTracer(Config{PublicKey: "pk"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keys are required")

	_, err = NewTracer(Config{SecretKey: "sk"}, nil)
	require.Error(t, err)
}

func TestTracer_RecordsFullRun(t *testing.T) {
	backend := &fakeLangfuse{}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	tracer := newTestTracer(t, srv.URL)
	ctx := context.Background()

	trace := tracer.StartTrace(ctx, "generate_email_workflow", map[string]string{
		"content_type":  "email",
		"offer_excerpt": "Senior Go engineer",
	})
	require.False(t, trace.IsNoop())
	assert.Equal(t, "email", trace.Metadata["content_type"])

	span := tracer.StartSpan(ctx, trace, "job_analysis", map[string]string{"offer_length": "320"})
	assert.Equal(t, trace.TraceID, span.TraceID)
	assert.NotEmpty(t, span.SpanID)

	tracer.EndSpan(ctx, span, map[string]string{"position": "Senior Go Engineer"})
	tracer.EndTrace(ctx, trace, map[string]string{"content_length": "512"})

	require.NoError(t, tracer.Flush(ctx))

	require.Equal(t, 1, backend.requestCount())
	req := backend.request(t, 0)
	assert.Equal(t, "pk-lf-test", req.user)
	assert.Equal(t, "sk-lf-test", req.pass)
	require.Len(t, req.Batch, 4)

	create := req.Batch[0]
	assert.Equal(t, "trace-create", create.Type)
	assert.NotEmpty(t, create.ID)
	assert.NotEmpty(t, create.Timestamp)
	assert.Equal(t, trace.TraceID, bodyField(t, create, "id"))
	assert.Equal(t, "generate_email_workflow", bodyField(t, create, "name"))
	input, ok := create.Body["input"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "email", input["content_type"])

	spanCreate := req.Batch[1]
	assert.Equal(t, "span-create", spanCreate.Type)
	assert.Equal(t, span.SpanID, bodyField(t, spanCreate, "id"))
	assert.Equal(t, trace.TraceID, bodyField(t, spanCreate, "traceId"))
	assert.Equal(t, "job_analysis", bodyField(t, spanCreate, "name"))
	assert.NotEmpty(t, bodyField(t, spanCreate, "startTime"))

	spanUpdate := req.Batch[2]
	assert.Equal(t, "span-update", spanUpdate.Type)
	assert.Equal(t, span.SpanID, bodyField(t, spanUpdate, "id"))
	assert.NotEmpty(t, bodyField(t, spanUpdate, "endTime"))
	output, ok := spanUpdate.Body["output"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Senior Go Engineer", output["position"])

	closing := req.Batch[3]
	assert.Equal(t, "trace-create", closing.Type)
	assert.Equal(t, trace.TraceID, bodyField(t, closing, "id"))
	assert.NotContains(t, closing.Body, "name")
}

func TestTracer_EventIDsAreUnique(t *testing.T) {
	backend := &fakeLangfuse{}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	tracer := newTestTracer(t, srv.URL)
	ctx := context.Background()

	trace := tracer.StartTrace(ctx, "generate_letter_workflow", nil)
	tracer.StartSpan(ctx, trace, "fragment_search", nil)
	tracer.EndTrace(ctx, trace, nil)
	require.NoError(t, tracer.Flush(ctx))

	req := backend.request(t, 0)
	seen := make(map[string]bool)
	for _, e := range req.Batch {
		assert.False(t, seen[e.ID], "duplicate event id %s", e.ID)
		seen[e.ID] = true
	}
}

func TestTracer_RecordError(t *testing.T) {
	backend := &fakeLangfuse{}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	tracer := newTestTracer(t, srv.URL)
	ctx := context.Background()

	trace := tracer.StartTrace(ctx, "generate_email_workflow", nil)
	tracer.RecordError(ctx, trace, "analyzed", domain.ErrNoFragments)
	require.NoError(t, tracer.Flush(ctx))

	req := backend.request(t, 0)
	require.Len(t, req.Batch, 3)

	errEvent := req.Batch[1]
	assert.Equal(t, "event-create", errEvent.Type)
	assert.Equal(t, trace.TraceID, bodyField(t, errEvent, "traceId"))
	assert.Equal(t, "error", bodyField(t, errEvent, "name"))
	assert.Equal(t, "ERROR", bodyField(t, errEvent, "level"))
	assert.Contains(t, bodyField(t, errEvent, "statusMessage"), "no relevant fragments")
	meta, ok := errEvent.Body["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "analyzed", meta["state"])

	upsert := req.Batch[2]
	assert.Equal(t, "trace-create", upsert.Type)
	output, ok := upsert.Body["output"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "analyzed", output["state"])
}

func TestTracer_RecordErrorIgnoresNilError(t *testing.T) {
	backend := &fakeLangfuse{}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	tracer := newTestTracer(t, srv.URL)

	trace := tracer.StartTrace(context.Background(), "generate_email_workflow", nil)
	tracer.RecordError(context.Background(), trace, "analyzed", nil)
	require.NoError(t, tracer.Flush(context.Background()))

	req := backend.request(t, 0)
	assert.Len(t, req.Batch, 1)
}

func TestTracer_DiscardsEventsAgainstNoopTrace(t *testing.T) {
	backend := &fakeLangfuse{}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	tracer := newTestTracer(t, srv.URL)
	ctx := context.Background()
	noopTrace := domain.TraceContext{TraceID: domain.NoopTraceID}

	span := tracer.StartSpan(ctx, noopTrace, "rerank", nil)
	assert.Empty(t, span.SpanID)
	tracer.EndSpan(ctx, span, nil)
	tracer.EndTrace(ctx, noopTrace, nil)
	tracer.RecordError(ctx, noopTrace, "searched", domain.ErrGenerationFailed)

	require.NoError(t, tracer.Flush(ctx))
	assert.Equal(t, 0, backend.requestCount())
}

func TestTracer_FlushEmptyBufferSendsNothing(t *testing.T) {
	backend := &fakeLangfuse{}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	tracer := newTestTracer(t, srv.URL)
	require.NoError(t, tracer.Flush(context.Background()))
	assert.Equal(t, 0, backend.requestCount())
}

func TestTracer_FlushAsyncShipsInBackground(t *testing.T) {
	backend := &fakeLangfuse{}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	tracer := newTestTracer(t, srv.URL)
	tracer.StartTrace(context.Background(), "generate_linkedin_workflow", nil)

	tracer.FlushAsync()
	require.NoError(t, tracer.Close())

	require.Equal(t, 1, backend.requestCount())
	req := backend.request(t, 0)
	require.Len(t, req.Batch, 1)
	assert.Equal(t, "generate_linkedin_workflow", bodyField(t, req.Batch[0], "name"))
}

func TestTracer_FlushReportsBackendFailure(t *testing.T) {
	backend := &fakeLangfuse{status: http.StatusInternalServerError}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	tracer := newTestTracer(t, srv.URL)
	tracer.StartTrace(context.Background(), "generate_email_workflow", nil)

	err := tracer.Flush(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")

	// The failed batch is dropped, not retried.
	require.NoError(t, tracer.Flush(context.Background()))
	assert.Equal(t, 1, backend.requestCount())
}

func TestTracer_FlushAsyncAbsorbsUnreachableBackend(t *testing.T) {
	tracer := newTestTracer(t, "http://127.0.0.1:1")
	trace := tracer.StartTrace(context.Background(), "generate_email_workflow", nil)
	require.False(t, trace.IsNoop())

	tracer.FlushAsync()
	assert.NoError(t, tracer.Close())
}

func TestTracer_SplitsLargeBatches(t *testing.T) {
	backend := &fakeLangfuse{}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	tracer := newTestTracer(t, srv.URL)
	ctx := context.Background()

	trace := tracer.StartTrace(ctx, "generate_email_workflow", nil)
	for i := 0; i < 120; i++ {
		tracer.StartSpan(ctx, trace, "fragment_search", nil)
	}
	require.NoError(t, tracer.Flush(ctx))

	require.Equal(t, 2, backend.requestCount())
	total := len(backend.request(t, 0).Batch) + len(backend.request(t, 1).Batch)
	assert.Equal(t, 121, total)
	assert.Len(t, backend.request(t, 0).Batch, maxBatchSize)
}
