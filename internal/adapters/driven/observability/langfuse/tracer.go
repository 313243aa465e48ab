// Package langfuse ships generation traces to a Langfuse backend over
// its public ingestion API.
//
// Events are buffered in memory and sent in batches, mirroring the
// Langfuse SDK. Trace and span IDs are assigned locally, so recording
// never waits on the backend. Every method absorbs backend failures:
// a broken or unreachable Langfuse host costs the trace, never the run.
package langfuse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jobforge/jobforge/internal/core/domain"
	"github.com/jobforge/jobforge/internal/core/ports/driven"
)

// Default configuration values.
const (
	// DefaultBaseURL is the hosted Langfuse endpoint.
	DefaultBaseURL = domain.DefaultLangfuseHost

	// DefaultTimeout bounds a single ingestion request.
	DefaultTimeout = 10 * time.Second
)

const (
	// maxBatchSize caps the events in one ingestion request; larger
	// buffers are split across requests.
	maxBatchSize = 100

	// closeTimeout bounds the final flush during Close.
	closeTimeout = 15 * time.Second
)

// Langfuse ingestion event types.
const (
	eventTraceCreate = "trace-create"
	eventSpanCreate  = "span-create"
	eventSpanUpdate  = "span-update"
	eventEventCreate = "event-create"
)

// Config holds Langfuse connection settings.
type Config struct {
	// BaseURL is the Langfuse host. Defaults to DefaultBaseURL.
	BaseURL string

	// PublicKey is the project public key (basic auth user). Required.
	PublicKey string

	// SecretKey is the project secret key (basic auth password). Required.
	SecretKey string

	// Timeout bounds one ingestion request. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Tracer buffers observability events and ships them to Langfuse in
// batches. It implements driven.Tracer.
type Tracer struct {
	client    *http.Client
	baseURL   string
	publicKey string
	secretKey string
	log       *slog.Logger

	mu     sync.Mutex
	events []event

	flights sync.WaitGroup
}

// Interface compliance check.
var _ driven.Tracer = (*Tracer)(nil)

// Langfuse ingestion API wire format.
type ingestionRequest struct {
	Batch []event `json:"batch"`
}

type event struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Body      any    `json:"body"`
}

type traceBody struct {
	ID        string            `json:"id"`
	Name      string            `json:"name,omitempty"`
	Timestamp string            `json:"timestamp,omitempty"`
	Input     map[string]string `json:"input,omitempty"`
	Output    map[string]string `json:"output,omitempty"`
}

type spanBody struct {
	ID        string            `json:"id"`
	TraceID   string            `json:"traceId"`
	Name      string            `json:"name,omitempty"`
	StartTime string            `json:"startTime,omitempty"`
	EndTime   string            `json:"endTime,omitempty"`
	Input     map[string]string `json:"input,omitempty"`
	Output    map[string]string `json:"output,omitempty"`
}

type eventBody struct {
	ID            string            `json:"id"`
	TraceID       string            `json:"traceId"`
	Name          string            `json:"name"`
	StartTime     string            `json:"startTime,omitempty"`
	Level         string            `json:"level,omitempty"`
	StatusMessage string            `json:"statusMessage,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewTracer creates a Langfuse tracer. The public and secret keys are
// required; callers without credentials should use the noop tracer
// instead.
func NewTracer(cfg Config, log *slog.Logger) (*Tracer, error) {
	if cfg.PublicKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("langfuse: public and secret keys are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}

	return &Tracer{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		publicKey: cfg.PublicKey,
		secretKey: cfg.SecretKey,
		log:       log.With("component", "langfuse"),
	}, nil
}

// StartTrace opens a trace for one generation run. The trace ID is
// assigned locally and the create event buffered, so the caller never
// waits on the backend.
func (t *Tracer) StartTrace(_ context.Context, name string, input map[string]string) domain.TraceContext {
	traceID := uuid.NewString()
	t.enqueue(newEvent(eventTraceCreate, traceBody{
		ID:        traceID,
		Name:      name,
		Timestamp: nowRFC3339(),
		Input:     input,
	}))
	return domain.TraceContext{TraceID: traceID, Metadata: input}
}

// StartSpan opens a span for one stage of the run. Spans against a
// no-op trace are discarded.
func (t *Tracer) StartSpan(_ context.Context, trace domain.TraceContext, name string, input map[string]string) domain.Span {
	if trace.IsNoop() {
		return domain.Span{Name: name}
	}
	spanID := uuid.NewString()
	t.enqueue(newEvent(eventSpanCreate, spanBody{
		ID:        spanID,
		TraceID:   trace.TraceID,
		Name:      name,
		StartTime: nowRFC3339(),
		Input:     input,
	}))
	return domain.Span{SpanID: spanID, TraceID: trace.TraceID, Name: name}
}

// EndSpan closes a span with its output.
func (t *Tracer) EndSpan(_ context.Context, span domain.Span, output map[string]string) {
	if span.SpanID == "" {
		return
	}
	t.enqueue(newEvent(eventSpanUpdate, spanBody{
		ID:      span.SpanID,
		TraceID: span.TraceID,
		EndTime: nowRFC3339(),
		Output:  output,
	}))
}

// EndTrace records the final output of the run. Langfuse upserts
// traces by ID, so the closing event carries only the output.
func (t *Tracer) EndTrace(_ context.Context, trace domain.TraceContext, output map[string]string) {
	if trace.IsNoop() {
		return
	}
	t.enqueue(newEvent(eventTraceCreate, traceBody{
		ID:     trace.TraceID,
		Output: output,
	}))
}

// RecordError marks the trace as failed. It emits an ERROR-level event
// carrying the run state and writes the error as the trace output.
func (t *Tracer) RecordError(_ context.Context, trace domain.TraceContext, state string, err error) {
	if trace.IsNoop() || err == nil {
		return
	}
	t.enqueue(newEvent(eventEventCreate, eventBody{
		ID:            uuid.NewString(),
		TraceID:       trace.TraceID,
		Name:          "error",
		StartTime:     nowRFC3339(),
		Level:         "ERROR",
		StatusMessage: err.Error(),
		Metadata:      map[string]string{"state": state},
	}))
	t.enqueue(newEvent(eventTraceCreate, traceBody{
		ID:     trace.TraceID,
		Output: map[string]string{"error": err.Error(), "state": state},
	}))
}

// FlushAsync ships buffered events in the background and returns
// immediately. Failures are logged and the events dropped.
func (t *Tracer) FlushAsync() {
	batch := t.drain()
	if len(batch) == 0 {
		return
	}
	t.flights.Add(1)
	go func() {
		defer t.flights.Done()
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := t.send(ctx, batch); err != nil {
			t.log.Warn("trace flush failed", "events", len(batch), "error", err)
		}
	}()
}

// Flush ships buffered events and waits for completion.
func (t *Tracer) Flush(ctx context.Context) error {
	batch := t.drain()
	if len(batch) == 0 {
		return nil
	}
	if err := t.send(ctx, batch); err != nil {
		t.log.Warn("trace flush failed", "events", len(batch), "error", err)
		return fmt.Errorf("langfuse: flush: %w", err)
	}
	return nil
}

// Close waits for in-flight background flushes, ships anything still
// buffered and releases connections.
func (t *Tracer) Close() error {
	t.flights.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	err := t.Flush(ctx)
	t.client.CloseIdleConnections()
	return err
}

func (t *Tracer) enqueue(e event) {
	t.mu.Lock()
	t.events = append(t.events, e)
	t.mu.Unlock()
}

// drain removes and returns all buffered events.
func (t *Tracer) drain() []event {
	t.mu.Lock()
	defer t.mu.Unlock()
	batch := t.events
	t.events = nil
	return batch
}

func (t *Tracer) send(ctx context.Context, events []event) error {
	for start := 0; start < len(events); start += maxBatchSize {
		end := min(start+maxBatchSize, len(events))
		if err := t.post(ctx, ingestionRequest{Batch: events[start:end]}); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tracer) post(ctx context.Context, body ingestionRequest) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/api/public/ingestion", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(t.publicKey, t.secretKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Langfuse answers 207 when individual events fail validation;
	// the batch as a whole was still accepted.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func newEvent(eventType string, body any) event {
	return event{
		ID:        uuid.NewString(),
		Timestamp: nowRFC3339(),
		Type:      eventType,
		Body:      body,
	}
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
