package llm

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/nmoreau/askdesk/internal/llm"

// InstrumentedAdapter decorates an Adapter with OpenTelemetry metrics and
// structured logging: request/error counts, token usage, latency. It also
// keeps in-memory totals so the REPL can show usage without a metrics
// backend.
type InstrumentedAdapter struct {
	adapter  Adapter
	logger   *slog.Logger
	provider string
	model    string

	totalCalls        atomic.Int64
	totalErrors       atomic.Int64
	totalInputTokens  atomic.Int64
	totalOutputTokens atomic.Int64

	requestCounter     metric.Int64Counter
	errorCounter       metric.Int64Counter
	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter
	latencyHistogram   metric.Float64Histogram
}

// Stats is a snapshot of adapter usage since startup.
type Stats struct {
	Calls        int64
	Errors       int64
	InputTokens  int64
	OutputTokens int64
}

// NewInstrumentedAdapter wraps an adapter with instrumentation. Metric
// creation failures are logged and the corresponding metric stays nil; the
// adapter still works.
func NewInstrumentedAdapter(adapter Adapter, logger *slog.Logger, provider, model string) *InstrumentedAdapter {
	if logger == nil {
		logger = slog.Default()
	}

	meter := otel.Meter(meterName)

	requestCounter, err := meter.Int64Counter("llm.requests",
		metric.WithDescription("Total number of LLM API requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		logger.Warn("failed to create llm.requests metric", "error", err)
	}

	errorCounter, err := meter.Int64Counter("llm.errors",
		metric.WithDescription("Total number of LLM API errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		logger.Warn("failed to create llm.errors metric", "error", err)
	}

	inputTokenCounter, err := meter.Int64Counter("llm.tokens.input",
		metric.WithDescription("Total input tokens consumed"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		logger.Warn("failed to create llm.tokens.input metric", "error", err)
	}

	outputTokenCounter, err := meter.Int64Counter("llm.tokens.output",
		metric.WithDescription("Total output tokens consumed"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		logger.Warn("failed to create llm.tokens.output metric", "error", err)
	}

	latencyHistogram, err := meter.Float64Histogram("llm.request.duration",
		metric.WithDescription("LLM request latency"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		logger.Warn("failed to create llm.request.duration metric", "error", err)
	}

	return &InstrumentedAdapter{
		adapter:            adapter,
		logger:             logger,
		provider:           provider,
		model:              model,
		requestCounter:     requestCounter,
		errorCounter:       errorCounter,
		inputTokenCounter:  inputTokenCounter,
		outputTokenCounter: outputTokenCounter,
		latencyHistogram:   latencyHistogram,
	}
}

// Chat delegates to the wrapped adapter, recording metrics and logging the
// outcome.
func (a *InstrumentedAdapter) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	attrs := []attribute.KeyValue{
		attribute.String("llm.provider", a.provider),
		attribute.String("llm.model", a.model),
	}

	a.totalCalls.Add(1)
	safeAddCounter(ctx, a.requestCounter, 1, attrs...)

	start := time.Now()
	resp, err := a.adapter.Chat(ctx, req)
	elapsed := time.Since(start)

	safeRecordHistogram(ctx, a.latencyHistogram, float64(elapsed.Milliseconds()), attrs...)

	if err != nil {
		a.totalErrors.Add(1)
		safeAddCounter(ctx, a.errorCounter, 1, attrs...)
		a.logger.Error("llm chat failed",
			"provider", a.provider,
			"model", a.model,
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return nil, err
	}

	a.totalInputTokens.Add(int64(resp.Usage.InputTokens))
	a.totalOutputTokens.Add(int64(resp.Usage.OutputTokens))
	safeAddCounter(ctx, a.inputTokenCounter, int64(resp.Usage.InputTokens), attrs...)
	safeAddCounter(ctx, a.outputTokenCounter, int64(resp.Usage.OutputTokens), attrs...)

	a.logger.Debug("llm chat completed",
		"provider", a.provider,
		"model", a.model,
		"duration_ms", elapsed.Milliseconds(),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"tool_calls", len(resp.ToolCalls),
	)
	return resp, nil
}

// GetStats returns a snapshot of usage totals.
func (a *InstrumentedAdapter) GetStats() Stats {
	return Stats{
		Calls:        a.totalCalls.Load(),
		Errors:       a.totalErrors.Load(),
		InputTokens:  a.totalInputTokens.Load(),
		OutputTokens: a.totalOutputTokens.Load(),
	}
}

// safeAddCounter adds to a counter, tolerating nil metrics.
func safeAddCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter != nil {
		counter.Add(ctx, value, metric.WithAttributes(attrs...))
	}
}

// safeRecordHistogram records to a histogram, tolerating nil metrics.
func safeRecordHistogram(ctx context.Context, hist metric.Float64Histogram, value float64, attrs ...attribute.KeyValue) {
	if hist != nil {
		hist.Record(ctx, value, metric.WithAttributes(attrs...))
	}
}
