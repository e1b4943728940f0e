package observability

import (
	"context"

	"github.com/nmoreau/askdesk/internal/llm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "askdesk/llm"

// TracedAdapter wraps an llm.Adapter with OpenTelemetry spans. Metrics live
// in llm.InstrumentedAdapter; this layer only records traces, so the two can
// be stacked.
type TracedAdapter struct {
	adapter  llm.Adapter
	provider string
	model    string
	tracer   trace.Tracer
}

// NewTracedAdapter wraps an adapter with tracing.
func NewTracedAdapter(adapter llm.Adapter, provider, model string) *TracedAdapter {
	return &TracedAdapter{
		adapter:  adapter,
		provider: provider,
		model:    model,
		tracer:   Tracer(instrumentationName),
	}
}

// Chat records a span around the wrapped adapter's Chat call.
func (t *TracedAdapter) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	ctx, span := t.tracer.Start(ctx, "llm.chat",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("llm.provider", t.provider),
			attribute.String("llm.model", t.model),
			attribute.Int("llm.messages", len(req.Messages)),
			attribute.Int("llm.tools", len(req.Tools)),
		),
	)
	defer span.End()

	resp, err := t.adapter.Chat(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("llm.tokens.input", resp.Usage.InputTokens),
		attribute.Int("llm.tokens.output", resp.Usage.OutputTokens),
		attribute.Int("llm.tool_calls", len(resp.ToolCalls)),
	)
	span.SetStatus(codes.Ok, "")
	return resp, nil
}
