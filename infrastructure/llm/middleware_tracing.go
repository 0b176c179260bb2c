package llm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware wraps each request in an OpenTelemetry span carrying
// the model name, prompt length, and token usage.
func TracingMiddleware() Middleware {
	tracer := otel.Tracer("llm")
	return func(next CoreModel) CoreModel {
		return &tracedModel{next: next, tracer: tracer}
	}
}

type tracedModel struct {
	next   CoreModel
	tracer trace.Tracer
}

func (m *tracedModel) DoGenerate(
	ctx context.Context,
	prompt string,
	opts map[string]any,
) (string, int, int, error) {
	ctx, span := m.tracer.Start(ctx, "llm.generate",
		trace.WithAttributes(
			attribute.String("llm.model", m.next.GetModel()),
			attribute.Int("llm.prompt_chars", len(prompt)),
		))
	defer span.End()

	response, tokensIn, tokensOut, err := m.next.DoGenerate(ctx, prompt, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", 0, 0, err
	}

	span.SetAttributes(
		attribute.Int("llm.tokens_input", tokensIn),
		attribute.Int("llm.tokens_output", tokensOut),
	)
	return response, tokensIn, tokensOut, nil
}

func (m *tracedModel) GetModel() string      { return m.next.GetModel() }
func (m *tracedModel) SetModel(model string) { m.next.SetModel(model) }
