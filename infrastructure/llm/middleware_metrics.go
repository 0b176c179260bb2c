package llm

import (
	"context"
	"time"

	"github.com/ahrav/go-parley/internal/ports"
)

// MetricsMiddleware records request latency, outcome counts, and token
// usage through the provided collector.
func MetricsMiddleware(collector ports.MetricsCollector) Middleware {
	return func(next CoreModel) CoreModel {
		return &metricsModel{next: next, collector: collector}
	}
}

type metricsModel struct {
	next      CoreModel
	collector ports.MetricsCollector
}

func (m *metricsModel) DoGenerate(
	ctx context.Context,
	prompt string,
	opts map[string]any,
) (string, int, int, error) {
	start := time.Now()
	response, tokensIn, tokensOut, err := m.next.DoGenerate(ctx, prompt, opts)

	labels := map[string]string{
		"model":  m.next.GetModel(),
		"status": "success",
	}
	if err != nil {
		labels["status"] = "error"
	}

	m.collector.RecordLatency("llm_request_duration_seconds", time.Since(start), labels)
	m.collector.RecordCounter("llm_requests_total", 1, labels)
	if err == nil {
		m.collector.RecordCounter("llm_tokens_input_total", float64(tokensIn), labels)
		m.collector.RecordCounter("llm_tokens_output_total", float64(tokensOut), labels)
	}

	if err != nil {
		return "", 0, 0, err
	}
	return response, tokensIn, tokensOut, nil
}

func (m *metricsModel) GetModel() string      { return m.next.GetModel() }
func (m *metricsModel) SetModel(model string) { m.next.SetModel(model) }
