// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"
	"time"
)

// ModelBackend is the capability interface for the text-generation model the
// pipeline runs against. The backend is a black box mapping (prompt, sampling
// parameters) to generated text; loading, device placement, and tokenization
// live behind it.
//
// Pipeline components receive a ModelBackend as an injected dependency and
// never reach into process-wide singletons, so test doubles can stand in for
// a real model.
type ModelBackend interface {
	// Generate sends a generation request to the model and returns the raw
	// generated text. It returns an error wrapping ErrModelNotLoaded when
	// the backend is unavailable; callers must not retry that condition.
	//
	// The options map carries sampling parameters without changing the
	// interface per provider. Recognized options:
	//   - "temperature": float64
	//   - "max_tokens": int
	//   - "top_p": float64
	//   - "repetition_penalty": float64
	//   - "system": string (system prompt, when the provider supports one)
	//   - "model": string (override the configured model)
	Generate(ctx context.Context, prompt string, options map[string]any) (string, error)

	// EstimateTokens calculates the approximate token count for a given
	// text. Used for budget tracking and prompt-length control; the
	// estimation method may vary by provider.
	EstimateTokens(text string) (int, error)

	// GetModel returns the model identifier behind this backend, for
	// logging and diagnostics.
	GetModel() string
}

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus or OpenTelemetry.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// Used for events like generation attempts, rejections, and fallbacks.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram, for distributions
	// like latency, quality scores, or prompt sizes.
	RecordHistogram(metric string, value float64, labels map[string]string)
}
