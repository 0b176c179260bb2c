package interview

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-parley/internal/ports"
)

// EngineConfig controls sampling and the retry policy.
type EngineConfig struct {
	// MaxAttempts bounds the retry loop, including the first attempt.
	MaxAttempts int `yaml:"max_attempts" validate:"gt=0"`

	// TempIncrement is added to the temperature on each retry so later
	// attempts sample more diversely.
	TempIncrement float64 `yaml:"temp_increment" validate:"gte=0"`

	// Temperature clamp range.
	TempMin float64 `yaml:"temp_min" validate:"gte=0"`
	TempMax float64 `yaml:"temp_max" validate:"gtfield=TempMin,lte=2"`

	// Sampling parameters passed through to the backend.
	TopP              float64 `yaml:"top_p" validate:"gt=0,lte=1"`
	RepetitionPenalty float64 `yaml:"repetition_penalty" validate:"gte=0.5,lte=2"`

	// SimilarityThreshold rejects a generated question this close to the
	// previous one.
	SimilarityThreshold float64 `yaml:"similarity_threshold" validate:"gt=0,lte=1"`
}

// DefaultEngineConfig returns the standard generation policy.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxAttempts:         3,
		TempIncrement:       0.1,
		TempMin:             0.1,
		TempMax:             1.0,
		TopP:                0.9,
		RepetitionPenalty:   1.2,
		SimilarityThreshold: 0.85,
	}
}

// GenerationResult is the outcome of one generate call. When no attempt
// validated, Accepted is false and Question holds the last repaired output
// so callers still have something usable.
type GenerationResult struct {
	Question        string
	Accepted        bool
	Attempts        int
	Temperature     float64
	RejectionReason RejectionReason
	Elapsed         time.Duration
}

// engineState is the retry loop's explicit state. Each attempt moves
// attempting to either accepted, attempting with the next attempt number,
// or exhausted once the cap is reached.
type engineState int

const (
	engineAttempting engineState = iota
	engineAccepted
	engineExhausted
)

// Engine wraps the model backend with sampling parameters and the bounded
// validate-and-retry loop.
type Engine struct {
	backend   ports.ModelBackend
	validator *Validator
	config    EngineConfig
	tracer    trace.Tracer
	metrics   ports.MetricsCollector
}

// NewEngine creates a generation engine over the given backend.
func NewEngine(backend ports.ModelBackend, validator *Validator, config EngineConfig) (*Engine, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	if validator == nil {
		return nil, fmt.Errorf("validator is required")
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	return &Engine{
		backend:   backend,
		validator: validator,
		config:    config,
		tracer:    otel.Tracer("interview.engine"),
	}, nil
}

// WithMetrics attaches a collector for attempt and rejection counters.
// A nil collector disables recording.
func (e *Engine) WithMetrics(collector ports.MetricsCollector) *Engine {
	e.metrics = collector
	return e
}

// temperatureFor computes the sampling temperature for an attempt:
// base + (attempt-1) * increment, clamped to the configured range.
func (e *Engine) temperatureFor(base float64, attempt int) float64 {
	t := base + float64(attempt-1)*e.config.TempIncrement
	if t < e.config.TempMin {
		t = e.config.TempMin
	}
	if t > e.config.TempMax {
		t = e.config.TempMax
	}
	return t
}

// Generate runs the retry loop: call the backend, repair, validate, and
// accept the first attempt that passes. When every attempt is rejected it
// returns the last repaired output with Accepted false rather than
// failing; only backend errors propagate.
func (e *Engine) Generate(
	ctx context.Context,
	systemPrompt, userPrompt string,
	baseTemperature float64,
	maxTokens int,
	previousQuestion string,
) (*GenerationResult, error) {
	ctx, span := e.tracer.Start(ctx, "engine.generate",
		trace.WithAttributes(attribute.Int("engine.max_attempts", e.config.MaxAttempts)))
	defer span.End()

	start := time.Now()
	result := &GenerationResult{}

	state := engineAttempting
	attempt := 1
	for state == engineAttempting {
		temperature := e.temperatureFor(baseTemperature, attempt)

		raw, err := e.backend.Generate(ctx, userPrompt, map[string]any{
			"temperature":        temperature,
			"top_p":              e.config.TopP,
			"repetition_penalty": e.config.RepetitionPenalty,
			"max_tokens":         maxTokens,
			"system":             systemPrompt,
		})
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("attempt %d: %w", attempt, err)
		}

		repaired := RepairGrammar(raw)
		ok, reason := e.validator.Validate(repaired)
		if ok && isNearDuplicate(repaired, previousQuestion, e.config.SimilarityThreshold) {
			ok, reason = false, ReasonRepeatedQuestion
		}

		result.Question = repaired
		result.Attempts = attempt
		result.Temperature = temperature
		result.RejectionReason = reason

		if !ok && e.metrics != nil {
			e.metrics.RecordCounter("question_rejections_total", 1,
				map[string]string{"reason": string(reason)})
		}

		switch {
		case ok:
			result.Accepted = true
			result.RejectionReason = ""
			state = engineAccepted
		case attempt >= e.config.MaxAttempts:
			state = engineExhausted
		default:
			attempt++
		}
	}

	result.Elapsed = time.Since(start)
	if e.metrics != nil {
		labels := map[string]string{"accepted": fmt.Sprintf("%t", result.Accepted)}
		e.metrics.RecordCounter("question_generation_attempts_total", float64(result.Attempts), labels)
		e.metrics.RecordLatency("question_generation_duration_seconds", result.Elapsed, labels)
	}
	span.SetAttributes(
		attribute.Int("engine.attempts", result.Attempts),
		attribute.Bool("engine.accepted", result.Accepted),
		attribute.String("engine.rejection_reason", string(result.RejectionReason)),
	)
	return result, nil
}
