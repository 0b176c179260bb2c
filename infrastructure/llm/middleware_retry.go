package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig controls the retry middleware's backoff behavior.
type RetryConfig struct {
	// MaxAttempts is the total number of tries including the first.
	MaxAttempts int

	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the exponential growth of the delay.
	MaxBackoff time.Duration

	// Multiplier scales the delay after each failed attempt.
	Multiplier float64
}

// DefaultRetryConfig returns conservative retry settings suitable for
// interactive request paths.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 200 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		Multiplier:     2.0,
	}
}

// RetryMiddleware retries transient provider failures with exponential
// backoff and jitter. Non-retryable failures are returned immediately.
func RetryMiddleware(config RetryConfig) Middleware {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.Multiplier < 1 {
		config.Multiplier = 2.0
	}
	return func(next CoreModel) CoreModel {
		return &retryModel{next: next, config: config}
	}
}

type retryModel struct {
	next   CoreModel
	config RetryConfig
}

func (m *retryModel) DoGenerate(
	ctx context.Context,
	prompt string,
	opts map[string]any,
) (string, int, int, error) {
	var lastErr error
	for attempt := 0; attempt < m.config.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", 0, 0, ctx.Err()
			case <-time.After(m.backoff(attempt)):
			}
		}

		response, tokensIn, tokensOut, err := m.next.DoGenerate(ctx, prompt, opts)
		if err == nil {
			return response, tokensIn, tokensOut, nil
		}
		lastErr = err

		var provErr *ProviderError
		if !errors.As(err, &provErr) || !provErr.IsRetryable() {
			return "", 0, 0, err
		}
	}
	return "", 0, 0, lastErr
}

// backoff computes the delay before the given retry attempt, with full
// jitter to avoid synchronized retries.
func (m *retryModel) backoff(attempt int) time.Duration {
	delay := float64(m.config.InitialBackoff) * math.Pow(m.config.Multiplier, float64(attempt-1))
	if delay > float64(m.config.MaxBackoff) {
		delay = float64(m.config.MaxBackoff)
	}
	return time.Duration(rand.Float64() * delay)
}

func (m *retryModel) GetModel() string      { return m.next.GetModel() }
func (m *retryModel) SetModel(model string) { m.next.SetModel(model) }
