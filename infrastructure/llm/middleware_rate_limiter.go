package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitMiddleware throttles requests to the provider using a token
// bucket. requestsPerSecond sets the refill rate; burst sets the bucket
// size. Requests wait for a token and honor context cancellation.
func RateLimitMiddleware(requestsPerSecond float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	return func(next CoreModel) CoreModel {
		return &rateLimitedModel{next: next, limiter: limiter}
	}
}

type rateLimitedModel struct {
	next    CoreModel
	limiter *rate.Limiter
}

func (m *rateLimitedModel) DoGenerate(
	ctx context.Context,
	prompt string,
	opts map[string]any,
) (string, int, int, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return "", 0, 0, err
	}
	return m.next.DoGenerate(ctx, prompt, opts)
}

func (m *rateLimitedModel) GetModel() string      { return m.next.GetModel() }
func (m *rateLimitedModel) SetModel(model string) { m.next.SetModel(model) }
