package llm

import (
	"context"
	"time"
)

// TimeoutMiddleware bounds each request to the given duration. A zero or
// negative duration falls back to DefaultTimeout.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return func(next CoreModel) CoreModel {
		return &timeoutModel{next: next, timeout: timeout}
	}
}

type timeoutModel struct {
	next    CoreModel
	timeout time.Duration
}

func (m *timeoutModel) DoGenerate(
	ctx context.Context,
	prompt string,
	opts map[string]any,
) (string, int, int, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.next.DoGenerate(ctx, prompt, opts)
}

func (m *timeoutModel) GetModel() string      { return m.next.GetModel() }
func (m *timeoutModel) SetModel(model string) { m.next.SetModel(model) }
