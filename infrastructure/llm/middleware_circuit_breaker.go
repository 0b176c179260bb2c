package llm

import (
	"context"
	"sync"
	"time"
)

// circuitState tracks the breaker's position.
type circuitState int

const (
	stateClosed circuitState = iota
	stateOpen
	stateHalfOpen
)

// CircuitBreakerMiddleware opens the circuit after failureThreshold
// consecutive failures and rejects requests with ErrCircuitOpen until
// resetTimeout has elapsed. The first request after the timeout probes the
// provider; success closes the circuit, failure reopens it.
func CircuitBreakerMiddleware(failureThreshold int, resetTimeout time.Duration) Middleware {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	return func(next CoreModel) CoreModel {
		return &circuitBreakerModel{
			next:             next,
			failureThreshold: failureThreshold,
			resetTimeout:     resetTimeout,
		}
	}
}

type circuitBreakerModel struct {
	next             CoreModel
	failureThreshold int
	resetTimeout     time.Duration

	mu          sync.Mutex
	state       circuitState
	failures    int
	lastFailure time.Time
}

func (m *circuitBreakerModel) DoGenerate(
	ctx context.Context,
	prompt string,
	opts map[string]any,
) (string, int, int, error) {
	if err := m.beforeRequest(); err != nil {
		return "", 0, 0, err
	}

	response, tokensIn, tokensOut, err := m.next.DoGenerate(ctx, prompt, opts)
	m.afterRequest(err)
	if err != nil {
		return "", 0, 0, err
	}
	return response, tokensIn, tokensOut, nil
}

func (m *circuitBreakerModel) beforeRequest() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == stateOpen {
		if time.Since(m.lastFailure) < m.resetTimeout {
			return ErrCircuitOpen
		}
		m.state = stateHalfOpen
	}
	return nil
}

func (m *circuitBreakerModel) afterRequest(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		m.failures = 0
		m.state = stateClosed
		return
	}

	m.failures++
	m.lastFailure = time.Now()
	if m.state == stateHalfOpen || m.failures >= m.failureThreshold {
		m.state = stateOpen
	}
}

func (m *circuitBreakerModel) GetModel() string      { return m.next.GetModel() }
func (m *circuitBreakerModel) SetModel(model string) { m.next.SetModel(model) }
