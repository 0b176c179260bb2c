// Package testutils provides shared test doubles for the interview
// pipeline.
package testutils

import (
	"context"
	"sync"

	"github.com/ahrav/go-parley/internal/ports"
)

var _ ports.ModelBackend = (*MockBackend)(nil)

// MockBackend is a scripted ports.ModelBackend for tests. Responses are
// returned in order; once the script runs out the last response repeats.
// A configured error takes priority over any script.
type MockBackend struct {
	mu        sync.Mutex
	responses []string
	next      int

	// Err, when set, is returned by every Generate call.
	Err error

	// Model is the name reported by GetModel.
	Model string

	// Calls records every prompt passed to Generate, in order.
	Calls []string

	// Options records the options map of every Generate call.
	Options []map[string]any
}

// NewMockBackend creates a mock that replies with the given responses in
// order.
func NewMockBackend(responses ...string) *MockBackend {
	return &MockBackend{responses: responses, Model: "mock-model"}
}

// Generate returns the next scripted response, recording the call.
func (m *MockBackend) Generate(ctx context.Context, prompt string, options map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, prompt)
	m.Options = append(m.Options, options)

	if m.Err != nil {
		return "", m.Err
	}
	if len(m.responses) == 0 {
		return "", nil
	}

	response := m.responses[m.next]
	if m.next < len(m.responses)-1 {
		m.next++
	}
	return response, nil
}

// EstimateTokens approximates four characters per token.
func (m *MockBackend) EstimateTokens(text string) (int, error) {
	return (len(text) + 3) / 4, nil
}

// GetModel returns the configured model name.
func (m *MockBackend) GetModel() string { return m.Model }

// CallCount returns how many Generate calls the mock has served.
func (m *MockBackend) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
