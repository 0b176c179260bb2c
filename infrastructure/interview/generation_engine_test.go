package interview

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-parley/internal/ports"
	"github.com/ahrav/go-parley/internal/testutils"
)

func newTestEngine(t *testing.T, backend ports.ModelBackend) *Engine {
	t.Helper()
	engine, err := NewEngine(backend, newTestValidator(t), DefaultEngineConfig())
	require.NoError(t, err)
	return engine
}

func TestEngine_AcceptsFirstValidAttempt(t *testing.T) {
	backend := testutils.NewMockBackend("Can you tell me about your experience with Kubernetes in production?")
	engine := newTestEngine(t, backend)

	result, err := engine.Generate(context.Background(), "system", "user", 0.7, 150, "")
	require.NoError(t, err)

	assert.True(t, result.Accepted)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, "Can you tell me about your experience with Kubernetes in production?", result.Question)
	assert.Empty(t, result.RejectionReason)
	assert.Equal(t, 1, backend.CallCount())
}

func TestEngine_RetriesUntilValid(t *testing.T) {
	backend := testutils.NewMockBackend(
		"Explain the concept of dependency injection",
		"Can you walk me through how you debug production incidents?",
	)
	engine := newTestEngine(t, backend)

	result, err := engine.Generate(context.Background(), "system", "user", 0.7, 150, "")
	require.NoError(t, err)

	assert.True(t, result.Accepted)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, 2, backend.CallCount())
}

func TestEngine_ExhaustsAndDegradesGracefully(t *testing.T) {
	// Always-invalid output: exactly MaxAttempts backend calls, no error,
	// and the last repaired output comes back with its rejection reason.
	backend := testutils.NewMockBackend("Define polymorphism")
	engine := newTestEngine(t, backend)

	result, err := engine.Generate(context.Background(), "system", "user", 0.7, 150, "")
	require.NoError(t, err)

	assert.False(t, result.Accepted)
	assert.Equal(t, DefaultEngineConfig().MaxAttempts, result.Attempts)
	assert.Equal(t, DefaultEngineConfig().MaxAttempts, backend.CallCount())
	assert.Equal(t, "Define polymorphism", result.Question)
	assert.NotEmpty(t, result.RejectionReason)
}

func TestEngine_TemperatureLadder(t *testing.T) {
	backend := testutils.NewMockBackend("Define polymorphism")
	engine := newTestEngine(t, backend)

	_, err := engine.Generate(context.Background(), "system", "user", 0.7, 150, "")
	require.NoError(t, err)

	require.Len(t, backend.Options, 3)
	assert.InDelta(t, 0.7, backend.Options[0]["temperature"].(float64), 1e-9)
	assert.InDelta(t, 0.8, backend.Options[1]["temperature"].(float64), 1e-9)
	assert.InDelta(t, 0.9, backend.Options[2]["temperature"].(float64), 1e-9)
}

func TestEngine_TemperatureClamped(t *testing.T) {
	engine := newTestEngine(t, testutils.NewMockBackend("x"))

	assert.InDelta(t, 0.1, engine.temperatureFor(0.0, 1), 1e-9)
	assert.InDelta(t, 1.0, engine.temperatureFor(0.95, 3), 1e-9)
	assert.InDelta(t, 0.7, engine.temperatureFor(0.7, 1), 1e-9)
}

func TestEngine_RepairsBeforeValidating(t *testing.T) {
	backend := testutils.NewMockBackend("Explain would you design a caching layer for your API?")
	engine := newTestEngine(t, backend)

	result, err := engine.Generate(context.Background(), "system", "user", 0.7, 150, "")
	require.NoError(t, err)

	assert.True(t, result.Accepted)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, "How would you design a caching layer for your API?", result.Question)
}

func TestEngine_RejectsRepeatedQuestion(t *testing.T) {
	previous := "Can you tell me about your experience with Kubernetes in production?"
	backend := testutils.NewMockBackend(previous)
	engine := newTestEngine(t, backend)

	result, err := engine.Generate(context.Background(), "system", "user", 0.7, 150, previous)
	require.NoError(t, err)

	assert.False(t, result.Accepted)
	assert.Equal(t, ReasonRepeatedQuestion, result.RejectionReason)
}

func TestEngine_PropagatesBackendErrors(t *testing.T) {
	backend := testutils.NewMockBackend()
	backend.Err = ports.ErrModelNotLoaded
	engine := newTestEngine(t, backend)

	_, err := engine.Generate(context.Background(), "system", "user", 0.7, 150, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrModelNotLoaded)
	assert.Equal(t, 1, backend.CallCount())
}

func TestEngine_PassesSamplingParameters(t *testing.T) {
	backend := testutils.NewMockBackend("Can you tell me about your most recent project at work?")
	engine := newTestEngine(t, backend)

	_, err := engine.Generate(context.Background(), "sys-prompt", "user-prompt", 0.7, 222, "")
	require.NoError(t, err)

	require.Len(t, backend.Options, 1)
	opts := backend.Options[0]
	assert.Equal(t, 222, opts["max_tokens"])
	assert.Equal(t, "sys-prompt", opts["system"])
	assert.InDelta(t, 0.9, opts["top_p"].(float64), 1e-9)
	assert.InDelta(t, 1.2, opts["repetition_penalty"].(float64), 1e-9)
	assert.Equal(t, "user-prompt", backend.Calls[0])
}

// recordingCollector captures counter increments for assertions.
type recordingCollector struct {
	mu       sync.Mutex
	counters map[string]float64
	labels   map[string]map[string]string
}

func newRecordingCollector() *recordingCollector {
	return &recordingCollector{
		counters: map[string]float64{},
		labels:   map[string]map[string]string{},
	}
}

func (c *recordingCollector) RecordLatency(string, time.Duration, map[string]string) {}

func (c *recordingCollector) RecordCounter(metric string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[metric] += value
	c.labels[metric] = labels
}

func (c *recordingCollector) RecordGauge(string, float64, map[string]string)     {}
func (c *recordingCollector) RecordHistogram(string, float64, map[string]string) {}

func TestEngine_RecordsRejectionAndAttemptCounters(t *testing.T) {
	backend := testutils.NewMockBackend("Define polymorphism")
	collector := newRecordingCollector()
	engine := newTestEngine(t, backend).WithMetrics(collector)

	_, err := engine.Generate(context.Background(), "system", "user", 0.7, 150, "")
	require.NoError(t, err)

	assert.Equal(t, float64(DefaultEngineConfig().MaxAttempts), collector.counters["question_rejections_total"])
	assert.Equal(t, float64(DefaultEngineConfig().MaxAttempts), collector.counters["question_generation_attempts_total"])
	assert.Equal(t, "false", collector.labels["question_generation_attempts_total"]["accepted"])
}
