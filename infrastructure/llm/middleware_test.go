package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-parley/internal/ports"
)

// flakyCore fails a set number of times before succeeding.
type flakyCore struct {
	BaseProvider
	failures int
	err      error
	calls    int
}

func (c *flakyCore) DoGenerate(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	c.calls++
	if c.calls <= c.failures {
		return "", 0, 0, c.err
	}
	return "ok", 10, 5, nil
}

func retryableErr() error {
	return &ProviderError{Type: ErrorTypeServerError, Provider: "test", Message: "boom"}
}

func fastRetryConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestRetryMiddleware_RecoversFromTransientFailure(t *testing.T) {
	core := &flakyCore{BaseProvider: NewBaseProvider("m"), failures: 2, err: retryableErr()}
	model := RetryMiddleware(fastRetryConfig(3))(core)

	response, _, _, err := model.DoGenerate(context.Background(), "p", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", response)
	assert.Equal(t, 3, core.calls)
}

func TestRetryMiddleware_GivesUpAfterMaxAttempts(t *testing.T) {
	core := &flakyCore{BaseProvider: NewBaseProvider("m"), failures: 10, err: retryableErr()}
	model := RetryMiddleware(fastRetryConfig(3))(core)

	_, _, _, err := model.DoGenerate(context.Background(), "p", nil)
	require.Error(t, err)
	assert.Equal(t, 3, core.calls)
}

func TestRetryMiddleware_DoesNotRetryPermanentFailure(t *testing.T) {
	permanent := &ProviderError{Type: ErrorTypeAuthentication, Provider: "test", Message: "bad key"}
	core := &flakyCore{BaseProvider: NewBaseProvider("m"), failures: 10, err: permanent}
	model := RetryMiddleware(fastRetryConfig(3))(core)

	_, _, _, err := model.DoGenerate(context.Background(), "p", nil)
	require.Error(t, err)
	assert.Equal(t, 1, core.calls)
}

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	core := &flakyCore{BaseProvider: NewBaseProvider("m"), failures: 2, err: retryableErr()}
	model := CircuitBreakerMiddleware(2, 20*time.Millisecond)(core)
	ctx := context.Background()

	_, _, _, err := model.DoGenerate(ctx, "p", nil)
	require.Error(t, err)
	_, _, _, err = model.DoGenerate(ctx, "p", nil)
	require.Error(t, err)

	// Circuit is now open; requests fail fast without touching the core.
	_, _, _, err = model.DoGenerate(ctx, "p", nil)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, core.calls)

	// After the reset timeout a probe goes through and closes the circuit.
	time.Sleep(25 * time.Millisecond)
	response, _, _, err := model.DoGenerate(ctx, "p", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", response)

	_, _, _, err = model.DoGenerate(ctx, "p", nil)
	assert.NoError(t, err)
}

func TestBudgetMiddleware_EnforcesLimit(t *testing.T) {
	budget := NewSessionBudget(20)
	core := &flakyCore{BaseProvider: NewBaseProvider("m")}
	model := BudgetMiddleware(budget)(core)
	ctx := context.Background()

	// Each success records 15 tokens (10 in, 5 out).
	_, _, _, err := model.DoGenerate(ctx, "p", nil)
	require.NoError(t, err)
	assert.Equal(t, 15, budget.Consumed())
	assert.Equal(t, 5, budget.Remaining())

	_, _, _, err = model.DoGenerate(ctx, "p", nil)
	require.NoError(t, err)

	_, _, _, err = model.DoGenerate(ctx, "p", nil)
	assert.ErrorIs(t, err, ports.ErrTokenLimitExceeded)
}

func TestBudgetMiddleware_UnlimitedWhenZero(t *testing.T) {
	budget := NewSessionBudget(0)
	core := &flakyCore{BaseProvider: NewBaseProvider("m")}
	model := BudgetMiddleware(budget)(core)

	for i := 0; i < 5; i++ {
		_, _, _, err := model.DoGenerate(context.Background(), "p", nil)
		require.NoError(t, err)
	}
	assert.Equal(t, -1, budget.Remaining())
}

func TestBackend_NormalizesUnavailability(t *testing.T) {
	stub := NewStubProvider(BackendConfig{Model: "stub-model"})
	stub.Err = &ProviderError{Type: ErrorTypeNotFound, Provider: "test", Message: "no such model"}
	backend := &Backend{core: stub, estimator: &SimpleTokenEstimator{}}

	_, err := backend.Generate(context.Background(), "p", nil)
	assert.ErrorIs(t, err, ports.ErrModelNotLoaded)
}

func TestBackend_NormalizesCircuitOpen(t *testing.T) {
	stub := NewStubProvider(BackendConfig{Model: "stub-model"})
	stub.Err = ErrCircuitOpen
	backend := &Backend{core: stub, estimator: &SimpleTokenEstimator{}}

	_, err := backend.Generate(context.Background(), "p", nil)
	assert.ErrorIs(t, err, ports.ErrModelNotLoaded)
}

func TestStubProvider_Deterministic(t *testing.T) {
	stub := NewStubProvider(BackendConfig{Model: "stub-model"})
	a, _, _, err := stub.DoGenerate(context.Background(), "same prompt", nil)
	require.NoError(t, err)
	b, _, _, err := stub.DoGenerate(context.Background(), "same prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestStubProvider_ScriptTakesPriority(t *testing.T) {
	stub := NewStubProvider(BackendConfig{Model: "stub-model"})
	stub.Script("What drew you to backend work?", "How do you test your services?")

	first, _, _, err := stub.DoGenerate(context.Background(), "p1", nil)
	require.NoError(t, err)
	assert.Equal(t, "What drew you to backend work?", first)

	second, _, _, err := stub.DoGenerate(context.Background(), "p2", nil)
	require.NoError(t, err)
	assert.Equal(t, "How do you test your services?", second)
	assert.Equal(t, 2, stub.Calls())
}

func TestNewBackend_Validation(t *testing.T) {
	_, err := NewBackend("openai", BackendConfig{Model: "gpt-4o-mini"})
	assert.ErrorIs(t, err, ErrEmptyAPIKey)

	_, err = NewBackend("nope", BackendConfig{APIKey: "k", Model: "m"})
	assert.Error(t, err)

	backend, err := NewBackend("stub", BackendConfig{Model: "stub-model"})
	require.NoError(t, err)
	assert.Equal(t, "stub-model", backend.GetModel())

	tokens, err := backend.EstimateTokens("four char text")
	require.NoError(t, err)
	assert.Equal(t, 4, tokens)
}

func TestProviderError_Retryability(t *testing.T) {
	retryable := []ErrorType{ErrorTypeRateLimit, ErrorTypeServerError, ErrorTypeTimeout}
	for _, et := range retryable {
		assert.True(t, (&ProviderError{Type: et}).IsRetryable(), string(et))
	}
	permanent := []ErrorType{ErrorTypeAuthentication, ErrorTypeInvalidRequest, ErrorTypeNotFound, ErrorTypeCanceled}
	for _, et := range permanent {
		assert.False(t, (&ProviderError{Type: et}).IsRetryable(), string(et))
	}
}

func TestErrorClassifier_HTTPStatus(t *testing.T) {
	c := &ErrorClassifier{Provider: "test"}
	tests := []struct {
		status int
		want   ErrorType
	}{
		{401, ErrorTypeAuthentication},
		{403, ErrorTypeAuthentication},
		{404, ErrorTypeNotFound},
		{408, ErrorTypeTimeout},
		{429, ErrorTypeRateLimit},
		{400, ErrorTypeInvalidRequest},
		{500, ErrorTypeServerError},
		{503, ErrorTypeServerError},
	}
	for _, tt := range tests {
		got := c.ClassifyHTTPError(tt.status, "msg", errors.New("wrapped"))
		assert.Equal(t, tt.want, got.Type, "status %d", tt.status)
	}
}

func TestErrorClassifier_ContextErrors(t *testing.T) {
	c := &ErrorClassifier{Provider: "test"}

	perr := c.ClassifyContextError(context.DeadlineExceeded)
	require.NotNil(t, perr)
	assert.Equal(t, ErrorTypeTimeout, perr.Type)

	perr = c.ClassifyContextError(context.Canceled)
	require.NotNil(t, perr)
	assert.Equal(t, ErrorTypeCanceled, perr.Type)

	assert.Nil(t, c.ClassifyContextError(errors.New("other")))
}
