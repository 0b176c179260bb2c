package ports

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackendError_Error(t *testing.T) {
	retryAfter := 5 * time.Second

	tests := []struct {
		name     string
		err      *BackendError
		expected string
	}{
		{
			name:     "basic error",
			err:      NewBackendError("interview-7b", "generate", ErrModelNotLoaded),
			expected: "backend error: model=interview-7b, operation=generate, err=model not loaded",
		},
		{
			name: "includes tokens and retry hint",
			err: &BackendError{
				Model:      "interview-7b",
				Operation:  "generate",
				Err:        ErrRateLimited,
				TokensUsed: 42,
				RetryAfter: &retryAfter,
			},
			expected: "backend error: model=interview-7b, operation=generate, err=rate limited, tokens_used=42, retry_after=5s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestBackendError_IsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		wrapped   error
		retryable bool
	}{
		{name: "rate limited is retryable", wrapped: ErrRateLimited, retryable: true},
		{name: "service unavailable is retryable", wrapped: ErrServiceUnavailable, retryable: true},
		{name: "timeout is retryable", wrapped: ErrTimeout, retryable: true},
		{name: "model not loaded is not retryable", wrapped: ErrModelNotLoaded, retryable: false},
		{name: "invalid response is not retryable", wrapped: ErrInvalidResponse, retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewBackendError("m", "generate", tt.wrapped)
			assert.Equal(t, tt.retryable, err.IsRetryable())
		})
	}
}

func TestBackendError_Unwrap(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewBackendError("m", "generate", ErrModelNotLoaded))
	assert.True(t, errors.Is(wrapped, ErrModelNotLoaded))
}
