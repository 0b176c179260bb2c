package ports

import (
	"errors"
	"fmt"
	"time"
)

// Common infrastructure errors that can occur during model-backend
// interactions.
var (
	// ErrModelNotLoaded indicates that the model backend is not loaded or
	// not ready. This is fatal to the request: the pipeline propagates it
	// immediately instead of retrying.
	ErrModelNotLoaded = errors.New("model not loaded")

	// ErrTokenLimitExceeded indicates that a token budget has been
	// exceeded.
	ErrTokenLimitExceeded = errors.New("token limit exceeded")

	// ErrRateLimited indicates that the service has rate limited the
	// request.
	ErrRateLimited = errors.New("rate limited")

	// ErrServiceUnavailable indicates that the external service is
	// unavailable.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrInvalidResponse indicates that the backend returned a response
	// the pipeline could not use.
	ErrInvalidResponse = errors.New("invalid response")
)

// BackendError represents an error from the model backend.
// It includes details about the model, operation, and any rate limit
// information.
type BackendError struct {
	// Model is the identifier of the model that generated the error.
	Model string

	// Operation is the name of the operation that failed.
	Operation string

	// Err is the underlying error that occurred.
	Err error

	// TokensUsed is the number of tokens consumed before the error
	// occurred.
	TokensUsed int

	// RetryAfter indicates how long to wait before retrying, if
	// applicable.
	RetryAfter *time.Duration
}

// Error implements the error interface for BackendError.
func (e *BackendError) Error() string {
	msg := fmt.Sprintf("backend error: model=%s, operation=%s, err=%v", e.Model, e.Operation, e.Err)
	if e.TokensUsed > 0 {
		msg += fmt.Sprintf(", tokens_used=%d", e.TokensUsed)
	}
	if e.RetryAfter != nil {
		msg += fmt.Sprintf(", retry_after=%v", *e.RetryAfter)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *BackendError) Unwrap() error { return e.Err }

// IsRetryable returns true if the error is temporary and the operation can
// be retried at the transport layer. ErrModelNotLoaded is deliberately not
// retryable: a model that is not loaded will not recover within a request.
func (e *BackendError) IsRetryable() bool {
	return errors.Is(e.Err, ErrRateLimited) ||
		errors.Is(e.Err, ErrServiceUnavailable) ||
		errors.Is(e.Err, ErrTimeout)
}

// NewBackendError creates a new BackendError with the given details.
func NewBackendError(model, operation string, err error) *BackendError {
	return &BackendError{
		Model:     model,
		Operation: operation,
		Err:       err,
	}
}
