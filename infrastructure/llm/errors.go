package llm

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors shared by all providers.
var (
	// ErrEmptyAPIKey indicates a provider was constructed without
	// credentials.
	ErrEmptyAPIKey = errors.New("API key cannot be empty")

	// ErrEmptyResponse indicates the provider returned no content.
	ErrEmptyResponse = errors.New("provider returned empty response")

	// ErrNoResponseChoice indicates the provider response contained no
	// choices to read from.
	ErrNoResponseChoice = errors.New("provider returned no response choices")

	// ErrCircuitOpen indicates the circuit breaker is rejecting requests
	// because the provider has been failing.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// ErrorType classifies provider failures so callers can decide on retry
// behavior without parsing provider-specific messages.
type ErrorType string

const (
	ErrorTypeAuthentication ErrorType = "authentication"
	ErrorTypeRateLimit      ErrorType = "rate_limit"
	ErrorTypeInvalidRequest ErrorType = "invalid_request"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeServerError    ErrorType = "server_error"
	ErrorTypeTimeout        ErrorType = "timeout"
	ErrorTypeCanceled       ErrorType = "canceled"
	ErrorTypeUnknown        ErrorType = "unknown"
)

// ProviderError wraps a provider failure with classification metadata.
type ProviderError struct {
	// Type classifies the failure for retry decisions.
	Type ErrorType

	// Provider names the provider that produced the error.
	Provider string

	// StatusCode holds the HTTP status when the failure came from an API
	// response, zero otherwise.
	StatusCode int

	// Message is a human-readable description.
	Message string

	// WrappedError preserves the underlying error for errors.Is/As.
	WrappedError error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Provider, e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Type, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.WrappedError }

// IsRetryable reports whether the failure is transient.
func (e *ProviderError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeRateLimit, ErrorTypeServerError, ErrorTypeTimeout:
		return true
	}
	return false
}

// ErrorClassifier maps provider and transport failures onto the shared
// error taxonomy. It keeps HTTP status interpretation in one place so each
// provider adapter stays small.
type ErrorClassifier struct {
	// Provider identifies which provider's errors are being classified.
	Provider string
}

// ClassifyHTTPError builds a ProviderError from an HTTP status code.
func (c *ErrorClassifier) ClassifyHTTPError(statusCode int, message string, wrapped error) *ProviderError {
	errType := ErrorTypeUnknown
	switch {
	case statusCode == 401 || statusCode == 403:
		errType = ErrorTypeAuthentication
	case statusCode == 404:
		errType = ErrorTypeNotFound
	case statusCode == 429:
		errType = ErrorTypeRateLimit
	case statusCode == 408:
		errType = ErrorTypeTimeout
	case statusCode >= 400 && statusCode < 500:
		errType = ErrorTypeInvalidRequest
	case statusCode >= 500:
		errType = ErrorTypeServerError
	}

	return &ProviderError{
		Type:         errType,
		Provider:     c.Provider,
		StatusCode:   statusCode,
		Message:      message,
		WrappedError: wrapped,
	}
}

// ClassifyContextError builds a ProviderError from a context cancellation
// or deadline failure. Returns nil if err is not a context error.
func (c *ErrorClassifier) ClassifyContextError(err error) *ProviderError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &ProviderError{
			Type:         ErrorTypeTimeout,
			Provider:     c.Provider,
			Message:      "request deadline exceeded",
			WrappedError: err,
		}
	case errors.Is(err, context.Canceled):
		return &ProviderError{
			Type:         ErrorTypeCanceled,
			Provider:     c.Provider,
			Message:      "request canceled",
			WrappedError: err,
		}
	}
	return nil
}
