// Package llm provides the model-backend implementation for the interview
// pipeline, with built-in support for rate limiting, circuit breaking,
// metrics, and tracing.
//
// The package abstracts multiple providers (OpenAI, Anthropic, Google, and a
// deterministic stub) behind the ports.ModelBackend capability interface
// while adding operational cross-cutting concerns through a middleware
// pattern. The pipeline never talks to a provider SDK directly; it holds a
// ModelBackend and nothing else.
//
// Basic usage:
//
//	backend, err := llm.NewBackend("openai", llm.BackendConfig{
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	    Model:  "gpt-4o-mini",
//	})
//	text, err := backend.Generate(ctx, "Ask a warm-up question.", nil)
//
// Usage with middleware:
//
//	backend, err := llm.NewBackend("anthropic", llm.BackendConfig{
//	    APIKey: os.Getenv("ANTHROPIC_API_KEY"),
//	    Model:  "claude-3-5-sonnet-20241022",
//	    Middleware: []llm.Middleware{
//	        llm.RateLimitMiddleware(10, 20),
//	        llm.CircuitBreakerMiddleware(5, 30*time.Second),
//	        llm.MetricsMiddleware(collector),
//	    },
//	})
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahrav/go-parley/internal/ports"
)

// CoreModel defines the minimal interface that generation providers must
// implement. It abstracts the raw request path so the middleware chain can
// wrap any conforming implementation.
type CoreModel interface {
	// DoGenerate sends a prompt to the provider and returns the generated
	// text along with input and output token counts. The opts map carries
	// sampling parameters such as temperature, top_p, and max_tokens.
	DoGenerate(
		ctx context.Context,
		prompt string,
		opts map[string]any,
	) (
		response string,
		tokensIn, tokensOut int,
		err error,
	)

	// GetModel returns the currently configured model name.
	GetModel() string

	// SetModel updates the model to use for subsequent requests.
	SetModel(model string)
}

// TokenEstimator provides pluggable token estimation strategies.
// Providers tokenize differently, so this interface allows customization of
// token counting for budget tracking and prompt-length control.
type TokenEstimator interface {
	// EstimateTokens returns an approximate token count for the given text.
	EstimateTokens(text string) int
}

// Middleware wraps a CoreModel implementation to add cross-cutting
// functionality. Middleware composes features like rate limiting, circuit
// breaking, and metrics collection without modifying provider logic.
type Middleware func(CoreModel) CoreModel

// BackendConfig holds all configuration options for creating a model
// backend.
type BackendConfig struct {
	// APIKey authenticates requests to the provider.
	APIKey string

	// Model specifies which model to use for requests.
	Model string

	// BaseURL overrides the default API endpoint for the provider.
	// Leave empty to use the provider's default endpoint.
	BaseURL string

	// Timeout sets the maximum duration for individual requests.
	// Zero value means no timeout.
	Timeout time.Duration

	// TokenEstimator provides custom token counting logic.
	// If nil, a simple character-based estimator is used.
	TokenEstimator TokenEstimator

	// Middleware allows custom middleware insertion.
	// These are applied in the order specified.
	Middleware []Middleware
}

var _ ports.ModelBackend = (*Backend)(nil)

// Backend implements the ports.ModelBackend interface over a provider core
// wrapped with the configured middleware chain.
type Backend struct {
	core      CoreModel
	estimator TokenEstimator
}

// NewBackend creates a model backend for the named provider type.
// It assembles the middleware chain and validates configuration before
// returning a ready-to-use backend.
func NewBackend(providerType string, config BackendConfig) (*Backend, error) {
	if config.APIKey == "" && providerType != "stub" {
		return nil, ErrEmptyAPIKey
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	factory, ok := providerFactories[providerType]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", providerType)
	}

	core, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	// Apply middleware in reverse order so the first middleware is the
	// outermost.
	for i := len(config.Middleware) - 1; i >= 0; i-- {
		core = config.Middleware[i](core)
	}

	estimator := config.TokenEstimator
	if estimator == nil {
		estimator = &SimpleTokenEstimator{}
	}

	return &Backend{core: core, estimator: estimator}, nil
}

// Generate sends a prompt to the model and returns the generated text.
// Unavailability conditions (open circuit, missing model) are normalized to
// ports.ErrModelNotLoaded so the pipeline can distinguish "backend down"
// from text-quality failures.
func (b *Backend) Generate(ctx context.Context, prompt string, options map[string]any) (string, error) {
	response, _, _, err := b.core.DoGenerate(ctx, prompt, options)
	if err != nil {
		return "", b.normalizeError(err)
	}
	return response, nil
}

// GenerateWithUsage sends a prompt to the model and also returns input and
// output token counts for budget tracking.
func (b *Backend) GenerateWithUsage(
	ctx context.Context,
	prompt string,
	options map[string]any,
) (string, int, int, error) {
	response, tokensIn, tokensOut, err := b.core.DoGenerate(ctx, prompt, options)
	if err != nil {
		return "", 0, 0, b.normalizeError(err)
	}
	return response, tokensIn, tokensOut, nil
}

// EstimateTokens returns an approximate token count for the given text.
func (b *Backend) EstimateTokens(text string) (int, error) {
	return b.estimator.EstimateTokens(text), nil
}

// GetModel returns the currently configured model name from the underlying
// provider.
func (b *Backend) GetModel() string { return b.core.GetModel() }

// normalizeError maps provider failures onto the ports error taxonomy.
// An open circuit or a model the provider cannot find both mean the backend
// cannot serve generations right now, which the pipeline treats as
// model-not-loaded and never retries.
func (b *Backend) normalizeError(err error) error {
	if errors.Is(err, ErrCircuitOpen) {
		return fmt.Errorf("%w: %v", ports.ErrModelNotLoaded, err)
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) {
		switch provErr.Type {
		case ErrorTypeNotFound, ErrorTypeAuthentication:
			return fmt.Errorf("%w: %v", ports.ErrModelNotLoaded, err)
		case ErrorTypeRateLimit:
			return ports.NewBackendError(b.GetModel(), "generate",
				fmt.Errorf("%w: %v", ports.ErrRateLimited, err))
		case ErrorTypeServerError:
			return ports.NewBackendError(b.GetModel(), "generate",
				fmt.Errorf("%w: %v", ports.ErrServiceUnavailable, err))
		case ErrorTypeTimeout:
			return ports.NewBackendError(b.GetModel(), "generate",
				fmt.Errorf("%w: %v", ports.ErrTimeout, err))
		}
	}

	return fmt.Errorf("generation failed: %w", err)
}

// SimpleTokenEstimator provides basic character-based token estimation.
// It assumes roughly 4 characters per token, which works reasonably well
// for English text.
type SimpleTokenEstimator struct{}

// EstimateTokens returns an approximate token count using character-based
// heuristics.
func (e *SimpleTokenEstimator) EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// ProviderFactory creates a CoreModel implementation from configuration.
// This signature allows the factory registry to create provider instances
// without knowing their implementation details.
type ProviderFactory func(BackendConfig) (CoreModel, error)

// Provider factory registry for extensibility.
// Custom providers can be registered at runtime while maintaining type
// safety and initialization validation.
var providerFactories = map[string]ProviderFactory{}

// RegisterProviderFactory allows registration of custom provider factories.
// This enables extension with additional providers without modifying the
// core package.
func RegisterProviderFactory(providerType string, factory ProviderFactory) {
	providerFactories[providerType] = factory
}
