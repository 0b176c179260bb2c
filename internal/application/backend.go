package application

import (
	"github.com/ahrav/go-parley/infrastructure/llm"
	"github.com/ahrav/go-parley/internal/ports"
)

// BuildBackend assembles the configured provider with the full middleware
// chain: tracing outermost, then metrics, rate limiting, circuit breaking,
// retry, budget enforcement, and timeout closest to the provider call.
// A nil collector skips metrics; a zero budget disables enforcement.
func BuildBackend(config BackendConfig, collector ports.MetricsCollector) (*llm.Backend, error) {
	middleware := []llm.Middleware{
		llm.TracingMiddleware(),
	}
	if collector != nil {
		middleware = append(middleware, llm.MetricsMiddleware(collector))
	}
	middleware = append(middleware,
		llm.RateLimitMiddleware(config.RequestsPerSecond, config.Burst),
		llm.CircuitBreakerMiddleware(config.CircuitFailures, config.CircuitReset),
		llm.RetryMiddleware(llm.DefaultRetryConfig()),
	)
	if config.SessionTokenBudget > 0 {
		middleware = append(middleware,
			llm.BudgetMiddleware(llm.NewSessionBudget(config.SessionTokenBudget)))
	}
	middleware = append(middleware, llm.TimeoutMiddleware(config.Timeout))

	return llm.NewBackend(config.Provider, llm.BackendConfig{
		APIKey:     config.APIKey,
		Model:      config.Model,
		BaseURL:    config.BaseURL,
		Timeout:    config.Timeout,
		Middleware: middleware,
	})
}
