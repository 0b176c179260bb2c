// Package application wires the interview pipeline components into the
// request-level operations the API layer consumes: question generation,
// conversation scoring, and overall feedback.
package application

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-parley/infrastructure/interview"
	"github.com/ahrav/go-parley/internal/domain"
)

// BackendConfig selects and tunes the model backend.
type BackendConfig struct {
	// Provider is the backend type: openai, anthropic, google, or stub.
	Provider string `yaml:"provider" validate:"required,oneof=openai anthropic google stub"`

	// Model is the model name passed to the provider.
	Model string `yaml:"model" validate:"required"`

	// APIKey authenticates against the provider. Unused by the stub.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider endpoint when set.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds each backend request.
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`

	// RequestsPerSecond and Burst configure backend rate limiting.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gt=0"`
	Burst             int     `yaml:"burst" validate:"gt=0"`

	// CircuitFailures and CircuitReset configure the circuit breaker.
	CircuitFailures int           `yaml:"circuit_failures" validate:"gt=0"`
	CircuitReset    time.Duration `yaml:"circuit_reset" validate:"gt=0"`

	// SessionTokenBudget caps total tokens per session; zero disables it.
	SessionTokenBudget int `yaml:"session_token_budget" validate:"gte=0"`
}

// PipelineConfig aggregates every component's tuning policy. All numeric
// constants live here so behavior can be adjusted without code changes.
type PipelineConfig struct {
	Backend    BackendConfig                `yaml:"backend"`
	Analyzer   interview.AnalyzerConfig     `yaml:"analyzer"`
	Assembler  interview.AssemblerConfig    `yaml:"assembler"`
	Validator  interview.ValidatorConfig    `yaml:"validator"`
	Engine     interview.EngineConfig       `yaml:"engine"`
	Judge      interview.JudgeConfig        `yaml:"judge"`
	Aggregator interview.AggregatorConfig   `yaml:"aggregator"`
}

// DefaultPipelineConfig returns the standard policy for every component,
// with a stub backend so the pipeline works offline until a provider is
// configured.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Backend: BackendConfig{
			Provider:          "stub",
			Model:             "stub-model",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 10,
			Burst:             20,
			CircuitFailures:   5,
			CircuitReset:      30 * time.Second,
		},
		Analyzer:   interview.DefaultAnalyzerConfig(),
		Assembler:  interview.DefaultAssemblerConfig(),
		Validator:  interview.DefaultValidatorConfig(),
		Engine:     interview.DefaultEngineConfig(),
		Judge:      interview.DefaultJudgeConfig(),
		Aggregator: interview.DefaultAggregatorConfig(),
	}
}

// LoadConfig reads a YAML pipeline configuration, layering it over the
// defaults. Unknown fields are rejected so typos fail loudly.
func LoadConfig(r io.Reader) (PipelineConfig, error) {
	config := DefaultPipelineConfig()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		if err == io.EOF {
			return config, nil
		}
		return PipelineConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := validate.Struct(config); err != nil {
		return PipelineConfig{}, fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, err)
	}
	return config, nil
}
