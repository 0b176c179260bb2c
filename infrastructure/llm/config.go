package llm

import (
	"fmt"
	"math"
	"net/url"
	"time"
)

// Default values applied when request options omit a parameter.
const (
	// DefaultMaxTokens bounds the response length when callers do not set
	// max_tokens explicitly.
	DefaultMaxTokens = 1000

	// DefaultTimeout is the fallback per-request timeout.
	DefaultTimeout = 30 * time.Second
)

// RequestOptions holds parsed and validated request parameters extracted
// from the options map passed to Generate.
type RequestOptions struct {
	// MaxTokens limits the response length.
	MaxTokens int

	// Model overrides the configured model for this request.
	Model string

	// Temperature controls response randomness. Nil means provider default.
	Temperature *float64

	// TopP controls nucleus sampling. Nil means provider default.
	TopP *float64

	// RepetitionPenalty discourages the model from repeating itself.
	// Nil means provider default. Values above 1.0 penalize repetition.
	RepetitionPenalty *float64

	// SystemPrompt provides provider-agnostic system instructions.
	SystemPrompt string
}

// ParseRequestOptions extracts and validates request parameters from an
// options map. It returns an error on out-of-range or mistyped values
// rather than silently clamping them.
func ParseRequestOptions(options map[string]any, defaultModel string) (*RequestOptions, error) {
	opts := &RequestOptions{
		MaxTokens: DefaultMaxTokens,
		Model:     defaultModel,
	}

	maxTokens, err := ExtractOptionalInt(options, "max_tokens", func(v int) error {
		if v <= 0 {
			return fmt.Errorf("max_tokens must be positive, got %d", v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if maxTokens != nil {
		opts.MaxTokens = *maxTokens
	}

	model, err := ExtractOptionalString(options, "model", nil)
	if err != nil {
		return nil, err
	}
	if model != nil && *model != "" {
		opts.Model = *model
	}

	opts.Temperature, err = ExtractOptionalFloat64(options, "temperature", func(v float64) error {
		if !IsValidTemperature(v) {
			return fmt.Errorf("temperature must be between 0 and 2, got %f", v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	opts.TopP, err = ExtractOptionalFloat64(options, "top_p", func(v float64) error {
		if !IsValidTopP(v) {
			return fmt.Errorf("top_p must be between 0 and 1, got %f", v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	opts.RepetitionPenalty, err = ExtractOptionalFloat64(options, "repetition_penalty", func(v float64) error {
		if !IsValidRepetitionPenalty(v) {
			return fmt.Errorf("repetition_penalty must be between 0.5 and 2, got %f", v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	system, err := ExtractOptionalString(options, "system", nil)
	if err != nil {
		return nil, err
	}
	if system != nil {
		opts.SystemPrompt = *system
	}

	return opts, nil
}

// ExtractOptionalInt extracts an optional integer from an options map with
// validation. Returns nil if the key is absent. JSON decoding produces
// float64 for numbers, so both int and float64 are accepted.
func ExtractOptionalInt(options map[string]any, key string, validator func(int) error) (*int, error) {
	raw, exists := options[key]
	if !exists {
		return nil, nil
	}

	var value int
	switch v := raw.(type) {
	case int:
		value = v
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("%s must be a whole number, got %f", key, v)
		}
		value = int(v)
	default:
		return nil, fmt.Errorf("%s must be a number, got %T", key, raw)
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return nil, err
		}
	}
	return &value, nil
}

// ExtractOptionalString extracts an optional string from an options map
// with validation. Returns nil if the key is absent.
func ExtractOptionalString(options map[string]any, key string, validator func(string) error) (*string, error) {
	raw, exists := options[key]
	if !exists {
		return nil, nil
	}

	value, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%s must be a string, got %T", key, raw)
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return nil, err
		}
	}
	return &value, nil
}

// ExtractOptionalFloat64 extracts an optional float from an options map
// with validation. Returns nil if the key is absent. Integer values are
// accepted and converted.
func ExtractOptionalFloat64(options map[string]any, key string, validator func(float64) error) (*float64, error) {
	raw, exists := options[key]
	if !exists {
		return nil, nil
	}

	var value float64
	switch v := raw.(type) {
	case float64:
		value = v
	case int:
		value = float64(v)
	default:
		return nil, fmt.Errorf("%s must be a number, got %T", key, raw)
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return nil, err
		}
	}
	return &value, nil
}

// IsValidTemperature reports whether the temperature is within the range
// accepted by the supported providers.
func IsValidTemperature(t float64) bool { return t >= 0 && t <= 2 }

// IsValidTopP reports whether the nucleus sampling parameter is valid.
func IsValidTopP(p float64) bool { return p >= 0 && p <= 1 }

// IsValidRepetitionPenalty reports whether the repetition penalty is within
// a sane multiplicative range. 1.0 means no penalty.
func IsValidRepetitionPenalty(p float64) bool { return p >= 0.5 && p <= 2 }

// ValidateBaseURL checks that a base URL override is well formed.
// An empty string is valid and means "use the provider default".
func ValidateBaseURL(baseURL string) error {
	if baseURL == "" {
		return nil
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}
	return nil
}

// ClampFloat64 constrains a value to the inclusive range [min, max].
func ClampFloat64(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// SafeFloat32 converts a float64 to float32, clamping to the float32 range
// to avoid infinities on overflow.
func SafeFloat32(v float64) float32 {
	if v > math.MaxFloat32 {
		return math.MaxFloat32
	}
	if v < -math.MaxFloat32 {
		return -math.MaxFloat32
	}
	return float32(v)
}

// SafeInt32 converts an int to int32, clamping at the int32 bounds.
func SafeInt32(v int) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}
