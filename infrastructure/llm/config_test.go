package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestOptions_Defaults(t *testing.T) {
	opts, err := ParseRequestOptions(nil, "base-model")
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxTokens, opts.MaxTokens)
	assert.Equal(t, "base-model", opts.Model)
	assert.Nil(t, opts.Temperature)
	assert.Nil(t, opts.TopP)
	assert.Nil(t, opts.RepetitionPenalty)
	assert.Empty(t, opts.SystemPrompt)
}

func TestParseRequestOptions_FullSet(t *testing.T) {
	opts, err := ParseRequestOptions(map[string]any{
		"max_tokens":         256,
		"model":              "override-model",
		"temperature":        0.9,
		"top_p":              0.95,
		"repetition_penalty": 1.2,
		"system":             "You are an interviewer.",
	}, "base-model")
	require.NoError(t, err)

	assert.Equal(t, 256, opts.MaxTokens)
	assert.Equal(t, "override-model", opts.Model)
	require.NotNil(t, opts.Temperature)
	assert.InDelta(t, 0.9, *opts.Temperature, 1e-9)
	require.NotNil(t, opts.TopP)
	assert.InDelta(t, 0.95, *opts.TopP, 1e-9)
	require.NotNil(t, opts.RepetitionPenalty)
	assert.InDelta(t, 1.2, *opts.RepetitionPenalty, 1e-9)
	assert.Equal(t, "You are an interviewer.", opts.SystemPrompt)
}

func TestParseRequestOptions_JSONNumbers(t *testing.T) {
	// JSON decoding yields float64 for every number.
	opts, err := ParseRequestOptions(map[string]any{"max_tokens": float64(128)}, "m")
	require.NoError(t, err)
	assert.Equal(t, 128, opts.MaxTokens)

	_, err = ParseRequestOptions(map[string]any{"max_tokens": 12.5}, "m")
	assert.Error(t, err)
}

func TestParseRequestOptions_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		options map[string]any
	}{
		{"negative max_tokens", map[string]any{"max_tokens": -1}},
		{"temperature too high", map[string]any{"temperature": 2.5}},
		{"temperature wrong type", map[string]any{"temperature": "hot"}},
		{"top_p out of range", map[string]any{"top_p": 1.5}},
		{"repetition_penalty too low", map[string]any{"repetition_penalty": 0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequestOptions(tt.options, "m")
			assert.Error(t, err)
		})
	}
}

func TestValidateBaseURL(t *testing.T) {
	assert.NoError(t, ValidateBaseURL(""))
	assert.NoError(t, ValidateBaseURL("https://api.example.com/v1"))
	assert.Error(t, ValidateBaseURL("ftp://example.com"))
	assert.Error(t, ValidateBaseURL("https://"))
}

func TestClampFloat64(t *testing.T) {
	assert.Equal(t, 0.0, ClampFloat64(-1, 0, 2))
	assert.Equal(t, 2.0, ClampFloat64(3, 0, 2))
	assert.Equal(t, 1.5, ClampFloat64(1.5, 0, 2))
}

func TestTokenEstimators(t *testing.T) {
	simple := &SimpleTokenEstimator{}
	assert.Equal(t, 0, simple.EstimateTokens(""))
	assert.Equal(t, 1, simple.EstimateTokens("hi"))
	assert.Equal(t, 3, simple.EstimateTokens("twelve chars"))

	word := &WordBasedEstimator{}
	assert.Equal(t, 0, word.EstimateTokens(""))
	assert.Equal(t, 5, word.EstimateTokens("one two three"))

	char := &CharBasedEstimator{CharsPerToken: 2}
	assert.Equal(t, 3, char.EstimateTokens("word"))
}
