package interview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator(DefaultValidatorConfig())
	require.NoError(t, err)
	return v
}

func TestValidator_AcceptsNaturalQuestions(t *testing.T) {
	v := newTestValidator(t)

	questions := []string{
		"Can you tell me about your experience with Kubernetes in production?",
		"How would you design a rate limiter for a public API you own?",
		"Tell me about a time you had to debug a failure under pressure, would you?",
		"What was the most difficult technical decision you made last year?",
		"Walk me through how you would migrate your database without downtime?",
	}
	for _, q := range questions {
		ok, reason := v.Validate(q)
		assert.True(t, ok, "%s rejected: %s", q, reason)
	}
}

func TestValidator_ChecksInOrder(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name     string
		question string
		want     RejectionReason
	}{
		{"empty", "", ReasonEmpty},
		{"whitespace only", "   ", ReasonEmpty},
		{"cjk characters", "你能介绍一下你的经验吗?", ReasonNonEnglish},
		{"full width punctuation", "Can you describe your experience？", ReasonNonEnglish},
		{"no question mark", "Explain the concept of dependency injection", ReasonNoQuestionMark},
		{"too short", "Can you code?", ReasonTooFewWords},
		{
			"too long",
			"Can you describe in detail every aspect of your approach to building testing deploying monitoring scaling securing documenting and maintaining every microservice you have ever worked on across all of your previous roles and every technology stack and team you have ever been part of?",
			ReasonTooManyWords,
		},
		{"robotic opening", "Explain the difference between threads and your processes?", ReasonRoboticOpening},
		{"define opening", "Define polymorphism for me in your own words?", ReasonRoboticOpening},
		{"no natural starter", "A good engineer always writes tests for your code?", ReasonNoNaturalStarter},
		{"no second person", "Tell me how the team handled the outage last year?", ReasonNotSecondPerson},
		{"doubled article", "Can you describe the the architecture of your last project?", ReasonBrokenGrammar},
		{"doubled modal", "How would would you rate your experience with containers?", ReasonBrokenGrammar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := v.Validate(tt.question)
			assert.False(t, ok)
			assert.Equal(t, tt.want, reason)
		})
	}
}

func TestValidator_SecondPersonVariants(t *testing.T) {
	v := newTestValidator(t)

	ok, _ := v.Validate("Can you walk me through what you built most recently?")
	assert.True(t, ok)

	ok, reason := v.Validate("Walk me through how the incident was resolved that night?")
	assert.False(t, ok)
	assert.Equal(t, ReasonNotSecondPerson, reason)
}

func TestValidator_WordBounds(t *testing.T) {
	config := ValidatorConfig{MinWords: 3, MaxWords: 6}
	v, err := NewValidator(config)
	require.NoError(t, err)

	ok, _ := v.Validate("Can you explain your approach?")
	assert.True(t, ok)

	ok, reason := v.Validate("Can you?")
	assert.False(t, ok)
	assert.Equal(t, ReasonTooFewWords, reason)

	ok, reason = v.Validate("Can you explain your whole approach to testing?")
	assert.False(t, ok)
	assert.Equal(t, ReasonTooManyWords, reason)
}

func TestNewValidator_RejectsInvalidConfig(t *testing.T) {
	_, err := NewValidator(ValidatorConfig{MinWords: 10, MaxWords: 5})
	assert.Error(t, err)
}

func TestQuestionSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, questionSimilarity(
		"Can you describe your experience with Go?",
		"can you describe  your experience with go?"))

	assert.Greater(t, questionSimilarity(
		"Can you describe your experience with Go?",
		"Can you describe your experience with Rust?"), 0.8)

	assert.Less(t, questionSimilarity(
		"Can you describe your experience with Go?",
		"What was the hardest production incident you handled?"), 0.5)

	assert.False(t, isNearDuplicate("Can you describe your experience?", "", 0.85))
	assert.True(t, isNearDuplicate(
		"Can you describe your experience with Go?",
		"Can you describe your experience with Go?", 0.85))
}
