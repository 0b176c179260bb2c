package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-parley/internal/domain"
	"github.com/ahrav/go-parley/internal/ports"
	"github.com/ahrav/go-parley/internal/testutils"
)

func newTestService(t *testing.T, backend ports.ModelBackend) *Service {
	t.Helper()
	service, err := NewService(backend, DefaultPipelineConfig())
	require.NoError(t, err)
	return service
}

func TestService_GenerateQuestion(t *testing.T) {
	backend := testutils.NewMockBackend(
		"Can you walk me through how you scaled your Redis deployment?")
	service := newTestService(t, backend)

	resp, err := service.GenerateQuestion(context.Background(), QuestionRequest{
		Role:           "Backend Engineer",
		Level:          "senior",
		Skills:         []string{"Go", "Redis"},
		PreviousAnswer: "I built the session store in redis. For example, we sharded it across three nodes.",
		QuestionNumber: 4,
		TotalQuestions: 10,
	})
	require.NoError(t, err)

	assert.True(t, resp.Accepted)
	assert.Equal(t, "Can you walk me through how you scaled your Redis deployment?", resp.Question)
	assert.Greater(t, resp.GenerationTime, 0.0)
	require.NotNil(t, resp.Analysis)
	assert.Contains(t, resp.Analysis.Technologies, "redis")
	assert.NotEmpty(t, resp.Strategy)

	// The assembled prompt carries role, level, and strategy context.
	prompt := backend.Calls[0]
	assert.Contains(t, prompt, "Question 4 of 10")
	system := backend.Options[0]["system"].(string)
	assert.Contains(t, system, "Senior Backend Engineer")
}

func TestService_GenerateQuestion_OpeningTurn(t *testing.T) {
	backend := testutils.NewMockBackend(
		"Can you tell me a little about your background as a developer?")
	service := newTestService(t, backend)

	// No previous answer, no role, no skills: everything defaults.
	resp, err := service.GenerateQuestion(context.Background(), QuestionRequest{})
	require.NoError(t, err)

	assert.True(t, resp.Accepted)
	assert.Nil(t, resp.Analysis)
	assert.Empty(t, resp.Strategy)
	assert.Contains(t, backend.Calls[0], "Question 1 of 10")
}

func TestService_GenerateQuestion_CVTargeting(t *testing.T) {
	backend := testutils.NewMockBackend(
		"Can you tell me how you would approach learning Kubernetes?")
	service := newTestService(t, backend)

	_, err := service.GenerateQuestion(context.Background(), QuestionRequest{
		Skills: []string{"Go", "Kubernetes"},
		CVText: "Five years writing Go services.",
	})
	require.NoError(t, err)

	// Kubernetes is missing from the CV, so the prompt flags it.
	assert.Contains(t, backend.Calls[0], "Kubernetes")
}

func TestService_GenerateQuestion_PropagatesBackendErrors(t *testing.T) {
	backend := testutils.NewMockBackend()
	backend.Err = ports.ErrModelNotLoaded
	service := newTestService(t, backend)

	_, err := service.GenerateQuestion(context.Background(), QuestionRequest{})
	assert.ErrorIs(t, err, ports.ErrModelNotLoaded)
}

func TestService_ScoreConversation(t *testing.T) {
	backend := testutils.NewMockBackend(
		`{"relevance": 0.8, "depth": 0.7, "clarity": 0.9, "feedback": ["solid"]}`)
	service := newTestService(t, backend)

	records, err := service.ScoreConversation(context.Background(), []domain.QAPair{
		{Question: "Can you describe your testing approach?", Answer: "We test everything."},
		{Question: "How would you scale this?", Answer: "Horizontally."},
	})
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].Sequence)
	assert.Equal(t, 2, records[1].Sequence)
	assert.Greater(t, records[0].FinalScore, 0.0)
}

func TestService_OverallFeedback(t *testing.T) {
	narrative := `Assessment: A capable candidate who communicated clearly and backed answers with real project experience.
Strengths:
- Strong distributed systems instincts
- Concrete production examples
Weaknesses:
- Light on security topics
- Few testing specifics
Recommendations: Deepen security fundamentals and practice articulating test strategy.`

	service := newTestService(t, testutils.NewMockBackend(narrative))

	resp, err := service.OverallFeedback(context.Background(), FeedbackRequest{
		Conversation: []domain.QAScoreRecord{
			{Sequence: 1, Question: "q1?", Answer: "a1", FinalScore: 0.9},
			{Sequence: 2, Question: "q2?", Answer: "a2", FinalScore: 0.8},
		},
		Role:      "Backend Engineer",
		Seniority: "Senior",
		Skills:    []string{"Go"},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.BandExcellent, resp.Overview)
	assert.InDelta(t, 0.85, resp.AverageScore, 1e-9)
	assert.Len(t, resp.Strengths, 2)
	assert.Len(t, resp.Weaknesses, 2)
	assert.NotEmpty(t, resp.Assessment)
	assert.NotEmpty(t, resp.Recommendations)
}

func TestService_OverallFeedback_RejectsOutOfRangeScores(t *testing.T) {
	service := newTestService(t, testutils.NewMockBackend(""))

	_, err := service.OverallFeedback(context.Background(), FeedbackRequest{
		Conversation: []domain.QAScoreRecord{
			{Sequence: 1, FinalScore: 1.3},
		},
	})
	require.Error(t, err)

	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "stub", config.Backend.Provider)
	assert.Equal(t, 3, config.Engine.MaxAttempts)
}

func TestLoadConfig_Overrides(t *testing.T) {
	yamlText := `
engine:
  max_attempts: 5
validator:
  min_words: 4
  max_words: 30
`
	config, err := LoadConfig(strings.NewReader(yamlText))
	require.NoError(t, err)
	assert.Equal(t, 5, config.Engine.MaxAttempts)
	assert.Equal(t, 4, config.Validator.MinWords)
	assert.Equal(t, 30, config.Validator.MaxWords)
	// Untouched sections keep their defaults.
	assert.Equal(t, 0.85, config.Aggregator.Bands.Excellent)
}

func TestLoadConfig_RejectsUnknownFields(t *testing.T) {
	_, err := LoadConfig(strings.NewReader("engine:\n  max_attemps: 5\n"))
	assert.Error(t, err)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	_, err := LoadConfig(strings.NewReader("backend:\n  provider: nope\n"))
	assert.Error(t, err)
}
