package application

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-parley/infrastructure/interview"
	"github.com/ahrav/go-parley/internal/domain"
	"github.com/ahrav/go-parley/internal/ports"
)

var validate = validator.New()

// QuestionRequest is the question-generation request consumed from the
// API layer.
type QuestionRequest struct {
	// Role and Level describe the position; both fall back to defaults
	// when empty.
	Role  string `json:"role"`
	Level string `json:"level"`

	// Skills the interview should cover.
	Skills []string `json:"skills"`

	// PreviousQuestion and PreviousAnswer are the candidate's latest
	// exchange; both optional for the opening question.
	PreviousQuestion string `json:"previous_question,omitempty"`
	PreviousAnswer   string `json:"previous_answer,omitempty"`

	// ConversationHistory holds prior exchanges, oldest first.
	ConversationHistory []domain.QAPair `json:"conversation_history,omitempty"`

	// QuestionNumber and TotalQuestions locate the interview phase.
	QuestionNumber int `json:"question_number"`
	TotalQuestions int `json:"total_questions"`

	// CVText, when present, is parsed for skill-gap targeting.
	CVText string `json:"cv_text,omitempty"`

	// MaxTokens and Temperature tune generation per request.
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// QuestionResponse is the accepted (or best-available) question plus
// generation diagnostics.
type QuestionResponse struct {
	Question       string                 `json:"question"`
	GenerationTime float64                `json:"generation_time"`
	Strategy       domain.Strategy        `json:"strategy,omitempty"`
	Analysis       *domain.AnswerAnalysis `json:"analysis,omitempty"`
	Attempts       int                    `json:"attempts"`
	Accepted       bool                   `json:"accepted"`
}

// FeedbackRequest asks for the final report over a scored conversation.
type FeedbackRequest struct {
	Conversation []domain.QAScoreRecord `json:"conversation"`
	Role         string                 `json:"role"`
	Seniority    string                 `json:"seniority"`
	Skills       []string               `json:"skills"`
}

// FeedbackResponse is the synthesized overall feedback.
type FeedbackResponse struct {
	Overview        domain.OverviewBand `json:"overview"`
	AverageScore    float64             `json:"average_score"`
	Assessment      string              `json:"assessment"`
	Strengths       []string            `json:"strengths"`
	Weaknesses      []string            `json:"weaknesses"`
	Recommendations string              `json:"recommendations"`
	GenerationTime  float64             `json:"generation_time"`
}

// Service runs the full interview pipeline against one model backend.
// It is stateless across calls; concurrent use is safe as long as the
// backend tolerates concurrent requests.
type Service struct {
	analyzer   *interview.Analyzer
	extractor  *interview.SkillGapExtractor
	assembler  *interview.Assembler
	engine     *interview.Engine
	judge      *interview.Judge
	aggregator *interview.Aggregator

	defaultMaxTokens   int
	defaultTemperature float64
}

// NewService builds the pipeline from configuration over an injected
// backend.
func NewService(backend ports.ModelBackend, config PipelineConfig) (*Service, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: backend", domain.ErrEmptyValue)
	}

	analyzer, err := interview.NewAnalyzer(config.Analyzer)
	if err != nil {
		return nil, err
	}
	assembler, err := interview.NewAssembler(config.Assembler)
	if err != nil {
		return nil, err
	}
	validator, err := interview.NewValidator(config.Validator)
	if err != nil {
		return nil, err
	}
	engine, err := interview.NewEngine(backend, validator, config.Engine)
	if err != nil {
		return nil, err
	}
	judge, err := interview.NewJudge(backend, analyzer, config.Judge)
	if err != nil {
		return nil, err
	}
	aggregator, err := interview.NewAggregator(backend, config.Aggregator)
	if err != nil {
		return nil, err
	}

	return &Service{
		analyzer:           analyzer,
		extractor:          interview.NewSkillGapExtractor(),
		assembler:          assembler,
		engine:             engine,
		judge:              judge,
		aggregator:         aggregator,
		defaultMaxTokens:   150,
		defaultTemperature: 0.7,
	}, nil
}

// WithMetrics attaches a collector to the pipeline stages that record
// operational counters. A nil collector disables recording.
func (s *Service) WithMetrics(collector ports.MetricsCollector) *Service {
	s.engine.WithMetrics(collector)
	s.judge.WithMetrics(collector)
	s.aggregator.WithMetrics(collector)
	return s
}

// GenerateQuestion runs the analyze-assemble-generate loop for one turn.
// Input anomalies are absorbed with defaults; only backend errors
// propagate.
func (s *Service) GenerateQuestion(ctx context.Context, req QuestionRequest) (*QuestionResponse, error) {
	start := time.Now()

	var analysis *domain.AnswerAnalysis
	var strategy domain.Strategy
	if req.PreviousAnswer != "" {
		a := s.analyzer.Analyze(req.PreviousAnswer)
		analysis = &a
		strategy = a.SuggestedStrategy
	}

	var profile *domain.SkillProfile
	if req.CVText != "" {
		p := s.extractor.Extract(req.CVText, req.Skills)
		profile = &p
	}

	questionNumber := req.QuestionNumber
	if questionNumber < 1 {
		questionNumber = len(req.ConversationHistory) + 1
	}
	totalQuestions := req.TotalQuestions
	if totalQuestions < 1 {
		totalQuestions = 10
	}

	systemPrompt, userPrompt, err := s.assembler.Assemble(domain.PromptContext{
		Role:           req.Role,
		Level:          domain.NormalizeLevel(req.Level),
		Skills:         req.Skills,
		QuestionNumber: questionNumber,
		TotalQuestions: totalQuestions,
		History:        req.ConversationHistory,
		Strategy:       strategy,
		Analysis:       analysis,
		Profile:        profile,
	})
	if err != nil {
		return nil, err
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.defaultMaxTokens
	}
	temperature := req.Temperature
	if temperature <= 0 {
		temperature = s.defaultTemperature
	}

	result, err := s.engine.Generate(ctx, systemPrompt, userPrompt,
		temperature, maxTokens, req.PreviousQuestion)
	if err != nil {
		return nil, err
	}

	return &QuestionResponse{
		Question:       result.Question,
		GenerationTime: time.Since(start).Seconds(),
		Strategy:       strategy,
		Analysis:       analysis,
		Attempts:       result.Attempts,
		Accepted:       result.Accepted,
	}, nil
}

// ScoreConversation judges every exchange of a session, preserving order.
func (s *Service) ScoreConversation(ctx context.Context, pairs []domain.QAPair) ([]domain.QAScoreRecord, error) {
	return s.judge.JudgeAll(ctx, pairs)
}

// OverallFeedback reduces a scored conversation to the final report.
// Records carrying scores outside [0, 1] are a caller contract violation
// and are rejected up front rather than absorbed.
func (s *Service) OverallFeedback(ctx context.Context, req FeedbackRequest) (*FeedbackResponse, error) {
	start := time.Now()

	if err := validateConversation(req.Conversation); err != nil {
		return nil, err
	}

	report, err := s.aggregator.Aggregate(ctx, req.Conversation, req.Role, req.Seniority, req.Skills)
	if err != nil {
		return nil, err
	}

	return &FeedbackResponse{
		Overview:        report.Overview,
		AverageScore:    report.AverageScore,
		Assessment:      report.Assessment,
		Strengths:       report.Strengths,
		Weaknesses:      report.Weaknesses,
		Recommendations: report.Recommendations,
		GenerationTime:  time.Since(start).Seconds(),
	}, nil
}

// validateConversation checks every record's scores against the normalized
// range, accumulating all violations into one error.
func validateConversation(conversation []domain.QAScoreRecord) error {
	verr := domain.NewValidationError("conversation")
	for _, record := range conversation {
		for name, score := range map[string]float64{
			"final":     record.FinalScore,
			"relevance": record.Dimensions.Relevance,
			"depth":     record.Dimensions.Depth,
			"clarity":   record.Dimensions.Clarity,
		} {
			if score < 0 || score > 1 {
				verr.AddError(fmt.Sprintf("record %d: %s score %f: %v",
					record.Sequence, name, score, domain.ErrScoreOutOfRange))
			}
		}
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}
