package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-parley/internal/domain"
	"github.com/ahrav/go-parley/internal/ports"
)

// JudgeConfig holds the scoring weights and sampling parameters for answer
// judging. Weights must sum to 1 so the final score stays in [0, 1].
type JudgeConfig struct {
	RelevanceWeight float64 `yaml:"relevance_weight" validate:"gt=0,lt=1"`
	DepthWeight     float64 `yaml:"depth_weight" validate:"gt=0,lt=1"`
	ClarityWeight   float64 `yaml:"clarity_weight" validate:"gt=0,lt=1"`

	// Temperature for judge calls. Low values keep scoring consistent.
	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=2"`

	// MaxTokens bounds the judge response length.
	MaxTokens int `yaml:"max_tokens" validate:"gt=0"`

	// Concurrency bounds parallel judging of a full conversation.
	Concurrency int `yaml:"concurrency" validate:"gt=0"`
}

// DefaultJudgeConfig returns the standard judging policy.
func DefaultJudgeConfig() JudgeConfig {
	return JudgeConfig{
		RelevanceWeight: 0.4,
		DepthWeight:     0.35,
		ClarityWeight:   0.25,
		Temperature:     0.2,
		MaxTokens:       500,
		Concurrency:     4,
	}
}

const judgeSystemPrompt = `You are a strict technical interview grader. Respond with a single JSON object and nothing else.`

var judgePromptTemplate = template.Must(template.New("judge").Parse(
	`Score the candidate's answer to the interview question on three dimensions, each from 0.0 to 1.0.

Question: {{.Question}}

Answer: {{.Answer}}

Respond with JSON in exactly this shape:
{"relevance": 0.0, "depth": 0.0, "clarity": 0.0, "feedback": ["short observation", "short observation"]}`))

// judgeResponse is the JSON shape the judge model must produce.
type judgeResponse struct {
	Relevance float64  `json:"relevance" validate:"gte=0,lte=1"`
	Depth     float64  `json:"depth" validate:"gte=0,lte=1"`
	Clarity   float64  `json:"clarity" validate:"gte=0,lte=1"`
	Feedback  []string `json:"feedback"`
}

// Judge scores candidate answers along relevance, depth, and clarity.
// When the backend produces unusable output it falls back to a heuristic
// score derived from the answer analyzer, so judging never fails for
// quality reasons.
type Judge struct {
	backend  ports.ModelBackend
	analyzer *Analyzer
	config   JudgeConfig
	metrics  ports.MetricsCollector
}

// NewJudge creates an answer judge.
func NewJudge(backend ports.ModelBackend, analyzer *Analyzer, config JudgeConfig) (*Judge, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	if analyzer == nil {
		return nil, fmt.Errorf("analyzer is required")
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid judge config: %w", err)
	}
	sum := config.RelevanceWeight + config.DepthWeight + config.ClarityWeight
	if sum < 0.999 || sum > 1.001 {
		return nil, fmt.Errorf("dimension weights must sum to 1, got %f", sum)
	}
	return &Judge{backend: backend, analyzer: analyzer, config: config}, nil
}

// WithMetrics attaches a collector for fallback counters. A nil collector
// disables recording.
func (j *Judge) WithMetrics(collector ports.MetricsCollector) *Judge {
	j.metrics = collector
	return j
}

// Judge scores a single exchange. Only backend unavailability propagates.
func (j *Judge) Judge(ctx context.Context, sequence int, pair domain.QAPair) (domain.QAScoreRecord, error) {
	var buf strings.Builder
	if err := judgePromptTemplate.Execute(&buf, map[string]any{
		"Question": pair.Question,
		"Answer":   pair.Answer,
	}); err != nil {
		return domain.QAScoreRecord{}, fmt.Errorf("failed to render judge prompt: %w", err)
	}

	response, generated, err := synthesize(ctx, j.backend, synthesisSpec[judgeResponse]{
		prompt: buf.String(),
		system: judgeSystemPrompt,
		options: map[string]any{
			"temperature": j.config.Temperature,
			"max_tokens":  j.config.MaxTokens,
		},
		parse: func(raw string) (judgeResponse, error) {
			var jr judgeResponse
			payload, err := extractJSON(raw)
			if err != nil {
				return jr, err
			}
			if err := json.Unmarshal([]byte(payload), &jr); err != nil {
				return jr, err
			}
			return jr, nil
		},
		valid: func(jr judgeResponse) bool {
			return validate.Struct(jr) == nil
		},
		fallback: func() judgeResponse {
			return j.heuristicScore(pair.Answer)
		},
	})
	if err != nil {
		return domain.QAScoreRecord{}, err
	}
	if !generated && j.metrics != nil {
		j.metrics.RecordCounter("synthesis_fallback_total", 1,
			map[string]string{"component": "answer_judge"})
	}

	return j.buildRecord(sequence, pair, response), nil
}

// JudgeAll scores a full conversation concurrently, preserving order.
func (j *Judge) JudgeAll(ctx context.Context, pairs []domain.QAPair) ([]domain.QAScoreRecord, error) {
	records := make([]domain.QAScoreRecord, len(pairs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(j.config.Concurrency)
	for i, pair := range pairs {
		g.Go(func() error {
			record, err := j.Judge(ctx, i+1, pair)
			if err != nil {
				return err
			}
			records[i] = record
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func (j *Judge) buildRecord(sequence int, pair domain.QAPair, jr judgeResponse) domain.QAScoreRecord {
	final := jr.Relevance*j.config.RelevanceWeight +
		jr.Depth*j.config.DepthWeight +
		jr.Clarity*j.config.ClarityWeight
	if final > 1.0 {
		final = 1.0
	}
	return domain.QAScoreRecord{
		Sequence: sequence,
		Question: pair.Question,
		Answer:   pair.Answer,
		Dimensions: domain.DimensionScores{
			Relevance: jr.Relevance,
			Depth:     jr.Depth,
			Clarity:   jr.Clarity,
		},
		FinalScore: final,
		Feedback:   jr.Feedback,
	}
}

// heuristicScore derives dimension scores from the answer analyzer when
// generative judging is unusable. The analyzer's quality score stands in
// for depth; relevance and clarity get neutral-leaning estimates so the
// fallback neither inflates nor sinks the session average.
func (j *Judge) heuristicScore(answer string) judgeResponse {
	analysis := j.analyzer.Analyze(answer)

	relevance := 0.5
	if analysis.WordCount > 0 {
		relevance = 0.6
	}
	clarity := 0.5
	if analysis.DetailLevel == domain.DetailModerate || analysis.DetailLevel == domain.DetailDetailed {
		clarity = 0.6
	}

	feedback := []string{"Scored heuristically from answer structure."}
	if analysis.HasExamples {
		feedback = append(feedback, "Answer includes concrete examples.")
	}
	if len(analysis.Technologies) > 0 {
		feedback = append(feedback, fmt.Sprintf("Mentions %d specific technologies.", len(analysis.Technologies)))
	}

	return judgeResponse{
		Relevance: relevance,
		Depth:     analysis.QualityScore,
		Clarity:   clarity,
		Feedback:  feedback,
	}
}

// extractJSON pulls the first complete JSON object out of raw model
// output, tolerating surrounding prose and markdown code fences.
func extractJSON(raw string) (string, error) {
	text := strings.TrimSpace(raw)

	if idx := strings.Index(text, "```json"); idx != -1 {
		text = text[idx+len("```json"):]
		if end := strings.Index(text, "```"); end != -1 {
			text = text[:end]
		}
	} else if idx := strings.Index(text, "```"); idx != -1 {
		text = text[idx+3:]
		if end := strings.Index(text, "```"); end != -1 {
			text = text[:end]
		}
	}

	start := strings.Index(text, "{")
	if start == -1 {
		return "", fmt.Errorf("no JSON object found in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1], nil
				}
			}
		}
	}
	return "", fmt.Errorf("unbalanced JSON object in response")
}
