package interview

import (
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/ahrav/go-parley/internal/domain"
	"github.com/ahrav/go-parley/internal/ports"
)

// AggregatorConfig holds the scoring and synthesis policy for overall
// feedback.
type AggregatorConfig struct {
	// Bands are the overview banding thresholds.
	Bands domain.BandThresholds `yaml:"bands"`

	// NeutralScore is the average assumed for an empty conversation so
	// banding stays well-defined.
	NeutralScore float64 `yaml:"neutral_score" validate:"gte=0,lte=1"`

	// Structural completeness requirements for a synthesized report.
	MinStrengths  int `yaml:"min_strengths" validate:"gt=0"`
	MaxStrengths  int `yaml:"max_strengths" validate:"gtfield=MinStrengths"`
	MinWeaknesses int `yaml:"min_weaknesses" validate:"gt=0"`
	MaxWeaknesses int `yaml:"max_weaknesses" validate:"gtfield=MinWeaknesses"`

	// MinSectionChars rejects synthesized assessments shorter than this.
	MinSectionChars int `yaml:"min_section_chars" validate:"gt=0"`

	// StrengthFloor marks questions scoring at or above it as strength
	// sources in the fallback; WeaknessCeil marks those strictly below it
	// as weakness sources.
	StrengthFloor float64 `yaml:"strength_floor" validate:"gt=0,lte=1"`
	WeaknessCeil  float64 `yaml:"weakness_ceil" validate:"gt=0,ltefield=StrengthFloor"`

	// Sampling parameters for the synthesis call.
	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `yaml:"max_tokens" validate:"gt=0"`
}

// DefaultAggregatorConfig returns the standard feedback policy.
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		Bands:           domain.DefaultBandThresholds(),
		NeutralScore:    0.5,
		MinStrengths:    2,
		MaxStrengths:    5,
		MinWeaknesses:   2,
		MaxWeaknesses:   4,
		MinSectionChars: 40,
		StrengthFloor:   0.8,
		WeaknessCeil:    0.6,
		Temperature:     0.5,
		MaxTokens:       800,
	}
}

const aggregatorSystemPrompt = `You are an experienced technical interviewer writing final candidate feedback. Follow the requested section format exactly.`

var aggregatorPromptTemplate = template.Must(template.New("aggregate").Parse(
	`Write overall feedback for a {{.Seniority}} {{.Role}} candidate interviewed on: {{.Skills}}.
The candidate's average score was {{printf "%.2f" .AverageScore}} out of 1.00 across {{.Count}} questions.
{{- if .Lows}}
Weakest questions: {{.Lows}}
{{- end}}
{{- if .Highs}}
Strongest questions: {{.Highs}}
{{- end}}

Continue this report. Keep the Overview line exactly as given.

Overview: {{.Band}}
Assessment: <two or three sentences on overall performance>
Strengths:
- <specific strength>
- <specific strength>
Weaknesses:
- <specific weakness>
- <specific weakness>
Recommendations: <one or two sentences of concrete advice>`))

// narrative is the parsed body of a synthesized report.
type narrative struct {
	Assessment      string
	Strengths       []string
	Weaknesses      []string
	Recommendations string
}

// Aggregator reduces a scored conversation to a final overview report.
// Banding is pure arithmetic; the narrative is synthesized through the
// backend with a deterministic fallback, so the report is never empty and
// never contradicts the computed band.
type Aggregator struct {
	backend ports.ModelBackend
	config  AggregatorConfig
	metrics ports.MetricsCollector
}

// NewAggregator creates a feedback aggregator.
func NewAggregator(backend ports.ModelBackend, config AggregatorConfig) (*Aggregator, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid aggregator config: %w", err)
	}
	if !config.Bands.Ordered() {
		return nil, fmt.Errorf("band thresholds must be strictly descending")
	}
	return &Aggregator{backend: backend, config: config}, nil
}

// WithMetrics attaches a collector for fallback counters. A nil collector
// disables recording.
func (a *Aggregator) WithMetrics(collector ports.MetricsCollector) *Aggregator {
	a.metrics = collector
	return a
}

// AverageScore reduces the conversation to its mean final score. An empty
// conversation yields the neutral default instead of failing.
func (a *Aggregator) AverageScore(conversation []domain.QAScoreRecord) float64 {
	if len(conversation) == 0 {
		return a.config.NeutralScore
	}
	var sum float64
	for _, record := range conversation {
		sum += record.FinalScore
	}
	return sum / float64(len(conversation))
}

// Aggregate builds the final report for a completed session. Only backend
// unavailability propagates; every synthesis-quality problem resolves to
// the deterministic fallback.
func (a *Aggregator) Aggregate(
	ctx context.Context,
	conversation []domain.QAScoreRecord,
	role, seniority string,
	skills []string,
) (domain.OverviewReport, error) {
	average := a.AverageScore(conversation)
	band := a.config.Bands.BandFor(average)

	prompt, err := a.renderPrompt(conversation, role, seniority, skills, average, band)
	if err != nil {
		return domain.OverviewReport{}, err
	}

	// Prefix forcing: the Overview line is prepended to whatever the model
	// returns, so the band can never be contradicted and section parsing
	// has a fixed anchor.
	forcedPrefix := fmt.Sprintf("Overview: %s\n", band)

	body, synthesized, err := synthesize(ctx, a.backend, synthesisSpec[narrative]{
		prompt: prompt,
		system: aggregatorSystemPrompt,
		options: map[string]any{
			"temperature": a.config.Temperature,
			"max_tokens":  a.config.MaxTokens,
		},
		parse: func(raw string) (narrative, error) {
			return parseNarrative(forcedPrefix + stripForcedPrefix(raw)), nil
		},
		valid:    a.narrativeComplete,
		fallback: func() narrative { return a.fallbackNarrative(conversation, band) },
	})
	if err != nil {
		return domain.OverviewReport{}, err
	}
	if !synthesized && a.metrics != nil {
		a.metrics.RecordCounter("synthesis_fallback_total", 1,
			map[string]string{"component": "feedback_aggregator"})
	}

	return domain.OverviewReport{
		Conversation:    conversation,
		AverageScore:    average,
		Overview:        band,
		Assessment:      body.Assessment,
		Strengths:       capList(body.Strengths, a.config.MaxStrengths),
		Weaknesses:      capList(body.Weaknesses, a.config.MaxWeaknesses),
		Recommendations: body.Recommendations,
		Synthesized:     synthesized,
		Timestamp:       time.Now().UTC(),
	}, nil
}

func (a *Aggregator) renderPrompt(
	conversation []domain.QAScoreRecord,
	role, seniority string,
	skills []string,
	average float64,
	band domain.OverviewBand,
) (string, error) {
	if strings.TrimSpace(role) == "" {
		role = "Developer"
	}
	if strings.TrimSpace(seniority) == "" {
		seniority = string(domain.DefaultLevel)
	}
	skillList := "general programming skills"
	if len(skills) > 0 {
		skillList = strings.Join(skills, ", ")
	}

	var highs, lows []string
	for _, record := range conversation {
		switch {
		case record.FinalScore >= a.config.StrengthFloor:
			highs = append(highs, summarizeQuestion(record.Question))
		case record.FinalScore < a.config.WeaknessCeil:
			lows = append(lows, summarizeQuestion(record.Question))
		}
	}

	var buf strings.Builder
	err := aggregatorPromptTemplate.Execute(&buf, map[string]any{
		"Role":         role,
		"Seniority":    seniority,
		"Skills":       skillList,
		"AverageScore": average,
		"Count":        len(conversation),
		"Band":         band,
		"Highs":        strings.Join(highs, "; "),
		"Lows":         strings.Join(lows, "; "),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render aggregator prompt: %w", err)
	}
	return buf.String(), nil
}

// narrativeComplete checks the structural requirements: a substantive
// assessment, enough strengths and weaknesses, and a non-empty
// recommendation.
func (a *Aggregator) narrativeComplete(n narrative) bool {
	return len(n.Assessment) >= a.config.MinSectionChars &&
		len(n.Strengths) >= a.config.MinStrengths &&
		len(n.Weaknesses) >= a.config.MinWeaknesses &&
		strings.TrimSpace(n.Recommendations) != ""
}

// fallbackNarrative builds the deterministic report from score extremes.
// Questions at or above the strength floor become strength sources, those
// below the weakness ceiling become weakness sources; generic items pad
// each list up to its minimum so the report is never structurally empty.
func (a *Aggregator) fallbackNarrative(conversation []domain.QAScoreRecord, band domain.OverviewBand) narrative {
	var strengths, weaknesses []string
	for _, record := range conversation {
		switch {
		case record.FinalScore >= a.config.StrengthFloor:
			strengths = append(strengths,
				fmt.Sprintf("Gave a strong answer on %q", summarizeQuestion(record.Question)))
		case record.FinalScore < a.config.WeaknessCeil:
			weaknesses = append(weaknesses,
				fmt.Sprintf("Struggled with %q", summarizeQuestion(record.Question)))
		}
	}

	genericStrengths := []string{
		"Engaged with every question asked",
		"Maintained a professional communication style",
		"Stayed on topic throughout the interview",
	}
	genericWeaknesses := []string{
		"Answers would benefit from more concrete examples",
		"Could demonstrate deeper technical reasoning",
		"Responses lacked discussion of trade-offs",
	}
	strengths = padList(strengths, genericStrengths, a.config.MinStrengths)
	weaknesses = padList(weaknesses, genericWeaknesses, a.config.MinWeaknesses)

	return narrative{
		Assessment:      fallbackAssessments[band],
		Strengths:       strengths,
		Weaknesses:      weaknesses,
		Recommendations: fallbackRecommendations[band],
	}
}

var fallbackAssessments = map[domain.OverviewBand]string{
	domain.BandExcellent:    "The candidate performed excellently across the interview, giving consistently strong, well-grounded answers.",
	domain.BandGood:         "The candidate performed well overall, with solid answers on most questions and only minor gaps.",
	domain.BandAverage:      "The candidate showed a reasonable baseline with mixed answer quality across the interview.",
	domain.BandBelowAverage: "The candidate struggled with several questions and showed notable gaps in practical knowledge.",
	domain.BandPoor:         "The candidate had significant difficulty across the interview and did not demonstrate the expected fundamentals.",
}

var fallbackRecommendations = map[domain.OverviewBand]string{
	domain.BandExcellent:    "Keep building on this foundation by taking on harder design problems and mentoring others.",
	domain.BandGood:         "Focus on the few weaker areas identified above and practice explaining decisions with concrete examples.",
	domain.BandAverage:      "Strengthen hands-on experience in the core skill areas and practice structuring answers around real projects.",
	domain.BandBelowAverage: "Revisit the fundamentals of the core skill areas and build small projects to turn theory into practice.",
	domain.BandPoor:         "Start with structured study of the fundamentals and return to interviewing after building practical experience.",
}

// parseNarrative splits a report into its labeled sections. Strengths and
// Weaknesses collect bullet items; Assessment and Recommendations collect
// free text until the next label.
func parseNarrative(text string) narrative {
	var n narrative
	section := ""

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "overview:"):
			section = "overview"
			continue
		case strings.HasPrefix(lower, "assessment:"):
			section = "assessment"
			line = strings.TrimSpace(line[len("assessment:"):])
		case strings.HasPrefix(lower, "strengths:"):
			section = "strengths"
			continue
		case strings.HasPrefix(lower, "weaknesses:"):
			section = "weaknesses"
			continue
		case strings.HasPrefix(lower, "recommendations:"):
			section = "recommendations"
			line = strings.TrimSpace(line[len("recommendations:"):])
		}
		if line == "" {
			continue
		}

		switch section {
		case "assessment":
			n.Assessment = joinSentence(n.Assessment, line)
		case "strengths":
			if item := trimBullet(line); item != "" {
				n.Strengths = append(n.Strengths, item)
			}
		case "weaknesses":
			if item := trimBullet(line); item != "" {
				n.Weaknesses = append(n.Weaknesses, item)
			}
		case "recommendations":
			n.Recommendations = joinSentence(n.Recommendations, line)
		}
	}
	return n
}

// stripForcedPrefix removes any Overview line the model echoed back, since
// the canonical one is prepended separately.
func stripForcedPrefix(raw string) string {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "overview:") {
		if idx := strings.Index(trimmed, "\n"); idx != -1 {
			return trimmed[idx+1:]
		}
		return ""
	}
	return trimmed
}

func trimBullet(line string) string {
	line = strings.TrimLeft(line, "-*• \t")
	return strings.TrimSpace(line)
}

func joinSentence(existing, addition string) string {
	if existing == "" {
		return addition
	}
	return existing + " " + addition
}

// summarizeQuestion shortens a question for use inside report text.
func summarizeQuestion(question string) string {
	question = strings.TrimSuffix(strings.TrimSpace(question), "?")
	words := strings.Fields(question)
	if len(words) > 8 {
		words = words[:8]
		return strings.Join(words, " ") + "..."
	}
	return strings.Join(words, " ")
}

func capList(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}

func padList(items, generics []string, min int) []string {
	for _, g := range generics {
		if len(items) >= min {
			break
		}
		items = append(items, g)
	}
	return items
}
