package interview

import (
	"fmt"
	"regexp"

	"github.com/ahrav/go-parley/internal/domain"
)

// AnalyzerConfig holds the numeric policy for answer analysis. The
// thresholds and weights are hand-tuned values preserved as configuration
// so they can be adjusted without code changes.
type AnalyzerConfig struct {
	// Detail-level word-count thresholds, strictly increasing.
	BriefThreshold     int `yaml:"brief_threshold" validate:"gt=0"`
	ModerateThreshold  int `yaml:"moderate_threshold" validate:"gtfield=BriefThreshold"`
	DetailedThreshold  int `yaml:"detailed_threshold" validate:"gtfield=ModerateThreshold"`
	ExtensiveThreshold int `yaml:"extensive_threshold" validate:"gtfield=DetailedThreshold"`

	// Quality-score contributions per detail level.
	BriefScore    float64 `yaml:"brief_score" validate:"gte=0,lte=1"`
	ModerateScore float64 `yaml:"moderate_score" validate:"gte=0,lte=1"`
	DetailedScore float64 `yaml:"detailed_score" validate:"gte=0,lte=1"`

	// ExampleScore is added when the answer shows real experience.
	ExampleScore float64 `yaml:"example_score" validate:"gte=0,lte=1"`

	// Technology contribution by mention count bucket.
	FewTechScore  float64 `yaml:"few_tech_score" validate:"gte=0,lte=1"`
	ManyTechScore float64 `yaml:"many_tech_score" validate:"gte=0,lte=1"`

	// ManyTechCount is the mention count at which ManyTechScore applies.
	ManyTechCount int `yaml:"many_tech_count" validate:"gt=0"`

	// Strategy decision bands over quality score.
	LowQualityBand  float64 `yaml:"low_quality_band" validate:"gt=0,lt=1"`
	MidQualityBand  float64 `yaml:"mid_quality_band" validate:"gtfield=LowQualityBand,lt=1"`
	HighQualityBand float64 `yaml:"high_quality_band" validate:"gtfield=MidQualityBand,lt=1"`
}

// DefaultAnalyzerConfig returns the standard analysis policy.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		BriefThreshold:     20,
		ModerateThreshold:  50,
		DetailedThreshold:  100,
		ExtensiveThreshold: 200,
		BriefScore:         0.2,
		ModerateScore:      0.3,
		DetailedScore:      0.4,
		ExampleScore:       0.3,
		FewTechScore:       0.15,
		ManyTechScore:      0.3,
		ManyTechCount:      3,
		LowQualityBand:     0.3,
		MidQualityBand:     0.6,
		HighQualityBand:    0.8,
	}
}

// techCategory pairs a vocabulary category with its member terms. The
// categories are matched in a fixed order so results are deterministic.
type techCategory struct {
	name  string
	terms []string
}

// technologyVocabulary lists whole-word technology keywords by category.
// Terms are stored case-folded.
var technologyVocabulary = []techCategory{
	{"languages", []string{
		"go", "golang", "python", "java", "javascript", "typescript",
		"rust", "c++", "c#", "ruby", "php", "kotlin", "swift", "scala",
	}},
	{"frameworks", []string{
		"react", "vue", "angular", "django", "flask", "fastapi", "spring",
		"rails", "express", "gin", "echo", "node.js", "nodejs", "next.js",
	}},
	{"databases", []string{
		"postgres", "postgresql", "mysql", "mongodb", "redis", "sqlite",
		"cassandra", "elasticsearch", "dynamodb", "clickhouse",
	}},
	{"cloud", []string{
		"aws", "gcp", "azure", "kubernetes", "k8s", "docker", "terraform",
		"lambda", "s3", "ec2", "cloudflare",
	}},
	{"concepts", []string{
		"microservices", "rest", "graphql", "grpc", "ci/cd", "tdd",
		"caching", "sharding", "oauth", "websocket", "kafka", "rabbitmq",
	}},
}

// experiencePatterns detect first-person accounts of real work. Any single
// match marks the answer as containing examples.
var experiencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bfor (example|instance)\b`),
	regexp.MustCompile(`(?i)\bi (built|created|developed|implemented|designed|wrote|worked on|led|migrated|deployed)\b`),
	regexp.MustCompile(`(?i)\bwe (built|created|developed|implemented|designed|used|migrated|deployed)\b`),
	regexp.MustCompile(`(?i)\bin my (project|job|role|team|experience|previous|last)\b`),
	regexp.MustCompile(`(?i)\bat my (company|job|previous|last)\b`),
	regexp.MustCompile(`(?i)\bone time\b`),
	regexp.MustCompile(`(?i)\bsuch as\b`),
}

// Analyzer scores candidate answers and recommends a follow-up strategy.
// It is stateless and safe for concurrent use.
type Analyzer struct {
	config AnalyzerConfig
}

// NewAnalyzer creates an analyzer, validating the configured policy.
func NewAnalyzer(config AnalyzerConfig) (*Analyzer, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid analyzer config: %w", err)
	}
	return &Analyzer{config: config}, nil
}

// Analyze scores an answer along length, example, and technology
// dimensions and picks the follow-up strategy. Empty or whitespace-only
// input yields the fixed minimal result rather than an error.
func (a *Analyzer) Analyze(answer string) domain.AnswerAnalysis {
	wordCount := countWords(answer)
	if wordCount == 0 {
		return domain.AnswerAnalysis{
			DetailLevel:       domain.DetailMinimal,
			Technologies:      []string{},
			TechCategories:    map[string]int{},
			SuggestedStrategy: domain.StrategyEncourageDetail,
		}
	}

	detailLevel := a.detailLevel(wordCount)
	hasExamples := a.detectExamples(answer)
	technologies, categories := a.detectTechnologies(answer)
	quality := a.qualityScore(detailLevel, hasExamples, len(technologies))

	return domain.AnswerAnalysis{
		WordCount:         wordCount,
		DetailLevel:       detailLevel,
		HasExamples:       hasExamples,
		Technologies:      technologies,
		TechCategories:    categories,
		QualityScore:      quality,
		SuggestedStrategy: a.selectStrategy(quality, detailLevel, hasExamples, len(technologies)),
	}
}

func (a *Analyzer) detailLevel(wordCount int) domain.DetailLevel {
	switch {
	case wordCount < a.config.BriefThreshold:
		return domain.DetailMinimal
	case wordCount < a.config.ModerateThreshold:
		return domain.DetailBrief
	case wordCount < a.config.DetailedThreshold:
		return domain.DetailModerate
	case wordCount < a.config.ExtensiveThreshold:
		return domain.DetailDetailed
	default:
		return domain.DetailExtensive
	}
}

func (a *Analyzer) detectExamples(answer string) bool {
	for _, p := range experiencePatterns {
		if p.MatchString(answer) {
			return true
		}
	}
	return false
}

// detectTechnologies matches answer tokens against the vocabulary.
// Matching is whole-word over folded tokens, so "going" never matches "go".
// Results are deduplicated and ordered by category then vocabulary order.
func (a *Analyzer) detectTechnologies(answer string) ([]string, map[string]int) {
	tokens := tokenizeAnswer(answer)
	present := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		present[tok] = true
	}

	technologies := []string{}
	categories := map[string]int{}
	for _, cat := range technologyVocabulary {
		for _, term := range cat.terms {
			if present[term] {
				technologies = append(technologies, term)
				categories[cat.name]++
			}
		}
	}
	return technologies, categories
}

func (a *Analyzer) qualityScore(level domain.DetailLevel, hasExamples bool, techCount int) float64 {
	var score float64
	switch level {
	case domain.DetailBrief:
		score = a.config.BriefScore
	case domain.DetailModerate:
		score = a.config.ModerateScore
	case domain.DetailDetailed, domain.DetailExtensive:
		score = a.config.DetailedScore
	}

	if hasExamples {
		score += a.config.ExampleScore
	}

	switch {
	case techCount >= a.config.ManyTechCount:
		score += a.config.ManyTechScore
	case techCount >= 1:
		score += a.config.FewTechScore
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// selectStrategy applies the decision table in order; the first matching
// band wins.
func (a *Analyzer) selectStrategy(
	quality float64,
	level domain.DetailLevel,
	hasExamples bool,
	techCount int,
) domain.Strategy {
	switch {
	case quality < a.config.LowQualityBand:
		if level == domain.DetailMinimal || level == domain.DetailBrief {
			return domain.StrategyEncourageDetail
		}
		return domain.StrategyRequestExample

	case quality < a.config.MidQualityBand:
		if !hasExamples {
			return domain.StrategyRequestExample
		}
		if techCount >= 1 {
			return domain.StrategyProbeTechnology
		}
		return domain.StrategyDeepDive

	case quality < a.config.HighQualityBand:
		if techCount >= 2 {
			return domain.StrategyProbeTechnology
		}
		return domain.StrategyExploreEdgeCase

	default:
		if level == domain.DetailExtensive {
			return domain.StrategyChangeTopic
		}
		return domain.StrategyExploreEdgeCase
	}
}
