// Package domain contains pure, dependency-free domain models and types
// for the interview pipeline.
package domain

// DetailLevel classifies how elaborate a candidate's answer is based on
// its word count. Levels form a monotonic scale from minimal to extensive.
type DetailLevel string

// Supported detail levels, ordered from least to most elaborate.
const (
	DetailMinimal   DetailLevel = "minimal"
	DetailBrief     DetailLevel = "brief"
	DetailModerate  DetailLevel = "moderate"
	DetailDetailed  DetailLevel = "detailed"
	DetailExtensive DetailLevel = "extensive"
)

// Strategy selects which follow-up-question framing instruction is injected
// into the next prompt. The analyzer derives it from answer quality alone;
// it carries no hidden state.
type Strategy string

// Supported follow-up strategies.
const (
	// StrategyEncourageDetail asks the candidate to expand a thin answer.
	StrategyEncourageDetail Strategy = "encourage_detail"

	// StrategyRequestExample asks for a concrete experience backing a claim.
	StrategyRequestExample Strategy = "request_example"

	// StrategyProbeTechnology digs into a specific technology the candidate
	// mentioned.
	StrategyProbeTechnology Strategy = "probe_technology"

	// StrategyExploreEdgeCase pushes a good answer toward failure modes and
	// tradeoffs.
	StrategyExploreEdgeCase Strategy = "explore_edge_case"

	// StrategyChangeTopic moves on after an exhaustive answer.
	StrategyChangeTopic Strategy = "change_topic"

	// StrategyDeepDive asks for internals behind a solid but example-backed
	// answer with no technology to probe.
	StrategyDeepDive Strategy = "deep_dive"
)

// AnswerAnalysis is the derived, per-turn assessment of a candidate answer.
// It is a pure function of the answer text: identical input always produces
// an identical analysis.
type AnswerAnalysis struct {
	// WordCount is the number of whitespace-delimited words in the answer.
	WordCount int `json:"word_count"`

	// DetailLevel buckets WordCount against fixed thresholds.
	DetailLevel DetailLevel `json:"detail_level"`

	// HasExamples reports whether the answer matched any real-experience
	// linguistic pattern.
	HasExamples bool `json:"has_examples"`

	// Technologies lists deduplicated technology keywords found in the
	// answer, in vocabulary order.
	Technologies []string `json:"technologies"`

	// TechCategories counts matched technologies per vocabulary category
	// (languages, frameworks, databases, cloud, concepts).
	TechCategories map[string]int `json:"tech_categories,omitempty"`

	// QualityScore is the weighted sum of word-count, example, and
	// technology contributions, capped at 1.0.
	QualityScore float64 `json:"quality_score"`

	// SuggestedStrategy is the follow-up strategy chosen from the decision
	// table over the fields above.
	SuggestedStrategy Strategy `json:"suggested_strategy"`
}
