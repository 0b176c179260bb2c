package domain

import "time"

// DimensionScores holds the per-dimension scores for a single answer.
// All values are normalized to [0, 1].
type DimensionScores struct {
	// Relevance measures how directly the answer addresses the question.
	Relevance float64 `json:"relevance"`

	// Depth measures technical substance and the quality of reasoning.
	Depth float64 `json:"depth"`

	// Clarity measures structure and communication quality.
	Clarity float64 `json:"clarity"`
}

// QAScoreRecord is one scored question/answer exchange from an interview
// session. Records are ordered by Sequence within a conversation.
type QAScoreRecord struct {
	// Sequence is the 1-based position of this exchange in the interview.
	Sequence int `json:"sequence"`

	// Question is the question that was asked.
	Question string `json:"question"`

	// Answer is the candidate's response.
	Answer string `json:"answer"`

	// Dimensions holds the per-dimension scores for the answer.
	Dimensions DimensionScores `json:"dimensions"`

	// FinalScore is the weighted aggregate of the dimension scores, in [0, 1].
	FinalScore float64 `json:"final_score"`

	// Feedback lists short per-answer feedback items.
	Feedback []string `json:"feedback,omitempty"`
}

// QAPair is an unscored question/answer exchange, used for prompt history
// and as judge input.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// OverviewBand is the ordinal overview rating derived from the average
// session score.
type OverviewBand string

// Overview bands, best to worst. The string values are the labels emitted
// in reports and pinned into synthesis prompts.
const (
	BandExcellent    OverviewBand = "EXCELLENT"
	BandGood         OverviewBand = "GOOD"
	BandAverage      OverviewBand = "AVERAGE"
	BandBelowAverage OverviewBand = "BELOW AVERAGE"
	BandPoor         OverviewBand = "POOR"
)

// BandThresholds defines the inclusive lower bounds for each overview band.
// Scores below BelowAverage fall into BandPoor. The values are hand-tuned
// policy and are treated as configuration, not constants to derive.
type BandThresholds struct {
	Excellent    float64 `yaml:"excellent" json:"excellent"`
	Good         float64 `yaml:"good" json:"good"`
	Average      float64 `yaml:"average" json:"average"`
	BelowAverage float64 `yaml:"below_average" json:"below_average"`
}

// DefaultBandThresholds returns the standard banding policy.
func DefaultBandThresholds() BandThresholds {
	return BandThresholds{
		Excellent:    0.85,
		Good:         0.70,
		Average:      0.50,
		BelowAverage: 0.30,
	}
}

// BandFor maps an average score onto its overview band. Lower bounds are
// inclusive, so a score of exactly 0.85 is EXCELLENT under the defaults.
func (bt BandThresholds) BandFor(score float64) OverviewBand {
	switch {
	case score >= bt.Excellent:
		return BandExcellent
	case score >= bt.Good:
		return BandGood
	case score >= bt.Average:
		return BandAverage
	case score >= bt.BelowAverage:
		return BandBelowAverage
	default:
		return BandPoor
	}
}

// Ordered reports whether the thresholds are strictly descending, which
// every valid banding policy must be.
func (bt BandThresholds) Ordered() bool {
	return bt.Excellent > bt.Good &&
		bt.Good > bt.Average &&
		bt.Average > bt.BelowAverage &&
		bt.BelowAverage > 0
}

// OverviewReport is the final synthesized verdict for a completed interview
// session. After validation the narrative fields are always non-empty and
// Overview never contradicts AverageScore's band.
type OverviewReport struct {
	// Conversation is the ordered scored exchanges the report was built from.
	Conversation []QAScoreRecord `json:"conversation,omitempty"`

	// AverageScore is the mean of the final scores across all records,
	// in [0, 1]. An empty conversation defaults to a neutral midpoint.
	AverageScore float64 `json:"average_score"`

	// Overview is the ordinal band computed from AverageScore.
	Overview OverviewBand `json:"overview"`

	// Assessment is the narrative summary of the candidate's performance.
	Assessment string `json:"assessment"`

	// Strengths lists what the candidate did well (2-5 items).
	Strengths []string `json:"strengths"`

	// Weaknesses lists where the candidate fell short (2-4 items).
	Weaknesses []string `json:"weaknesses"`

	// Recommendations suggests what the candidate should work on next.
	Recommendations string `json:"recommendations"`

	// Synthesized is true when the narrative came from the model backend
	// rather than the deterministic fallback.
	Synthesized bool `json:"synthesized"`

	// Timestamp records when this report was created.
	Timestamp time.Time `json:"timestamp"`
}
