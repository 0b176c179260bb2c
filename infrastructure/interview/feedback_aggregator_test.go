package interview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-parley/internal/domain"
	"github.com/ahrav/go-parley/internal/ports"
	"github.com/ahrav/go-parley/internal/testutils"
)

func newTestAggregator(t *testing.T, backend ports.ModelBackend) *Aggregator {
	t.Helper()
	aggregator, err := NewAggregator(backend, DefaultAggregatorConfig())
	require.NoError(t, err)
	return aggregator
}

func recordsWithScores(scores ...float64) []domain.QAScoreRecord {
	records := make([]domain.QAScoreRecord, len(scores))
	for i, score := range scores {
		records[i] = domain.QAScoreRecord{
			Sequence:   i + 1,
			Question:   "Can you describe your experience with distributed systems?",
			Answer:     "answer",
			FinalScore: score,
		}
	}
	return records
}

const completeNarrative = `Assessment: The candidate showed strong practical knowledge and reasoned clearly about trade-offs throughout the interview.
Strengths:
- Deep knowledge of distributed systems
- Clear communication under pressure
Weaknesses:
- Limited exposure to infrastructure automation
- Sparse testing vocabulary
Recommendations: Spend time with infrastructure-as-code tooling and write more tests.`

func TestAggregator_Banding(t *testing.T) {
	aggregator := newTestAggregator(t, testutils.NewMockBackend(completeNarrative))

	tests := []struct {
		name   string
		scores []float64
		want   domain.OverviewBand
	}{
		{"exactly 0.85 is excellent", []float64{0.85, 0.85}, domain.BandExcellent},
		{"just below 0.85 is good", []float64{0.849999, 0.849999}, domain.BandGood},
		{"exactly 0.70 is good", []float64{0.70}, domain.BandGood},
		{"mid range is average", []float64{0.55, 0.60}, domain.BandAverage},
		{"exactly 0.30 is below average", []float64{0.30}, domain.BandBelowAverage},
		{"bottom is poor", []float64{0.10, 0.20}, domain.BandPoor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := aggregator.Aggregate(context.Background(),
				recordsWithScores(tt.scores...), "Developer", "Mid", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, report.Overview)
		})
	}
}

func TestAggregator_EmptyConversation(t *testing.T) {
	// No synthesis output at all: the deterministic fallback fills every
	// section, and the neutral 0.5 average lands in AVERAGE.
	aggregator := newTestAggregator(t, testutils.NewMockBackend(""))

	report, err := aggregator.Aggregate(context.Background(), nil, "Developer", "Mid", nil)
	require.NoError(t, err)

	assert.Equal(t, 0.5, report.AverageScore)
	assert.Equal(t, domain.BandAverage, report.Overview)
	assert.False(t, report.Synthesized)
	assert.NotEmpty(t, report.Assessment)
	assert.GreaterOrEqual(t, len(report.Strengths), 2)
	assert.GreaterOrEqual(t, len(report.Weaknesses), 2)
	assert.NotEmpty(t, report.Recommendations)
}

func TestAggregator_AcceptsCompleteSynthesis(t *testing.T) {
	aggregator := newTestAggregator(t, testutils.NewMockBackend(completeNarrative))

	report, err := aggregator.Aggregate(context.Background(),
		recordsWithScores(0.9, 0.8), "Backend Engineer", "Senior", []string{"Go"})
	require.NoError(t, err)

	assert.True(t, report.Synthesized)
	assert.Contains(t, report.Assessment, "strong practical knowledge")
	assert.Equal(t, []string{
		"Deep knowledge of distributed systems",
		"Clear communication under pressure",
	}, report.Strengths)
	assert.Len(t, report.Weaknesses, 2)
	assert.Contains(t, report.Recommendations, "infrastructure-as-code")
}

func TestAggregator_FallsBackOnIncompleteSynthesis(t *testing.T) {
	// Only one strength and no weaknesses: structurally incomplete.
	incomplete := `Assessment: Fine overall performance with reasonable answers given across the whole interview.
Strengths:
- Communicates well
Recommendations: Keep practicing.`

	aggregator := newTestAggregator(t, testutils.NewMockBackend(incomplete))

	report, err := aggregator.Aggregate(context.Background(),
		recordsWithScores(0.9, 0.5, 0.85), "Developer", "Mid", nil)
	require.NoError(t, err)

	assert.False(t, report.Synthesized)
	assert.GreaterOrEqual(t, len(report.Strengths), 2)
	assert.GreaterOrEqual(t, len(report.Weaknesses), 2)
	// High-scoring questions feed the fallback strengths, low ones the
	// weaknesses.
	assert.Contains(t, report.Strengths[0], "strong answer")
	assert.Contains(t, report.Weaknesses[0], "Struggled with")
}

func TestAggregator_BandNeverContradictsScore(t *testing.T) {
	// A narrative claiming EXCELLENT cannot override a poor average: the
	// Overview comes from arithmetic, not from model output.
	lying := "Overview: EXCELLENT\n" + completeNarrative
	aggregator := newTestAggregator(t, testutils.NewMockBackend(lying))

	report, err := aggregator.Aggregate(context.Background(),
		recordsWithScores(0.1, 0.2), "Developer", "Mid", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.BandPoor, report.Overview)
	assert.True(t, report.Synthesized)
}

func TestAggregator_PropagatesBackendUnavailability(t *testing.T) {
	backend := testutils.NewMockBackend()
	backend.Err = ports.ErrModelNotLoaded
	aggregator := newTestAggregator(t, backend)

	_, err := aggregator.Aggregate(context.Background(),
		recordsWithScores(0.5), "Developer", "Mid", nil)
	assert.ErrorIs(t, err, ports.ErrModelNotLoaded)
}

func TestAggregator_ListCaps(t *testing.T) {
	// Eight bullet strengths: the report caps at five.
	overfull := `Assessment: The candidate gave detailed answers and kept a clear structure through every single question asked.
Strengths:
- one
- two
- three
- four
- five
- six
- seven
- eight
Weaknesses:
- first gap
- second gap
- third gap
- fourth gap
- fifth gap
Recommendations: Keep at it and build more systems end to end.`

	aggregator := newTestAggregator(t, testutils.NewMockBackend(overfull))

	report, err := aggregator.Aggregate(context.Background(),
		recordsWithScores(0.8), "Developer", "Mid", nil)
	require.NoError(t, err)

	assert.Len(t, report.Strengths, 5)
	assert.Len(t, report.Weaknesses, 4)
}

func TestParseNarrative(t *testing.T) {
	n := parseNarrative("Overview: GOOD\n" + completeNarrative)
	assert.Contains(t, n.Assessment, "strong practical knowledge")
	assert.Len(t, n.Strengths, 2)
	assert.Len(t, n.Weaknesses, 2)
	assert.NotEmpty(t, n.Recommendations)
}

func TestAverageScore(t *testing.T) {
	aggregator := newTestAggregator(t, testutils.NewMockBackend(""))

	assert.Equal(t, 0.5, aggregator.AverageScore(nil))
	assert.InDelta(t, 0.6, aggregator.AverageScore(recordsWithScores(0.4, 0.8)), 1e-9)
}
