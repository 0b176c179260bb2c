package interview

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// questionSimilarity returns a similarity score in [0, 1] between two
// questions, based on edit distance over case-folded, whitespace-normalized
// text. 1.0 means identical.
func questionSimilarity(a, b string) float64 {
	na := normalizeForComparison(a)
	nb := normalizeForComparison(b)
	if na == "" && nb == "" {
		return 1.0
	}
	if na == "" || nb == "" {
		return 0.0
	}

	distance := levenshtein.ComputeDistance(na, nb)
	longest := len(na)
	if len(nb) > longest {
		longest = len(nb)
	}
	return 1.0 - float64(distance)/float64(longest)
}

func normalizeForComparison(s string) string {
	return foldString(strings.Join(strings.Fields(s), " "))
}

// isNearDuplicate reports whether candidate is too close to previous to be
// asked again.
func isNearDuplicate(candidate, previous string, threshold float64) bool {
	if strings.TrimSpace(previous) == "" {
		return false
	}
	return questionSimilarity(candidate, previous) >= threshold
}
