package llm

import "strings"

// WordBasedEstimator estimates tokens from word count. English text runs
// roughly 0.75 words per token, so tokens = words / 0.75.
type WordBasedEstimator struct{}

// EstimateTokens returns an approximate token count based on word count.
func (e *WordBasedEstimator) EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return int(float64(words)/0.75) + 1
}

// CharBasedEstimator estimates tokens from character count with a
// configurable ratio. Useful for non-English text where the 4-chars
// heuristic is too coarse.
type CharBasedEstimator struct {
	// CharsPerToken is the average characters per token. Zero or negative
	// values fall back to 4.
	CharsPerToken float64
}

// EstimateTokens returns an approximate token count based on character
// count.
func (e *CharBasedEstimator) EstimateTokens(text string) int {
	ratio := e.CharsPerToken
	if ratio <= 0 {
		ratio = 4
	}
	return int(float64(len(text))/ratio) + 1
}
