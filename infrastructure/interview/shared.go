// Package interview implements the question-generation and answer-scoring
// pipeline: answer analysis, prompt assembly, constrained generation with
// retry, validation and repair of generated questions, and overall-feedback
// aggregation for completed sessions.
//
// Every component takes its model access through ports.ModelBackend and its
// tuning constants through validated config structs, so the numeric policy
// can be adjusted without code changes and the whole pipeline runs against
// test doubles.
package interview

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
)

// validate is the shared validator instance for config structs.
var validate = validator.New()

// foldString performs Unicode case folding for case-insensitive matching.
// A Caser carries transform state and is not safe for concurrent use, so
// one is created per call.
func foldString(s string) string {
	return cases.Fold().String(s)
}

// tokenizeAnswer splits free text into comparable word tokens. Characters
// that appear inside technology names (+, #, ., /) are kept so terms like
// "c++", "c#", "node.js", and "ci/cd" survive as single tokens. Sentence
// punctuation is trimmed from the edges afterward.
func tokenizeAnswer(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
		switch r {
		case '+', '#', '.', '/':
			return false
		}
		return true
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "./")
		if f != "" {
			tokens = append(tokens, foldString(f))
		}
	}
	return tokens
}

// countWords counts whitespace-separated words.
func countWords(text string) int {
	return len(strings.Fields(text))
}
