package interview

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// RejectionReason tags a specific validation failure. The generation
// engine logs it and uses it to decide retry diagnostics.
type RejectionReason string

// Rejection reasons, one per validator check.
const (
	ReasonEmpty            RejectionReason = "empty"
	ReasonNonEnglish       RejectionReason = "non_english"
	ReasonNoQuestionMark   RejectionReason = "no_question_mark"
	ReasonTooFewWords      RejectionReason = "too_few_words"
	ReasonTooManyWords     RejectionReason = "too_many_words"
	ReasonRoboticOpening   RejectionReason = "robotic_opening"
	ReasonNoNaturalStarter RejectionReason = "no_natural_starter"
	ReasonNotSecondPerson  RejectionReason = "not_second_person"
	ReasonBrokenGrammar    RejectionReason = "broken_grammar"
	ReasonRepeatedQuestion RejectionReason = "repeated_question"
)

// ValidatorConfig bounds acceptable question length.
type ValidatorConfig struct {
	MinWords int `yaml:"min_words" validate:"gt=0"`
	MaxWords int `yaml:"max_words" validate:"gtfield=MinWords"`
}

// DefaultValidatorConfig returns the standard length bounds.
func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{MinWords: 5, MaxWords: 40}
}

// roboticOpenings are textbook-style openings that read as exam prompts
// rather than conversation.
var roboticOpenings = regexp.MustCompile(`(?i)^(explain the|explain what|explain why|define|list the|state the|enumerate|discuss the|write a|name the)\b`)

// naturalStarters is the positive allowlist of conversational openings.
// A question must match one of these, not merely avoid the robotic list.
var naturalStarters = regexp.MustCompile(`(?i)^(can you|could you|would you|how would you|how do you|how did you|how have you|what would you|what do you|what did you|what was|what is your|what's your|tell me|walk me through|can you walk me|describe your|have you|why did you|why do you|when you|when did you|in your experience|share|imagine you)\b`)

// brokenGrammarPatterns are malformed constructions that slipped past
// repair. Any match rejects the question.
var brokenGrammarPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bthe the\b`),
	regexp.MustCompile(`(?i)\ba a\b`),
	regexp.MustCompile(`(?i)\ban an\b`),
	regexp.MustCompile(`(?i)\bwould would\b`),
	regexp.MustCompile(`(?i)\bcan can\b`),
	regexp.MustCompile(`(?i)\bdo do\b`),
	regexp.MustCompile(`(?i)\byou you\b`),
	regexp.MustCompile(`(?i)\bexplain would you\b`),
	regexp.MustCompile(`(?i)\bhow how\b`),
	regexp.MustCompile(`\?\?`),
	regexp.MustCompile(`\?.+\?`),
}

// secondPersonPattern requires the question to address the candidate.
var secondPersonPattern = regexp.MustCompile(`(?i)\b(you|your|you're|yours)\b`)

// Validator is the pure predicate pipeline applied to repaired generator
// output. Checks run in a fixed order, cheapest and most decisive first,
// and short-circuit on the first failure.
type Validator struct {
	config ValidatorConfig
}

// NewValidator creates a validator, validating the configured bounds.
func NewValidator(config ValidatorConfig) (*Validator, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid validator config: %w", err)
	}
	return &Validator{config: config}, nil
}

// Validate reports whether the question is acceptable. It never fails;
// on rejection it returns the reason for the first check that did not
// pass.
func (v *Validator) Validate(question string) (bool, RejectionReason) {
	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		return false, ReasonEmpty
	}

	if containsNonEnglish(trimmed) {
		return false, ReasonNonEnglish
	}

	if !strings.HasSuffix(trimmed, "?") {
		return false, ReasonNoQuestionMark
	}

	words := countWords(trimmed)
	if words < v.config.MinWords {
		return false, ReasonTooFewWords
	}
	if words > v.config.MaxWords {
		return false, ReasonTooManyWords
	}

	if roboticOpenings.MatchString(trimmed) {
		return false, ReasonRoboticOpening
	}

	if !naturalStarters.MatchString(trimmed) {
		return false, ReasonNoNaturalStarter
	}

	if !secondPersonPattern.MatchString(trimmed) {
		return false, ReasonNotSecondPerson
	}

	for _, p := range brokenGrammarPatterns {
		if p.MatchString(trimmed) {
			return false, ReasonBrokenGrammar
		}
	}

	return true, ""
}

// containsNonEnglish reports whether the text has CJK or full-width
// characters, which violate the English-only output policy.
func containsNonEnglish(text string) bool {
	for _, r := range text {
		if unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul) {
			return true
		}
		// Full-width and half-width forms block.
		if r >= 0xFF00 && r <= 0xFFEF {
			return true
		}
	}
	return false
}
