package interview

import (
	"regexp"
	"strings"
)

// repairRule is one ordered pattern substitution. Rules run in table
// order; later rules assume earlier normalization, so duplicate-punctuation
// cleanup stays last.
type repairRule struct {
	name        string
	pattern     *regexp.Regexp
	replacement string
}

// repairRules rewrites common robotic or malformed generator output into
// conversational phrasing. Every rule is idempotent: its replacement never
// re-matches its own pattern.
var repairRules = []repairRule{
	{
		name:        "explain_would_you",
		pattern:     regexp.MustCompile(`(?i)^explain (?:how )?would you\b`),
		replacement: "How would you",
	},
	{
		name:        "explain_how_you_would",
		pattern:     regexp.MustCompile(`(?i)^explain how you would\b`),
		replacement: "How would you",
	},
	{
		name:        "explain_concept_of",
		pattern:     regexp.MustCompile(`(?i)^explain the concept of\b`),
		replacement: "Can you explain",
	},
	{
		name:        "describe_opening",
		pattern:     regexp.MustCompile(`(?i)^describe\b`),
		replacement: "Can you describe",
	},
	{
		name:        "doubled_the",
		pattern:     regexp.MustCompile(`(?i)\b(?:the\s+)+the\b`),
		replacement: "the",
	},
	{
		name:        "doubled_a",
		pattern:     regexp.MustCompile(`(?i)\b(?:a\s+)+a\b`),
		replacement: "a",
	},
	{
		name:        "doubled_an",
		pattern:     regexp.MustCompile(`(?i)\b(?:an\s+)+an\b`),
		replacement: "an",
	},
	{
		name:        "doubled_would",
		pattern:     regexp.MustCompile(`(?i)\b(?:would\s+)+would\b`),
		replacement: "would",
	},
	{
		name:        "doubled_you",
		pattern:     regexp.MustCompile(`(?i)\b(?:you\s+)+you\b`),
		replacement: "you",
	},
	{
		name:        "missing_article",
		pattern:     regexp.MustCompile(`(?i)\b(design|build|implement|create) (caching|logging|monitoring|queueing) (layer|system|pipeline|service)\b`),
		replacement: "$1 a $2 $3",
	},
	{
		name:        "duplicate_question_marks",
		pattern:     regexp.MustCompile(`\?{2,}`),
		replacement: "?",
	},
	{
		name:        "duplicate_periods",
		pattern:     regexp.MustCompile(`\.{2,}`),
		replacement: ".",
	},
	{
		name:        "duplicate_commas",
		pattern:     regexp.MustCompile(`,{2,}`),
		replacement: ",",
	},
	{
		name:        "collapsed_spaces",
		pattern:     regexp.MustCompile(`[ \t]{2,}`),
		replacement: " ",
	},
}

// RepairGrammar rewrites generated text through the ordered rule table.
// It is a pure transform: applying it to already-repaired text changes
// nothing.
func RepairGrammar(text string) string {
	repaired := strings.TrimSpace(text)
	for _, rule := range repairRules {
		repaired = rule.pattern.ReplaceAllString(repaired, rule.replacement)
	}
	return strings.TrimSpace(repaired)
}
