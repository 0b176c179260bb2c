package interview

import (
	"regexp"
	"strconv"

	"github.com/agnivade/levenshtein"

	"github.com/ahrav/go-parley/internal/domain"
)

// yearsPattern captures "3 years", "5+ years", and "2.5 yrs" style
// duration claims.
var yearsPattern = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*\+?\s*(?:years?|yrs?)\b`)

// skillYearsPattern captures a duration immediately tied to a skill,
// e.g. "3 years of Go" or "5+ years with Kubernetes".
var skillYearsPattern = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*\+?\s*(?:years?|yrs?)\s+(?:of|with|in|using)\s+([A-Za-z0-9+#./]+)`)

// SkillGapExtractor parses CV and job-description free text into a
// structured skill profile. It reuses the analyzer's technology vocabulary
// and tolerates close misspellings of required skills.
type SkillGapExtractor struct {
	// maxEditDistance is how far a candidate token may differ from a
	// required skill and still count as a match.
	maxEditDistance int
}

// NewSkillGapExtractor creates an extractor with a tolerance of one edit.
func NewSkillGapExtractor() *SkillGapExtractor {
	return &SkillGapExtractor{maxEditDistance: 1}
}

// Extract parses candidate text and an optional list of required skills
// from the job description into a SkillProfile. It never fails; text with
// no recognizable skills yields an empty profile with MatchRatio 1.0 when
// nothing was required.
func (e *SkillGapExtractor) Extract(cvText string, requiredSkills []string) domain.SkillProfile {
	tokens := tokenizeAnswer(cvText)
	present := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		present[tok] = true
	}

	perSkillYears := e.extractSkillYears(cvText)

	var skills []domain.SkillMention
	for _, cat := range technologyVocabulary {
		for _, term := range cat.terms {
			if present[term] {
				skills = append(skills, domain.SkillMention{
					Name:     term,
					Category: cat.name,
					Years:    perSkillYears[term],
				})
			}
		}
	}

	profile := domain.SkillProfile{
		Skills:     skills,
		TotalYears: e.extractTotalYears(cvText),
		MatchRatio: 1.0,
	}

	if len(requiredSkills) == 0 {
		return profile
	}

	have := make(map[string]bool, len(skills))
	for _, s := range skills {
		have[s.Name] = true
	}

	for _, required := range requiredSkills {
		folded := foldString(required)
		if folded == "" {
			continue
		}
		if have[folded] || present[folded] || e.fuzzyHas(present, folded) {
			profile.Matching = append(profile.Matching, required)
		} else {
			profile.Missing = append(profile.Missing, required)
		}
	}

	total := len(profile.Matching) + len(profile.Missing)
	if total > 0 {
		profile.MatchRatio = float64(len(profile.Matching)) / float64(total)
	}
	return profile
}

// fuzzyHas reports whether any candidate token is within the edit-distance
// tolerance of the required skill, catching close misspellings like
// "kubernets". Very short names require exact matches to avoid "go"
// matching "gol".
func (e *SkillGapExtractor) fuzzyHas(tokens map[string]bool, required string) bool {
	if len(required) <= 3 {
		return false
	}
	for token := range tokens {
		if levenshtein.ComputeDistance(token, required) <= e.maxEditDistance {
			return true
		}
	}
	return false
}

// extractTotalYears returns the largest standalone duration claim in the
// text, treating it as overall experience.
func (e *SkillGapExtractor) extractTotalYears(text string) float64 {
	var max float64
	for _, m := range yearsPattern.FindAllStringSubmatch(text, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > max {
			max = v
		}
	}
	return max
}

// extractSkillYears maps folded skill tokens to durations stated right
// next to them.
func (e *SkillGapExtractor) extractSkillYears(text string) map[string]float64 {
	result := map[string]float64{}
	for _, m := range skillYearsPattern.FindAllStringSubmatch(text, -1) {
		years, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		result[foldString(m[2])] = years
	}
	return result
}
