package domain

// SkillMention is one skill extracted from CV or job-description text,
// with any experience duration that could be attached to it.
type SkillMention struct {
	// Name is the canonical skill keyword.
	Name string `json:"name"`

	// Category is the vocabulary category the skill belongs to.
	Category string `json:"category"`

	// Years is the number of years of experience claimed for the skill,
	// or 0 when no duration could be attributed.
	Years float64 `json:"years,omitempty"`
}

// SkillProfile is the structured result of parsing candidate CV text
// against an optional job description.
type SkillProfile struct {
	// Skills are the skills found in the candidate's text.
	Skills []SkillMention `json:"skills"`

	// TotalYears is the overall experience duration detected in the text,
	// or 0 when none was stated.
	TotalYears float64 `json:"total_years,omitempty"`

	// Matching lists required skills the candidate also has.
	Matching []string `json:"matching,omitempty"`

	// Missing lists required skills absent from the candidate's text.
	Missing []string `json:"missing,omitempty"`

	// MatchRatio is matched / required, in [0, 1]; 1.0 when the job
	// description names no recognizable skills.
	MatchRatio float64 `json:"match_ratio"`
}

// SkillNames returns the candidate's skill keywords in extraction order.
func (sp SkillProfile) SkillNames() []string {
	names := make([]string, len(sp.Skills))
	for i, s := range sp.Skills {
		names[i] = s.Name
	}
	return names
}

// PromptContext carries everything the prompt assembler needs to build a
// question-generation prompt. It replaces free-form key/value context maps
// with named, validated fields.
type PromptContext struct {
	// Role is the position being interviewed for; empty falls back to a
	// generic default.
	Role string

	// Level is the normalized candidate seniority.
	Level InterviewLevel

	// Skills are the skills the interview should cover; empty falls back
	// to a generic default.
	Skills []string

	// QuestionNumber is the 1-based position of the question to generate.
	QuestionNumber int

	// TotalQuestions is the planned interview length.
	TotalQuestions int

	// History holds prior exchanges, oldest first. The assembler truncates
	// it to its configured cap, dropping the oldest pairs.
	History []QAPair

	// Strategy is the follow-up strategy chosen by the answer analyzer.
	Strategy Strategy

	// Analysis is the analyzer output for the previous answer, when one
	// exists. Used to ground strategy instructions (e.g. which technology
	// to probe).
	Analysis *AnswerAnalysis

	// Profile is optional structured CV/JD data for skill-gap targeting.
	Profile *SkillProfile
}
