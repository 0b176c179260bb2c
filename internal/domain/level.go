package domain

import "strings"

// InterviewLevel is the normalized seniority of the candidate being
// interviewed. Free-text level strings from callers are normalized onto
// this fixed set before any rule lookup.
type InterviewLevel string

// Supported interview levels.
const (
	LevelIntern InterviewLevel = "Intern"
	LevelJunior InterviewLevel = "Junior"
	LevelMid    InterviewLevel = "Mid"
	LevelSenior InterviewLevel = "Senior"
	LevelLead   InterviewLevel = "Lead"
)

// DefaultLevel is used when the caller's level string is empty or not
// recognized.
const DefaultLevel = LevelMid

// NormalizeLevel maps a free-text seniority string onto the fixed level set.
// Matching is case-insensitive and tolerant of common synonyms; anything
// unrecognized maps to DefaultLevel.
func NormalizeLevel(raw string) InterviewLevel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "intern", "internship", "trainee", "student":
		return LevelIntern
	case "junior", "jr", "entry", "entry-level", "entry level", "graduate":
		return LevelJunior
	case "mid", "middle", "mid-level", "mid level", "intermediate", "regular":
		return LevelMid
	case "senior", "sr":
		return LevelSenior
	case "lead", "staff", "principal", "architect", "team lead", "tech lead":
		return LevelLead
	default:
		return DefaultLevel
	}
}

// InterviewPhase identifies where the interview currently is, derived from
// the progress ratio rather than absolute question counts so it scales with
// interview length.
type InterviewPhase string

// Interview phases in chronological order.
const (
	PhaseWarmup   InterviewPhase = "warmup"
	PhaseCore     InterviewPhase = "core"
	PhaseDeepDive InterviewPhase = "deep_dive"
	PhaseWrapup   InterviewPhase = "wrapup"
)

// PhaseForProgress selects the interview phase for the given question
// position. The boundaries are ratio thresholds over current/total; a
// non-positive total is treated as a single-question interview.
func PhaseForProgress(current, total int, warmupRatio, coreRatio, deepDiveRatio float64) InterviewPhase {
	if total <= 0 {
		total = 1
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	ratio := float64(current) / float64(total)
	switch {
	case ratio <= warmupRatio:
		return PhaseWarmup
	case ratio <= coreRatio:
		return PhaseCore
	case ratio <= deepDiveRatio:
		return PhaseDeepDive
	default:
		return PhaseWrapup
	}
}
