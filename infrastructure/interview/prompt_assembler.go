package interview

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/ahrav/go-parley/internal/domain"
)

// AssemblerConfig controls prompt construction.
type AssemblerConfig struct {
	// HistoryCap bounds how many recent Q&A pairs are included in the
	// prompt. Older pairs are dropped first.
	HistoryCap int `yaml:"history_cap" validate:"gt=0"`

	// Phase boundaries as progress ratios, strictly increasing.
	WarmupRatio   float64 `yaml:"warmup_ratio" validate:"gt=0,lt=1"`
	CoreRatio     float64 `yaml:"core_ratio" validate:"gtfield=WarmupRatio,lt=1"`
	DeepDiveRatio float64 `yaml:"deep_dive_ratio" validate:"gtfield=CoreRatio,lt=1"`

	// Defaults substituted when the request omits role or skills.
	DefaultRole   string `yaml:"default_role" validate:"required"`
	DefaultSkills string `yaml:"default_skills" validate:"required"`
}

// DefaultAssemblerConfig returns the standard prompt policy.
func DefaultAssemblerConfig() AssemblerConfig {
	return AssemblerConfig{
		HistoryCap:    3,
		WarmupRatio:   0.25,
		CoreRatio:     0.60,
		DeepDiveRatio: 0.85,
		DefaultRole:   "Developer",
		DefaultSkills: "general programming skills",
	}
}

// phaseGuidance frames the question for the current stage of the
// interview.
var phaseGuidance = map[domain.InterviewPhase]string{
	domain.PhaseWarmup:   "This is the warm-up phase. Ask an approachable question about the candidate's background or general experience to put them at ease.",
	domain.PhaseCore:     "This is the core technical phase. Ask a substantive question that tests practical knowledge of the listed skills.",
	domain.PhaseDeepDive: "This is the deep-dive phase. Ask a challenging question about design decisions, trade-offs, or failure modes.",
	domain.PhaseWrapup:   "This is the wrap-up phase. Ask a reflective closing question about lessons learned or growth areas.",
}

// levelGuidance adjusts expected difficulty per seniority.
var levelGuidance = map[domain.InterviewLevel]string{
	domain.LevelIntern: "The candidate is an intern. Keep the question fundamental and avoid assuming production experience.",
	domain.LevelJunior: "The candidate is junior. Focus on core concepts and simple practical scenarios.",
	domain.LevelMid:    "The candidate is mid-level. Expect hands-on experience and ask about real implementation work.",
	domain.LevelSenior: "The candidate is senior. Ask about architecture, scale, and decisions they have owned.",
	domain.LevelLead:   "The candidate is a lead. Ask about technical leadership, system design, and cross-team trade-offs.",
}

// strategyInstructions steer the tone of the follow-up per analyzer
// strategy. {{.Technology}} is filled for technology-probing follow-ups.
var strategyInstructions = map[domain.Strategy]string{
	domain.StrategyEncourageDetail: "The previous answer was thin. Ask a follow-up that invites the candidate to elaborate with specifics.",
	domain.StrategyRequestExample:  "The previous answer stayed abstract. Ask for a concrete example from the candidate's real work.",
	domain.StrategyProbeTechnology: "The candidate mentioned {{.Technology}}. Ask a specific follow-up about how they used {{.Technology}} in practice.",
	domain.StrategyExploreEdgeCase: "The previous answer was solid. Ask about edge cases, failure modes, or limits of the approach they described.",
	domain.StrategyChangeTopic:     "The previous topic is exhausted. Move to a different skill area from the list.",
	domain.StrategyDeepDive:        "The previous answer was good but surface-level. Ask how the solution works underneath.",
}

var systemPromptTemplate = template.Must(template.New("system").Parse(
	`You are an experienced technical interviewer conducting an interview for a {{.Level}} {{.Role}} position. The interview covers: {{.Skills}}.
{{.LevelGuidance}}
Ask exactly one conversational question. The question must address the candidate directly using "you" or "your", end with a question mark, and avoid textbook phrasing like "Explain the" or "Define".`))

var userPromptTemplate = template.Must(template.New("user").Parse(
	`Question {{.QuestionNumber}} of {{.TotalQuestions}}. {{.PhaseGuidance}}
{{- if .MissingSkills}}
The candidate's background does not cover: {{.MissingSkills}}. Probing one of these is valuable.
{{- end}}
{{- if .History}}
Recent exchanges:
{{.History}}
{{- end}}
{{- if .StrategyInstruction}}
{{.StrategyInstruction}}
{{- end}}
Generate the next interview question.`))

// Assembler builds system and user prompts from a typed prompt context.
// It is stateless and safe for concurrent use.
type Assembler struct {
	config AssemblerConfig
}

// NewAssembler creates an assembler, validating the configured policy.
func NewAssembler(config AssemblerConfig) (*Assembler, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid assembler config: %w", err)
	}
	return &Assembler{config: config}, nil
}

// Assemble produces the system and user prompt for the given context.
// Missing role or skills fall back to generic defaults; the output is
// never empty.
func (a *Assembler) Assemble(pc domain.PromptContext) (systemPrompt, userPrompt string, err error) {
	role := strings.TrimSpace(pc.Role)
	if role == "" {
		role = a.config.DefaultRole
	}
	skills := a.config.DefaultSkills
	if len(pc.Skills) > 0 {
		skills = strings.Join(pc.Skills, ", ")
	}

	level := pc.Level
	if level == "" {
		level = domain.DefaultLevel
	}

	var sysBuf strings.Builder
	err = systemPromptTemplate.Execute(&sysBuf, map[string]any{
		"Level":         level,
		"Role":          role,
		"Skills":        skills,
		"LevelGuidance": levelGuidance[level],
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to render system prompt: %w", err)
	}

	phase := domain.PhaseForProgress(pc.QuestionNumber, pc.TotalQuestions,
		a.config.WarmupRatio, a.config.CoreRatio, a.config.DeepDiveRatio)

	var missingSkills string
	if pc.Profile != nil && len(pc.Profile.Missing) > 0 {
		missingSkills = strings.Join(pc.Profile.Missing, ", ")
	}

	var userBuf strings.Builder
	err = userPromptTemplate.Execute(&userBuf, map[string]any{
		"QuestionNumber":      pc.QuestionNumber,
		"TotalQuestions":      pc.TotalQuestions,
		"PhaseGuidance":       phaseGuidance[phase],
		"MissingSkills":       missingSkills,
		"History":             a.renderHistory(pc.History),
		"StrategyInstruction": a.strategyInstruction(pc),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to render user prompt: %w", err)
	}

	return sysBuf.String(), userBuf.String(), nil
}

// renderHistory formats the most recent exchanges, oldest first, dropping
// pairs beyond the cap.
func (a *Assembler) renderHistory(history []domain.QAPair) string {
	if len(history) == 0 {
		return ""
	}
	if len(history) > a.config.HistoryCap {
		history = history[len(history)-a.config.HistoryCap:]
	}

	var sb strings.Builder
	for i, pair := range history {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "Q: %s\nA: %s", pair.Question, pair.Answer)
	}
	return sb.String()
}

// strategyInstruction renders the follow-up steering block for the chosen
// strategy. Technology probes name the first technology the analyzer
// found; without one the instruction falls back to the deep-dive framing.
func (a *Assembler) strategyInstruction(pc domain.PromptContext) string {
	if pc.Strategy == "" {
		return ""
	}

	instruction, ok := strategyInstructions[pc.Strategy]
	if !ok {
		return ""
	}

	if pc.Strategy == domain.StrategyProbeTechnology {
		if pc.Analysis == nil || len(pc.Analysis.Technologies) == 0 {
			return strategyInstructions[domain.StrategyDeepDive]
		}
		tmpl, err := template.New("strategy").Parse(instruction)
		if err != nil {
			return ""
		}
		var buf strings.Builder
		if err := tmpl.Execute(&buf, map[string]any{
			"Technology": pc.Analysis.Technologies[0],
		}); err != nil {
			return ""
		}
		return buf.String()
	}

	return instruction
}
