package assessment

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// SkillState classifies a job skill against the candidate evidence. It is
// encoded as its name in JSON.
type SkillState int

const (
	SkillUnknown SkillState = iota
	SkillWeakness
	SkillStrength
)

func (s SkillState) String() string {
	switch s {
	case SkillWeakness:
		return "weakness"
	case SkillStrength:
		return "strength"
	default:
		return "unknown"
	}
}

func (s SkillState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SkillState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "weakness":
		*s = SkillWeakness
	case "strength":
		*s = SkillStrength
	case "unknown":
		*s = SkillUnknown
	default:
		return fmt.Errorf("%w: unknown skill state %q", ErrInvalidInput, text)
	}
	return nil
}

// SkillEntry is a lower-cased job skill and its classification.
type SkillEntry struct {
	Name  string     `json:"name"`
	State SkillState `json:"state"`
}

// SkillAnalysis is the outcome of matching a résumé against the job skills.
type SkillAnalysis struct {
	Matched int          `json:"matched"`
	Total   int          `json:"total"`
	Percent int          `json:"percent"`
	Skills  []SkillEntry `json:"skills"`
	// Proceed reports whether Percent reaches the gate. Callers decide what to
	// do below it.
	Proceed bool `json:"proceed"`
}

// Strengths returns the skills classified as strengths in job order.
func (a *SkillAnalysis) Strengths() []string {
	return a.withState(SkillStrength)
}

// Weaknesses returns the skills classified as weaknesses in job order.
func (a *SkillAnalysis) Weaknesses() []string {
	return a.withState(SkillWeakness)
}

func (a *SkillAnalysis) withState(state SkillState) []string {
	out := make([]string, 0, len(a.Skills))
	for _, s := range a.Skills {
		if s.State == state {
			out = append(out, s.Name)
		}
	}
	return out
}

func (a *SkillAnalysis) clone() []SkillEntry {
	skills := make([]SkillEntry, len(a.Skills))
	copy(skills, a.Skills)
	return skills
}

type matchRule string

const (
	ruleNone      matchRule = "none"
	rulePhrase    matchRule = "phrase"
	ruleFirstWord matchRule = "first_word"
	ruleAnyWord   matchRule = "any_word"
)

type SkillMatcher struct {
	thresholds Thresholds
	logger     *zap.Logger
}

func NewSkillMatcher(thresholds Thresholds, logger *zap.Logger) *SkillMatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SkillMatcher{thresholds: thresholds.WithDefaults(), logger: logger}
}

// Analyze matches every job skill against the résumé text and reports the
// overlap. A job without skills yields ErrConfiguration.
func (m *SkillMatcher) Analyze(job JobDescription, resume string) (*SkillAnalysis, error) {
	skills := dedupe(job.normalizedSkills())
	if len(skills) == 0 {
		return nil, ErrConfiguration
	}

	resumeLower := strings.ToLower(resume)
	analysis := &SkillAnalysis{
		Total:  len(skills),
		Skills: make([]SkillEntry, 0, len(skills)),
	}

	for _, skill := range skills {
		rule := m.match(skill, resumeLower)
		state := SkillWeakness
		if rule != ruleNone {
			state = SkillStrength
			analysis.Matched++
		}

		m.logger.Debug("skill match decision",
			zap.String("skill", skill),
			zap.String("rule", string(rule)),
			zap.Stringer("state", state),
		)

		analysis.Skills = append(analysis.Skills, SkillEntry{Name: skill, State: state})
	}

	analysis.Percent = percent(analysis.Matched, analysis.Total)
	analysis.Proceed = analysis.Percent >= m.thresholds.Gate

	m.logger.Debug("skill analysis",
		zap.Int("matched", analysis.Matched),
		zap.Int("total", analysis.Total),
		zap.Int("percent", analysis.Percent),
		zap.Bool("proceed", analysis.Proceed),
	)

	return analysis, nil
}

// Gate returns the configured auto-proceed threshold.
func (m *SkillMatcher) Gate() int {
	return m.thresholds.Gate
}

func (m *SkillMatcher) match(skill, resume string) matchRule {
	if strings.Contains(resume, skill) {
		return rulePhrase
	}

	words := strings.Fields(skill)
	if len(words) == 0 {
		return ruleNone
	}

	// Counted in letters, not bytes.
	if first := words[0]; utf8.RuneCountInString(first) > m.thresholds.FirstWordMinLen && strings.Contains(resume, first) {
		return ruleFirstWord
	}

	if len(words) > 1 {
		for _, word := range words {
			if strings.Contains(resume, word) {
				return ruleAnyWord
			}
		}
	}

	return ruleNone
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
