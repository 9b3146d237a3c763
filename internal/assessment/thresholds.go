package assessment

const (
	DefaultGate            = 70
	DefaultFirstWordMinLen = 2
	DefaultSelection       = 70
	DefaultQuestionCount   = 5
	DefaultResumeSegments  = 3
)

// Thresholds holds the tunable numbers of the engine. A zero or negative
// field means "use the default", so a gate or selection bar of 0 cannot be
// configured; use 1 to let nearly everyone through.
type Thresholds struct {
	// Gate is the minimal skill match percent that starts an interview without confirmation.
	Gate int `mapstructure:"gate" json:"gate"`
	// FirstWordMinLen is the length in letters the first word of a skill must exceed to be matched on its own.
	FirstWordMinLen int `mapstructure:"first-word-min-len" json:"first_word_min_len"`
	// Selection is the composite score a candidate must exceed to be selected.
	Selection int `mapstructure:"selection" json:"selection"`
	// QuestionCount is the size of the interview.
	QuestionCount int `mapstructure:"question-count" json:"question_count"`
	// ResumeSegments is how many résumé sentences become follow-up questions.
	ResumeSegments int `mapstructure:"resume-segments" json:"resume_segments"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Gate:            DefaultGate,
		FirstWordMinLen: DefaultFirstWordMinLen,
		Selection:       DefaultSelection,
		QuestionCount:   DefaultQuestionCount,
		ResumeSegments:  DefaultResumeSegments,
	}
}

// WithDefaults replaces every zero or negative field with its value from
// DefaultThresholds.
func (t Thresholds) WithDefaults() Thresholds {
	def := DefaultThresholds()
	if t.Gate <= 0 {
		t.Gate = def.Gate
	}
	if t.FirstWordMinLen <= 0 {
		t.FirstWordMinLen = def.FirstWordMinLen
	}
	if t.Selection <= 0 {
		t.Selection = def.Selection
	}
	if t.QuestionCount <= 0 {
		t.QuestionCount = def.QuestionCount
	}
	if t.ResumeSegments <= 0 {
		t.ResumeSegments = def.ResumeSegments
	}
	return t
}
