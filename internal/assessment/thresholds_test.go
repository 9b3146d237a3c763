package assessment

import "testing"

func TestThresholdsWithDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Thresholds
		want Thresholds
	}{
		{
			name: "empty",
			want: DefaultThresholds(),
		},
		{
			name: "zero and negative mean default",
			in:   Thresholds{Gate: 0, FirstWordMinLen: -1, Selection: -70, QuestionCount: 0, ResumeSegments: -3},
			want: DefaultThresholds(),
		},
		{
			name: "configured values are kept",
			in:   Thresholds{Gate: 1, FirstWordMinLen: 3, Selection: 50, QuestionCount: 8, ResumeSegments: 1},
			want: Thresholds{Gate: 1, FirstWordMinLen: 3, Selection: 50, QuestionCount: 8, ResumeSegments: 1},
		},
		{
			name: "partial",
			in:   Thresholds{Gate: 80},
			want: Thresholds{Gate: 80, FirstWordMinLen: DefaultFirstWordMinLen, Selection: DefaultSelection, QuestionCount: DefaultQuestionCount, ResumeSegments: DefaultResumeSegments},
		},
	}

	for _, tt := range tests {
		if got := tt.in.WithDefaults(); got != tt.want {
			t.Fatalf("%s: expected %+v, got %+v", tt.name, tt.want, got)
		}
	}
}

func TestSkillMatcherZeroGateUsesDefault(t *testing.T) {
	t.Parallel()

	matcher := NewSkillMatcher(Thresholds{Gate: 0}, nil)
	if matcher.Gate() != DefaultGate {
		t.Fatalf("expected a zero gate to fall back to %d, got %d", DefaultGate, matcher.Gate())
	}

	analysis, err := matcher.Analyze(JobDescription{Skills: []string{"Go", "Rust"}}, "nothing relevant")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.Proceed {
		t.Fatalf("expected 0%% not to proceed with a defaulted gate")
	}
}
