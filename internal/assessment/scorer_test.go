package assessment

import (
	"reflect"
	"strings"
	"testing"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestAnswerScorerDetail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		words  int
		points int
		tag    string
	}{
		{name: "excellent", words: 50, points: 30, tag: "✓ Excellent detail"},
		{name: "good", words: 30, points: 20, tag: "• Good detail"},
		{name: "good upper bound", words: 49, points: 20, tag: "• Good detail"},
		{name: "moderate", words: 15, points: 10, tag: "• Moderate detail"},
		{name: "brief", words: 14, points: 5, tag: "◦ Brief answer"},
		{name: "empty", words: 0, points: 5, tag: "◦ Brief answer"},
	}

	scorer := NewAnswerScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := scorer.Score(Answer{Text: words(tt.words)}, nil)
			if got.WordCount != tt.words {
				t.Fatalf("expected %d words, got %d", tt.words, got.WordCount)
			}
			if got.Detail != tt.points {
				t.Fatalf("expected detail %d, got %d", tt.points, got.Detail)
			}
			if got.Feedback[0] != tt.tag {
				t.Fatalf("expected tag %q, got %q", tt.tag, got.Feedback[0])
			}
		})
	}
}

func TestAnswerScorerRelevance(t *testing.T) {
	t.Parallel()

	strengths := []string{"python", "sql", "docker", "aws"}

	tests := []struct {
		name    string
		answer  string
		points  int
		tag     string
		matched []string
	}{
		{name: "three skills", answer: "Python, SQL and Docker daily", points: 35, tag: "✓ Highly relevant to role", matched: []string{"python", "sql", "docker"}},
		{name: "four skills", answer: "python sql docker aws", points: 35, tag: "✓ Highly relevant to role", matched: []string{"python", "sql", "docker", "aws"}},
		{name: "two skills", answer: "I like PYTHON and sql", points: 28, tag: "✓ Relevant to role", matched: []string{"python", "sql"}},
		{name: "one skill", answer: "some docker", points: 18, tag: "• Some relevance", matched: []string{"docker"}},
		{name: "keyword only", answer: "My Experience is broad", points: 8, tag: "• Generic but relevant", matched: []string{}},
		{name: "keyword must be a word", answer: "projection mapping", points: 0, tag: "◦ Limited relevance", matched: []string{}},
		{name: "nothing", answer: "hello there", points: 0, tag: "◦ Limited relevance", matched: []string{}},
	}

	scorer := NewAnswerScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := scorer.Score(Answer{Text: tt.answer}, strengths)
			if got.Relevance != tt.points {
				t.Fatalf("expected relevance %d, got %d", tt.points, got.Relevance)
			}
			if got.Feedback[1] != tt.tag {
				t.Fatalf("expected tag %q, got %q", tt.tag, got.Feedback[1])
			}
			if !reflect.DeepEqual(got.SkillsMatched, tt.matched) {
				t.Fatalf("expected matched %v, got %v", tt.matched, got.SkillsMatched)
			}
		})
	}
}

func TestAnswerScorerDistinctStrengths(t *testing.T) {
	t.Parallel()

	got := NewAnswerScorer().Score(Answer{Text: "python python python"}, []string{"python", "Python", "python"})
	if got.Relevance != 18 {
		t.Fatalf("expected duplicates to count once, got relevance %d", got.Relevance)
	}
}

func TestAnswerScorerSpecificity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		answer string
		points int
		tag    string
	}{
		{name: "metric and achievement", answer: "I led the migration for 3 years", points: 35, tag: "✓ Specific & measured"},
		{name: "percent", answer: "We successfully cut latency by 40%", points: 35, tag: "✓ Specific & measured"},
		{name: "metric only", answer: "It had 2000 users", points: 20, tag: "• Some specificity"},
		{name: "achievement only", answer: "I managed a team", points: 20, tag: "• Some specificity"},
		{name: "neither", answer: "I am fine", points: 10, tag: "◦ Could be more specific"},
	}

	scorer := NewAnswerScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := scorer.Score(Answer{Text: tt.answer}, nil)
			if got.Specificity != tt.points {
				t.Fatalf("expected specificity %d, got %d", tt.points, got.Specificity)
			}
			if got.Feedback[2] != tt.tag {
				t.Fatalf("expected tag %q, got %q", tt.tag, got.Feedback[2])
			}
		})
	}
}

func TestAnswerScorerTotal(t *testing.T) {
	t.Parallel()

	answer := Answer{
		QuestionIndex: 2,
		Text:          "I built a reporting platform in Python and SQL over 3 years. " + words(45),
	}

	scorer := NewAnswerScorer()
	got := scorer.Score(answer, []string{"python", "sql"})

	if got.Score != 93 {
		t.Fatalf("expected 93, got %d", got.Score)
	}
	if got.Detail+got.Relevance+got.Specificity != got.Score {
		t.Fatalf("sub-scores do not add up: %+v", got)
	}
	if got.QuestionIndex != 2 {
		t.Fatalf("expected question index to be kept, got %d", got.QuestionIndex)
	}
	if len(got.Feedback) != 3 {
		t.Fatalf("expected 3 feedback tags, got %v", got.Feedback)
	}

	again := scorer.Score(answer, []string{"python", "sql"})
	if !reflect.DeepEqual(got, again) {
		t.Fatalf("expected deterministic scoring")
	}
}

func TestAnswerScorerMaximum(t *testing.T) {
	t.Parallel()

	text := "I built and led work with python sql docker for 5 years. " + words(50)
	got := NewAnswerScorer().Score(Answer{Text: text}, []string{"python", "sql", "docker"})

	if got.Score != 100 {
		t.Fatalf("expected maximum score 100, got %d", got.Score)
	}
}

func TestAnswerScorerScoreAll(t *testing.T) {
	t.Parallel()

	answers := []Answer{{QuestionIndex: 0, Text: "one"}, {QuestionIndex: 1, Text: "two words"}}
	scores := NewAnswerScorer().ScoreAll(answers, nil)

	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(scores))
	}
	if scores[1].QuestionIndex != 1 || scores[1].WordCount != 2 {
		t.Fatalf("unexpected second score: %+v", scores[1])
	}
}
