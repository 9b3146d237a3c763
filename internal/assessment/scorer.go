package assessment

import (
	"regexp"
	"strings"

	"github.com/spigell/hh-interviewer/internal/utils"
)

const maxScore = 100

var (
	experienceKeywords = regexp.MustCompile(`(?i)\b(experience|project|built|developed|created|implemented|designed|managed|learned|skilled|proficient)\b`)
	metricPattern      = regexp.MustCompile(`(?i)\b(\d+\s*(years?|months?|projects?|users?|%))`)
	achievementPattern = regexp.MustCompile(`(?i)\b(built|created|developed|implemented|successfully|achieved|led|managed)\b`)
)

// Answer is the candidate text for the question at QuestionIndex.
type Answer struct {
	QuestionIndex int    `json:"question_index"`
	Text          string `json:"text"`
}

// AnswerScore is the graded form of a single answer. Detail, Relevance and
// Specificity sum to Score before the cap.
type AnswerScore struct {
	QuestionIndex int      `json:"question_index"`
	Score         int      `json:"score"`
	WordCount     int      `json:"word_count"`
	SkillsMatched []string `json:"skills_matched"`
	Feedback      []string `json:"feedback"`
	Detail        int      `json:"detail"`
	Relevance     int      `json:"relevance"`
	Specificity   int      `json:"specificity"`
}

// AnswerScorer grades free-text answers. It has no state and is safe for
// concurrent use.
type AnswerScorer struct{}

func NewAnswerScorer() *AnswerScorer {
	return &AnswerScorer{}
}

// Score grades one answer against the candidate strengths.
func (s *AnswerScorer) Score(answer Answer, strengths []string) AnswerScore {
	lower := strings.ToLower(answer.Text)
	words := utils.WordCount(answer.Text)

	result := AnswerScore{
		QuestionIndex: answer.QuestionIndex,
		WordCount:     words,
		SkillsMatched: []string{},
		Feedback:      make([]string, 0, 3),
	}

	var tag string
	result.Detail, tag = detailScore(words)
	result.Feedback = append(result.Feedback, tag)

	result.SkillsMatched = mentionedSkills(lower, strengths)
	result.Relevance, tag = relevanceScore(len(result.SkillsMatched), lower)
	result.Feedback = append(result.Feedback, tag)

	result.Specificity, tag = specificityScore(lower)
	result.Feedback = append(result.Feedback, tag)

	result.Score = min(result.Detail+result.Relevance+result.Specificity, maxScore)
	return result
}

// ScoreAll grades answers in order.
func (s *AnswerScorer) ScoreAll(answers []Answer, strengths []string) []AnswerScore {
	scores := make([]AnswerScore, 0, len(answers))
	for _, a := range answers {
		scores = append(scores, s.Score(a, strengths))
	}
	return scores
}

func detailScore(words int) (int, string) {
	switch {
	case words >= 50:
		return 30, "✓ Excellent detail"
	case words >= 30:
		return 20, "• Good detail"
	case words >= 15:
		return 10, "• Moderate detail"
	default:
		return 5, "◦ Brief answer"
	}
}

func relevanceScore(matches int, lower string) (int, string) {
	switch {
	case matches >= 3:
		return 35, "✓ Highly relevant to role"
	case matches == 2:
		return 28, "✓ Relevant to role"
	case matches == 1:
		return 18, "• Some relevance"
	case experienceKeywords.MatchString(lower):
		return 8, "• Generic but relevant"
	default:
		return 0, "◦ Limited relevance"
	}
}

func specificityScore(lower string) (int, string) {
	hits := 0
	if metricPattern.MatchString(lower) {
		hits++
	}
	if achievementPattern.MatchString(lower) {
		hits++
	}

	switch hits {
	case 2:
		return 35, "✓ Specific & measured"
	case 1:
		return 20, "• Some specificity"
	default:
		return 10, "◦ Could be more specific"
	}
}

func mentionedSkills(lower string, strengths []string) []string {
	seen := make(map[string]struct{}, len(strengths))
	matched := []string{}
	for _, skill := range strengths {
		key := strings.ToLower(strings.TrimSpace(skill))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if strings.Contains(lower, key) {
			matched = append(matched, skill)
		}
	}
	return matched
}
