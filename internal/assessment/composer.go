package assessment

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Status is the final hiring signal.
type Status string

const (
	StatusSelected Status = "Selected"
	StatusRejected Status = "Rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusSelected, StatusRejected:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

const (
	resumeWeight  = 0.6
	answersWeight = 0.4
)

// Result is the terminal record of an assessment. It is never mutated after
// Compose returns it.
type Result struct {
	ID            string        `json:"id"`
	CandidateName string        `json:"candidate_name"`
	ResumeMatch   int           `json:"resume_match"`
	AnswerQuality int           `json:"answer_quality"`
	Composite     int           `json:"composite"`
	Strengths     []string      `json:"strengths"`
	Weaknesses    []string      `json:"weaknesses"`
	Answers       []Answer      `json:"answers"`
	AnswerScores  []AnswerScore `json:"answer_scores"`
	Questions     []string      `json:"questions"`
	Timestamp     time.Time     `json:"timestamp"`
	Status        Status        `json:"status"`
}

// ComposeInput gathers everything produced during an interview.
type ComposeInput struct {
	CandidateName string
	Analysis      *SkillAnalysis
	Questions     []string
	Answers       []Answer
	Scores        []AnswerScore
}

// Submission is what the score sink stores.
type Submission struct {
	User  string
	Score int
}

// ScoreSink persists the composite score of a candidate.
type ScoreSink interface {
	SubmitScore(ctx context.Context, submission Submission) error
}

type ResultComposer struct {
	selection int
	logger    *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewResultComposer(thresholds Thresholds, logger *zap.Logger) *ResultComposer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultComposer{
		selection: thresholds.WithDefaults().Selection,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Compose merges the skill analysis with the graded answers.
func (c *ResultComposer) Compose(in ComposeInput) (*Result, error) {
	if len(in.Answers) == 0 || len(in.Scores) == 0 {
		return nil, ErrNoAnswers
	}
	if in.Analysis == nil {
		return nil, fmt.Errorf("%w: skill analysis is required", ErrInvalidInput)
	}
	if len(in.Answers) != len(in.Scores) || len(in.Answers) != len(in.Questions) {
		return nil, fmt.Errorf("%w: %d questions, %d answers, %d scores",
			ErrInvalidInput, len(in.Questions), len(in.Answers), len(in.Scores))
	}

	total := 0
	for _, s := range in.Scores {
		total += s.Score
	}
	quality := int(math.Round(float64(total) / float64(len(in.Scores))))
	composite := int(math.Round(resumeWeight*float64(in.Analysis.Percent) + answersWeight*float64(quality)))

	skills := redeem(in.Analysis.clone(), in.Answers)
	final := &SkillAnalysis{Skills: skills}

	status := StatusRejected
	if composite > c.selection {
		status = StatusSelected
	}

	now := c.now()
	name := strings.TrimSpace(in.CandidateName)
	if name == "" {
		name = "Candidate " + now.Format(time.RFC1123)
	}

	result := &Result{
		ID:            c.newID(),
		CandidateName: name,
		ResumeMatch:   in.Analysis.Percent,
		AnswerQuality: quality,
		Composite:     composite,
		Strengths:     final.Strengths(),
		Weaknesses:    final.Weaknesses(),
		Answers:       append([]Answer(nil), in.Answers...),
		AnswerScores:  append([]AnswerScore(nil), in.Scores...),
		Questions:     append([]string(nil), in.Questions...),
		Timestamp:     now,
		Status:        status,
	}

	c.logger.Info("assessment composed",
		zap.String("id", result.ID),
		zap.String("candidate", result.CandidateName),
		zap.Int("resume_match", result.ResumeMatch),
		zap.Int("answer_quality", result.AnswerQuality),
		zap.Int("composite", result.Composite),
		zap.Stringer("status", result.Status),
	)

	return result, nil
}

// Submit hands the composite score to the sink once. Failures are returned as
// *PersistenceError and are not retried.
func (c *ResultComposer) Submit(ctx context.Context, sink ScoreSink, user string, result *Result) error {
	if result == nil {
		return fmt.Errorf("%w: result is required", ErrInvalidInput)
	}

	submission := Submission{User: user, Score: result.Composite}
	if err := sink.SubmitScore(ctx, submission); err != nil {
		return &PersistenceError{User: user, Score: result.Composite, Err: err}
	}

	c.logger.Info("score submitted", zap.String("user", user), zap.Int("score", result.Composite))
	return nil
}

// redeem promotes every weakness mentioned in any answer to a strength.
func redeem(skills []SkillEntry, answers []Answer) []SkillEntry {
	texts := make([]string, 0, len(answers))
	for _, a := range answers {
		texts = append(texts, strings.ToLower(a.Text))
	}

	for i, skill := range skills {
		if skill.State != SkillWeakness {
			continue
		}
		needle := strings.ToLower(skill.Name)
		for _, text := range texts {
			if strings.Contains(text, needle) {
				skills[i].State = SkillStrength
				break
			}
		}
	}
	return skills
}
