package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/assessment"
	"github.com/spigell/hh-interviewer/internal/utils"
)

const (
	briefChars = 20
	briefWords = 5
)

var (
	ErrEmptyAnswer = errors.New("answer is empty")
	ErrFinished    = errors.New("interview already finished")
	ErrUnanswered  = errors.New("not every question is answered")
)

// Check is the outcome of the brevity check on a draft answer.
type Check struct {
	Brief bool
	Words int
}

// Session walks a single candidate through the questions. It is not shared
// between candidates.
type Session struct {
	mu sync.Mutex

	questions []string
	answers   []string
	draft     string
	current   int
	finished  bool
	result    *assessment.Result

	speaker Speaker
	logger  *zap.Logger
}

func New(questions []string, speaker Speaker, logger *zap.Logger) (*Session, error) {
	if len(questions) == 0 {
		return nil, assessment.ErrEmptyResult
	}
	if speaker == nil {
		speaker = nopSpeaker{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Session{
		questions: append([]string(nil), questions...),
		answers:   make([]string, len(questions)),
		speaker:   speaker,
		logger:    logger,
	}, nil
}

// Current returns the index and text of the question being answered.
func (s *Session) Current() (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current, s.questions[s.current]
}

func (s *Session) Len() int {
	return len(s.questions)
}

// Ask reads the current question out loud.
func (s *Session) Ask(ctx context.Context) error {
	_, question := s.Current()
	return s.speaker.Speak(ctx, question)
}

// SetAnswer replaces the draft answer of the current question.
func (s *Session) SetAnswer(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft = text
}

// Append adds a final transcript segment to the draft.
func (s *Session) Append(segment string) {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(s.draft) == "" {
		s.draft = segment
		return
	}
	s.draft = strings.TrimSpace(s.draft) + " " + segment
}

func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.draft
}

// Listen records final segments into the draft until the channel closes or
// ctx is done.
func (s *Session) Listen(ctx context.Context, segments <-chan Segment) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case segment, ok := <-segments:
			if !ok {
				return nil
			}
			if !segment.Final {
				continue
			}
			s.Append(segment.Text)
		}
	}
}

// CheckAnswer flags answers shorter than 20 characters or 5 words. A brief
// answer may still be accepted after the candidate confirms it.
func CheckAnswer(text string) (Check, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Check{}, ErrEmptyAnswer
	}

	words := utils.WordCount(text)
	return Check{
		Brief: len([]rune(text)) < briefChars || words < briefWords,
		Words: words,
	}, nil
}

// Advance stores the draft as the answer to the current question and moves
// on. done is true once the last question is answered.
func (s *Session) Advance() (bool, error) {
	s.speaker.Cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return true, ErrFinished
	}

	answer := strings.TrimSpace(s.draft)
	if answer == "" {
		return false, ErrEmptyAnswer
	}

	s.answers[s.current] = answer
	s.draft = ""
	s.logger.Debug("answer recorded", zap.Int("question", s.current+1), zap.Int("of", len(s.questions)))

	if s.current == len(s.questions)-1 {
		return true, nil
	}
	s.current++
	return false, nil
}

// Answers returns the recorded answers in question order.
func (s *Session) Answers() []assessment.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := make([]assessment.Answer, 0, len(s.answers))
	for i, text := range s.answers {
		if text == "" {
			continue
		}
		answers = append(answers, assessment.Answer{QuestionIndex: i, Text: text})
	}
	return answers
}

// Finish grades the answers and composes the result. It fails until every
// question has an answer.
func (s *Session) Finish(candidate string, analysis *assessment.SkillAnalysis, scorer *assessment.AnswerScorer, composer *assessment.ResultComposer) (*assessment.Result, error) {
	s.speaker.Cancel()

	answers := s.Answers()
	if len(answers) == 0 {
		return nil, assessment.ErrNoAnswers
	}
	if len(answers) != len(s.questions) {
		return nil, fmt.Errorf("%w: %d of %d", ErrUnanswered, len(answers), len(s.questions))
	}
	if analysis == nil {
		return nil, fmt.Errorf("%w: skill analysis is required", assessment.ErrInvalidInput)
	}

	scores := scorer.ScoreAll(answers, analysis.Strengths())
	result, err := composer.Compose(assessment.ComposeInput{
		CandidateName: candidate,
		Analysis:      analysis,
		Questions:     s.questions,
		Answers:       answers,
		Scores:        scores,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.finished = true
	s.result = result
	s.mu.Unlock()

	return result, nil
}

func (s *Session) Result() *assessment.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.result
}

// Restart clears every answer and returns to the first question. The
// questions are kept.
func (s *Session) Restart() {
	s.speaker.Cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.answers = make([]string, len(s.questions))
	s.draft = ""
	s.current = 0
	s.finished = false
	s.result = nil
}
