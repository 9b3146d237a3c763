package gemini

import (
	"context"
	"unicode/utf8"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/assessment"
	"github.com/spigell/hh-interviewer/internal/utils"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Questioner is a question source backed by a Gemini model.
type Questioner struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

const defaultMaxLogLength = 200

func NewQuestioner(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Questioner {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Questioner{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (q *Questioner) Name() string {
	return "gemini"
}

// Questions implements assessment.QuestionSource.
func (q *Questioner) Questions(ctx context.Context, req assessment.QuestionRequest) ([]string, error) {
	prompt := ai.QuestionsPrompt(req.Job, req.Resume, req.Count)

	q.logger.Debug("gemini generate content request",
		zap.String("job", req.Job.Title),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, q.maxLogLen)),
	)

	raw, err := q.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	q.logger.Debug("gemini generate content response",
		zap.String("job", req.Job.Title),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, q.maxLogLen)),
	)

	return ai.ParseQuestions(ai.ExtractJSON(raw))
}
