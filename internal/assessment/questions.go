package assessment

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// QuestionRequest carries everything a source needs to write questions.
type QuestionRequest struct {
	Job    JobDescription
	Resume string
	Count  int
}

// QuestionSource produces interview questions. Sources are tried in order by
// QuestionGenerator.
type QuestionSource interface {
	Name() string
	Questions(ctx context.Context, req QuestionRequest) ([]string, error)
}

// QuestionGenerator returns the questions of the first source that succeeds.
type QuestionGenerator struct {
	sources []QuestionSource
	count   int
	logger  *zap.Logger
}

func NewQuestionGenerator(count int, logger *zap.Logger, sources ...QuestionSource) *QuestionGenerator {
	if count <= 0 {
		count = DefaultQuestionCount
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestionGenerator{sources: sources, count: count, logger: logger}
}

// GenerateQuestions never reports which source produced the questions. Source
// failures are logged and the next source is tried; ErrEmptyResult is
// returned only when nothing produced a question.
func (g *QuestionGenerator) GenerateQuestions(ctx context.Context, job JobDescription, resume string) ([]string, error) {
	req := QuestionRequest{Job: job, Resume: resume, Count: g.count}

	for _, source := range g.sources {
		questions, err := source.Questions(ctx, req)
		if err == nil {
			questions = cleanQuestions(questions)
			if len(questions) == 0 {
				err = errors.New("no questions returned")
			}
		}

		if err != nil {
			g.logger.Warn("question source failed, trying next",
				zap.Error(&RemoteServiceError{Source: source.Name(), Err: err}),
			)
			continue
		}

		if len(questions) > g.count {
			questions = questions[:g.count]
		}

		g.logger.Debug("questions generated",
			zap.String("source", source.Name()),
			zap.Int("count", len(questions)),
		)
		return questions, nil
	}

	return nil, ErrEmptyResult
}

func cleanQuestions(questions []string) []string {
	out := make([]string, 0, len(questions))
	for _, q := range questions {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	return out
}

var resumeSegmentSplit = regexp.MustCompile(`[.\n]+`)

// LocalQuestions builds questions from templates, the job and the résumé.
type LocalQuestions struct {
	// Segments is how many résumé sentences become follow-up questions.
	Segments int
	// Shuffle permutes the pool. Defaults to math/rand/v2.
	Shuffle func(n int, swap func(i, j int))
}

func NewLocalQuestions(segments int) *LocalQuestions {
	if segments <= 0 {
		segments = DefaultResumeSegments
	}
	return &LocalQuestions{Segments: segments, Shuffle: rand.Shuffle}
}

func (l *LocalQuestions) Name() string {
	return "local"
}

func (l *LocalQuestions) Questions(_ context.Context, req QuestionRequest) ([]string, error) {
	pool := l.Pool(req.Job, req.Resume)

	shuffle := l.Shuffle
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	if req.Count > 0 && len(pool) > req.Count {
		pool = pool[:req.Count]
	}
	if len(pool) == 0 {
		return nil, ErrEmptyResult
	}
	return pool, nil
}

// Pool returns the unshuffled question pool.
func (l *LocalQuestions) Pool(job JobDescription, resume string) []string {
	pool := make([]string, 0, 2*len(job.Skills)+3+l.Segments)

	for _, skill := range job.Skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		pool = append(pool,
			fmt.Sprintf("Can you describe a project where you used %s? What challenges did you face?", skill),
			fmt.Sprintf("How do you approach learning and improving your %s skills? Give a concrete example.", skill),
		)
	}

	title := strings.TrimSpace(job.Title)
	if title == "" {
		title = "this role"
	}
	pool = append(pool,
		fmt.Sprintf("Why are you interested in the %s position at our company?", title),
		"Tell me about a time you resolved a difficult problem in a project.",
		"How do you ensure your work is accessible and performant?",
	)

	for _, segment := range resumeSegments(resume, l.Segments) {
		pool = append(pool, fmt.Sprintf("You mentioned: \"%s\". Could you expand on that experience?", segment))
	}

	return pool
}

func resumeSegments(resume string, limit int) []string {
	segments := make([]string, 0, limit)
	for _, part := range resumeSegmentSplit.Split(resume, -1) {
		if len(segments) == limit {
			break
		}
		if part = strings.TrimSpace(part); part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}
