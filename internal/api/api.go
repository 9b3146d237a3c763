package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/assessment"
	"github.com/spigell/hh-interviewer/internal/catalog"
	"github.com/spigell/hh-interviewer/internal/storage"
)

const (
	appName    = "hh-interviewer"
	userHeader = "X-User"
)

// ScoreStore keeps submitted scores and lists them for the admin view.
type ScoreStore interface {
	assessment.ScoreSink
	LatestScores(ctx context.Context) ([]storage.Candidate, error)
}

// Deps are the components served over HTTP. Jobs and Scores are optional.
type Deps struct {
	Jobs      *catalog.Jobs
	Matcher   *assessment.SkillMatcher
	Generator *assessment.QuestionGenerator
	Scorer    *assessment.AnswerScorer
	Composer  *assessment.ResultComposer
	Scores    ScoreStore
	Logger    *zap.Logger
}

type Server struct {
	deps   Deps
	logger *zap.Logger
}

func New(deps Deps) *fiber.App {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Jobs == nil {
		deps.Jobs = &catalog.Jobs{}
	}

	s := &Server{deps: deps, logger: deps.Logger}

	app := fiber.New(fiber.Config{
		AppName:      appName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: s.errorHandler,
	})

	app.Use(recover.New())
	app.Use(s.requestLogger)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "time": time.Now()})
	})

	app.Get("/jobs", s.listJobs)
	app.Post("/analyze", s.analyze)
	app.Post("/questions", s.questions)
	app.Post("/assess", s.assess)
	app.Post("/report", s.report)
	app.Post("/save-score", s.saveScore)
	app.Get("/admin/candidates", s.candidates)

	return app
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	s.logger.Debug("http request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("latency", time.Since(start)),
	)
	return err
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}

	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
