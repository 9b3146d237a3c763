package api

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/assessment"
	"github.com/spigell/hh-interviewer/internal/catalog"
	"github.com/spigell/hh-interviewer/internal/export"
	"github.com/spigell/hh-interviewer/internal/resume"
	"github.com/spigell/hh-interviewer/internal/storage"
)

const scoreSavedMsg = "Score saved successfully"

// jobRequest names a catalog job by title or carries the job inline.
type jobRequest struct {
	JobTitle string                     `json:"jobtitle"`
	Job      *assessment.JobDescription `json:"job"`
	Resume   string                     `json:"resume"`
}

// questionsRequest must carry Confirm to generate questions for a candidate
// whose skill match is below the gate.
type questionsRequest struct {
	jobRequest
	Confirm bool `json:"confirm"`
}

type assessRequest struct {
	jobRequest
	Candidate string   `json:"candidate"`
	Questions []string `json:"questions"`
	Answers   []string `json:"answers"`
}

type reportRequest struct {
	Result *assessment.Result        `json:"result"`
	Job    assessment.JobDescription `json:"job"`
}

type scoreRequest struct {
	Score *int `json:"score"`
}

func (s *Server) listJobs(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"jobs": s.deps.Jobs.Items})
}

func (s *Server) analyze(c *fiber.Ctx) error {
	var req jobRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request payload")
	}

	job, err := s.resolveJob(req)
	if err != nil {
		return err
	}

	analysis, err := s.deps.Matcher.Analyze(job, resume.Normalize(req.Resume))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(fiber.Map{
		"job":        job,
		"analysis":   analysis,
		"strengths":  analysis.Strengths(),
		"weaknesses": analysis.Weaknesses(),
		"gate":       s.deps.Matcher.Gate(),
	})
}

func (s *Server) questions(c *fiber.Ctx) error {
	var req questionsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request payload")
	}

	job, err := s.resolveJob(req.jobRequest)
	if err != nil {
		return err
	}

	text := resume.Normalize(req.Resume)
	analysis, err := s.deps.Matcher.Analyze(job, text)
	if err != nil {
		return toHTTPError(err)
	}
	if !analysis.Proceed && !req.Confirm {
		return fiber.NewError(fiber.StatusConflict, fmt.Sprintf(
			"skill match %d%% is below the %d%% gate, send confirm to continue", analysis.Percent, s.deps.Matcher.Gate()))
	}
	if !analysis.Proceed {
		s.logger.Info("generating questions below the gate", zap.String("job", job.Title), zap.Int("percent", analysis.Percent))
	}

	questions, err := s.deps.Generator.GenerateQuestions(c.UserContext(), job, text)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(fiber.Map{"questions": questions})
}

func (s *Server) assess(c *fiber.Ctx) error {
	var req assessRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request payload")
	}

	job, err := s.resolveJob(req.jobRequest)
	if err != nil {
		return err
	}

	analysis, err := s.deps.Matcher.Analyze(job, resume.Normalize(req.Resume))
	if err != nil {
		return toHTTPError(err)
	}

	answers := make([]assessment.Answer, 0, len(req.Answers))
	for i, text := range req.Answers {
		answers = append(answers, assessment.Answer{QuestionIndex: i, Text: strings.TrimSpace(text)})
	}

	result, err := s.deps.Composer.Compose(assessment.ComposeInput{
		CandidateName: req.Candidate,
		Analysis:      analysis,
		Questions:     req.Questions,
		Answers:       answers,
		Scores:        s.deps.Scorer.ScoreAll(answers, analysis.Strengths()),
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(result)
}

func (s *Server) report(c *fiber.Ctx) error {
	var req reportRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request payload")
	}
	if req.Result == nil {
		return fiber.NewError(fiber.StatusBadRequest, "result is required")
	}
	if !req.Result.Status.IsValid() {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("unknown result status %q", req.Result.Status))
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, req.Result, req.Job); err != nil {
		return toHTTPError(err)
	}

	c.Attachment("assessment.xlsx")
	return c.Send(buf.Bytes())
}

func (s *Server) saveScore(c *fiber.Ctx) error {
	if s.deps.Scores == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "score store is not configured")
	}

	user := strings.TrimSpace(c.Get(userHeader))
	if user == "" {
		return fiber.NewError(fiber.StatusUnauthorized, fmt.Sprintf("%s header is required", userHeader))
	}

	var req scoreRequest
	if err := c.BodyParser(&req); err != nil || req.Score == nil {
		return fiber.NewError(fiber.StatusBadRequest, "score is required")
	}
	if *req.Score < 0 || *req.Score > 100 {
		return fiber.NewError(fiber.StatusBadRequest, "score must be between 0 and 100")
	}

	submission := assessment.Submission{User: user, Score: *req.Score}
	if err := s.deps.Scores.SubmitScore(c.UserContext(), submission); err != nil {
		return toHTTPError(&assessment.PersistenceError{User: user, Score: *req.Score, Err: err})
	}

	return c.Status(fiber.StatusOK).SendString(scoreSavedMsg)
}

func (s *Server) candidates(c *fiber.Ctx) error {
	if s.deps.Scores == nil {
		return c.JSON(fiber.Map{"candidates": []storage.Candidate{}})
	}

	candidates, err := s.deps.Scores.LatestScores(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}

	s.logger.Debug("listing candidates", zap.Int("count", len(candidates)))
	return c.JSON(fiber.Map{"candidates": candidates})
}

func (s *Server) resolveJob(req jobRequest) (assessment.JobDescription, error) {
	if title := strings.TrimSpace(req.JobTitle); title != "" {
		job, err := s.deps.Jobs.FindByTitle(title)
		if err != nil {
			return assessment.JobDescription{}, toHTTPError(err)
		}
		return job.JobDescription(), nil
	}

	if req.Job != nil {
		return *req.Job, nil
	}

	return assessment.JobDescription{}, fiber.NewError(fiber.StatusBadRequest, "jobtitle or job is required")
}

func toHTTPError(err error) error {
	var persistence *assessment.PersistenceError

	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, assessment.ErrConfiguration):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, assessment.ErrNoAnswers), errors.Is(err, assessment.ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, assessment.ErrEmptyResult), errors.As(err, &persistence):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return err
	}
}
