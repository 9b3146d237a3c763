package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/assessment"
	"github.com/spigell/hh-interviewer/internal/utils"
	"go.uber.org/zap"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultMaxLogLength = 200
	userAgent           = "spigell/hh-interviewer"
	contentType         = "application/json"
)

type request struct {
	Prompt       string `json:"prompt"`
	MaxQuestions int    `json:"max_questions"`
}

// Client asks a remote question generation service for interview questions.
// It never retries: a failed call is the caller's cue to fall back.
type Client struct {
	url       string
	http      *resty.Client
	logger    *zap.Logger
	maxLogLen int
}

type Options struct {
	URL          string
	Token        string
	Timeout      time.Duration
	MaxLogLength int
}

func New(opts Options, logger *zap.Logger) (*Client, error) {
	url := strings.TrimSpace(opts.URL)
	if url == "" {
		return nil, errors.New("remote questions url is required")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	maxLogLen := opts.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	http := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", contentType).
		SetHeader("User-Agent", userAgent).
		SetAuthToken(strings.TrimSpace(opts.Token))

	return &Client{url: url, http: http, logger: logger, maxLogLen: maxLogLen}, nil
}

func (c *Client) Name() string {
	return "remote"
}

// Questions implements assessment.QuestionSource.
func (c *Client) Questions(ctx context.Context, req assessment.QuestionRequest) ([]string, error) {
	body := request{
		Prompt:       ai.QuestionsPrompt(req.Job, req.Resume, req.Count),
		MaxQuestions: req.Count,
	}

	c.logger.Debug("remote questions request",
		zap.String("url", c.url),
		zap.Int("prompt_length", utf8.RuneCountInString(body.Prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(body.Prompt, c.maxLogLen)),
	)

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(c.url)
	if err != nil {
		return nil, fmt.Errorf("post questions request: %w", err)
	}

	raw := resp.String()
	c.logger.Debug("remote questions response",
		zap.Int("status", resp.StatusCode()),
		zap.Duration("took", resp.Time()),
		zap.String("response_preview", utils.TruncateForLog(raw, c.maxLogLen)),
	)

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("bad status: %s", resp.Status())
	}

	return ai.ParseQuestions(raw)
}
