package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/ai/gemini"
	"github.com/spigell/hh-interviewer/internal/ai/remote"
	"github.com/spigell/hh-interviewer/internal/assessment"
	"github.com/spigell/hh-interviewer/internal/catalog"
	"github.com/spigell/hh-interviewer/internal/secrets"
	"github.com/spigell/hh-interviewer/internal/storage"
)

// engine bundles the assessment components built from the config.
type engine struct {
	matcher   *assessment.SkillMatcher
	generator *assessment.QuestionGenerator
	scorer    *assessment.AnswerScorer
	composer  *assessment.ResultComposer
}

func newEngine(ctx context.Context, config *Config, logger *zap.Logger) *engine {
	thresholds := config.Thresholds

	return &engine{
		matcher:   assessment.NewSkillMatcher(thresholds, logger.Named("matcher")),
		generator: assessment.NewQuestionGenerator(thresholds.QuestionCount, logger.Named("questions"), questionSources(ctx, config, logger)...),
		scorer:    assessment.NewAnswerScorer(),
		composer:  assessment.NewResultComposer(thresholds, logger.Named("composer")),
	}
}

// questionSources returns the configured sources in fallback order. The local
// templates always come last.
func questionSources(ctx context.Context, config *Config, logger *zap.Logger) []assessment.QuestionSource {
	var sources []assessment.QuestionSource

	q := config.Questions
	if q == nil {
		q = &QuestionsConfig{}
	}

	if q.Remote != nil && strings.TrimSpace(q.Remote.URL) != "" {
		client, err := newRemoteSource(q, logger)
		if err != nil {
			logger.Warn("skipping remote question source", zap.Error(err))
		} else {
			sources = append(sources, client)
		}
	}

	if q.Gemini != nil && q.Gemini.Enabled {
		questioner, err := newGeminiSource(ctx, q, logger)
		if err != nil {
			logger.Warn("skipping gemini question source", zap.Error(err))
		} else {
			sources = append(sources, questioner)
		}
	}

	sources = append(sources, assessment.NewLocalQuestions(config.Thresholds.ResumeSegments))

	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name())
	}
	logger.Debug("question sources", zap.Strings("order", names))

	return sources
}

func newRemoteSource(q *QuestionsConfig, logger *zap.Logger) (*remote.Client, error) {
	token, err := secrets.Optional(secrets.Source{
		Name:  "questions api key",
		Value: q.Remote.APIKey,
		File:  q.Remote.APIKeyFile,
	})
	if err != nil {
		return nil, err
	}

	return remote.New(remote.Options{
		URL:          q.Remote.URL,
		Token:        token,
		Timeout:      q.Remote.Timeout,
		MaxLogLength: q.MaxLogLength,
	}, logger.Named("remote").With(zap.String("provider", "remote")))
}

func newGeminiSource(ctx context.Context, q *QuestionsConfig, logger *zap.Logger) (*gemini.Questioner, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: q.Gemini.APIKey,
		File:  q.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set questions.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, gemini.Config{
		APIKey:  apiKey,
		Model:   q.Gemini.Model,
		BaseURL: q.Gemini.BaseURL,
	})
	if err != nil {
		return nil, err
	}

	genLogger := logger.Named("gemini").With(
		zap.String("provider", "gemini"),
		zap.String("model", generator.Model()),
	)

	return gemini.NewQuestioner(generator, genLogger, q.MaxLogLength), nil
}

// openStore returns nil without error when no database is configured.
func openStore(config *Config, logger *zap.Logger) (*storage.Store, error) {
	if config.Database == nil || strings.TrimSpace(config.Database.DSN) == "" {
		return nil, nil
	}

	return storage.Open(config.Database.DSN, logger.Core().Enabled(zap.DebugLevel), logger.Named("storage"))
}

func loadCatalog(config *Config) (*catalog.Jobs, error) {
	if strings.TrimSpace(config.Catalog) == "" {
		return &catalog.Jobs{}, nil
	}

	jobs, err := catalog.Load(config.Catalog)
	if err != nil {
		return nil, fmt.Errorf("loading job catalog: %w", err)
	}
	return jobs, nil
}
