package cmd

import (
	"context"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/hh-interviewer/internal/assessment"
)

func sourceNames(sources []assessment.QuestionSource) []string {
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name())
	}
	return names
}

func TestQuestionSources(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		config   *Config
		want     []string
		warnings int
	}{
		{
			name:   "local only",
			config: &Config{},
			want:   []string{"local"},
		},
		{
			name: "remote first",
			config: &Config{Questions: &QuestionsConfig{
				Remote: &RemoteConfig{URL: "http://127.0.0.1:1/questions", APIKey: "secret"},
			}},
			want: []string{"remote", "local"},
		},
		{
			name: "gemini without key is skipped",
			config: &Config{Questions: &QuestionsConfig{
				Gemini: &GeminiConfig{Enabled: true},
			}},
			want:     []string{"local"},
			warnings: 1,
		},
		{
			name: "disabled gemini",
			config: &Config{Questions: &QuestionsConfig{
				Gemini: &GeminiConfig{Enabled: false, APIKey: "key"},
			}},
			want: []string{"local"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zap.WarnLevel)
			sources := questionSources(context.Background(), tt.config, zap.New(core))

			if got := sourceNames(sources); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			if logs.Len() != tt.warnings {
				t.Fatalf("expected %d warnings, got %d", tt.warnings, logs.Len())
			}
		})
	}
}

func TestOpenStoreWithoutDatabase(t *testing.T) {
	t.Parallel()

	store, err := openStore(&Config{}, zap.NewNop())
	if err != nil || store != nil {
		t.Fatalf("expected no store without dsn, got %v, %v", store, err)
	}

	jobs, err := loadCatalog(&Config{})
	if err != nil || jobs.Len() != 0 {
		t.Fatalf("expected empty catalog, got %v, %v", jobs, err)
	}
}
