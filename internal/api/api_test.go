package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/assessment"
	"github.com/spigell/hh-interviewer/internal/catalog"
	"github.com/spigell/hh-interviewer/internal/storage"
)

type memoryStore struct {
	mu          sync.Mutex
	submissions []assessment.Submission
	err         error
}

func (m *memoryStore) SubmitScore(_ context.Context, submission assessment.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.submissions = append(m.submissions, submission)
	return nil
}

func (m *memoryStore) LatestScores(context.Context) ([]storage.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	candidates := make([]storage.Candidate, 0, len(m.submissions))
	for _, s := range m.submissions {
		status := storage.StatusPending
		if s.Score > 0 {
			status = storage.StatusCompleted
		}
		candidates = append(candidates, storage.Candidate{User: s.User, Score: s.Score, Status: status})
	}
	return candidates, nil
}

func newTestApp(t *testing.T, store ScoreStore) *fiber.App {
	t.Helper()

	jobs, err := catalog.Decode(strings.NewReader(`[{"jobtitle": "Backend Developer", "requirement": "Python, SQL, Docker"}]`))
	if err != nil {
		t.Fatalf("decode catalog: %v", err)
	}

	thresholds := assessment.DefaultThresholds()
	local := &assessment.LocalQuestions{Segments: 3, Shuffle: func(int, func(i, j int)) {}}

	return New(Deps{
		Jobs:      jobs,
		Matcher:   assessment.NewSkillMatcher(thresholds, zap.NewNop()),
		Generator: assessment.NewQuestionGenerator(thresholds.QuestionCount, zap.NewNop(), local),
		Scorer:    assessment.NewAnswerScorer(),
		Composer:  assessment.NewResultComposer(thresholds, zap.NewNop()),
		Scores:    store,
		Logger:    zap.NewNop(),
	})
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func TestListJobs(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)
	resp, body := doJSON(t, app, http.MethodGet, "/jobs", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), `"jobtitle":"Backend Developer"`) {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)

	resp, body := doJSON(t, app, http.MethodPost, "/analyze", map[string]any{
		"jobtitle": "backend developer",
		"resume":   "Python developer with SQL experience.",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var out struct {
		Analysis   assessment.SkillAnalysis `json:"analysis"`
		Weaknesses []string                 `json:"weaknesses"`
		Gate       int                      `json:"gate"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if out.Analysis.Percent != 67 || out.Analysis.Proceed || out.Gate != 70 {
		t.Fatalf("unexpected analysis %+v gate %d", out.Analysis, out.Gate)
	}
	if len(out.Weaknesses) != 1 || out.Weaknesses[0] != "docker" {
		t.Fatalf("unexpected weaknesses %v", out.Weaknesses)
	}
	if !strings.Contains(string(body), `"state":"weakness"`) || !strings.Contains(string(body), `"state":"strength"`) {
		t.Fatalf("expected named skill states in %s", body)
	}
	if out.Analysis.Skills[0].State != assessment.SkillStrength {
		t.Fatalf("unexpected decoded state %v", out.Analysis.Skills[0].State)
	}

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{name: "unknown job", body: map[string]any{"jobtitle": "Designer"}, want: http.StatusNotFound},
		{name: "no job", body: map[string]any{"resume": "text"}, want: http.StatusBadRequest},
		{name: "no skills", body: map[string]any{"job": map[string]any{"title": "Empty"}}, want: http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		resp, body := doJSON(t, app, http.MethodPost, "/analyze", tt.body, nil)
		if resp.StatusCode != tt.want {
			t.Fatalf("%s: expected %d, got %d: %s", tt.name, tt.want, resp.StatusCode, body)
		}
	}
}

func TestQuestions(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{
			name: "below gate without confirmation",
			body: map[string]any{"jobtitle": "Backend Developer", "resume": "I paint watercolours."},
			want: http.StatusConflict,
		},
		{
			name: "below gate with confirmation",
			body: map[string]any{"jobtitle": "Backend Developer", "resume": "I paint watercolours.", "confirm": true},
			want: http.StatusOK,
		},
		{
			name: "one skill short of the gate",
			body: map[string]any{"jobtitle": "Backend Developer", "resume": "Python developer with SQL experience."},
			want: http.StatusConflict,
		},
		{
			name: "exactly at the gate",
			body: map[string]any{
				"job": map[string]any{
					"title":  "Platform Engineer",
					"skills": []string{"go", "sql", "docker", "kafka", "redis", "linux", "grpc", "helm", "terraform", "ansible"},
				},
				"resume": "Go, SQL, Docker, Kafka, Redis, Linux and gRPC in production.",
			},
			want: http.StatusOK,
		},
		{
			name: "full match",
			body: map[string]any{"jobtitle": "Backend Developer", "resume": "Python, SQL and Docker every day."},
			want: http.StatusOK,
		},
		{
			name: "job without skills",
			body: map[string]any{"job": map[string]any{"title": "Empty"}, "confirm": true},
			want: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		resp, body := doJSON(t, app, http.MethodPost, "/questions", tt.body, nil)
		if resp.StatusCode != tt.want {
			t.Fatalf("%s: expected %d, got %d: %s", tt.name, tt.want, resp.StatusCode, body)
		}
		if tt.want != http.StatusOK {
			continue
		}

		var out struct {
			Questions []string `json:"questions"`
		}
		if err := json.Unmarshal(body, &out); err != nil {
			t.Fatalf("%s: decode body: %v", tt.name, err)
		}
		if len(out.Questions) != assessment.DefaultQuestionCount {
			t.Fatalf("%s: expected %d questions, got %v", tt.name, assessment.DefaultQuestionCount, out.Questions)
		}
	}
}

func TestAssessAndReport(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)

	answer := strings.Repeat("word ", 50) + "I built Python and SQL pipelines over 5 years."
	resp, body := doJSON(t, app, http.MethodPost, "/assess", map[string]any{
		"candidate": "Jane",
		"jobtitle":  "Backend Developer",
		"resume":    "Python developer with SQL experience.",
		"questions": []string{"q1", "q2", "q3", "q4", "q5"},
		"answers":   []string{answer, answer, answer, answer, answer},
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var result assessment.Result
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.ResumeMatch != 67 || result.AnswerQuality != 93 || result.Composite != 77 || result.Status != assessment.StatusSelected {
		t.Fatalf("unexpected result %+v", result)
	}

	resp, body = doJSON(t, app, http.MethodPost, "/assess", map[string]any{
		"jobtitle":  "Backend Developer",
		"questions": []string{"q1"},
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without answers, got %d: %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, app, http.MethodPost, "/report", map[string]any{
		"result": result,
		"job":    map[string]any{"title": "Backend Developer"},
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, body)
	}
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer f.Close()
	if got, _ := f.GetCellValue("Summary", "B1"); got != "Jane" {
		t.Fatalf("unexpected candidate cell %q", got)
	}

	forged := result
	forged.Status = assessment.Status("PENDING")
	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "unknown status", body: map[string]any{"result": forged}},
		{name: "no result", body: map[string]any{"job": map[string]any{"title": "Backend Developer"}}},
	}
	for _, tt := range tests {
		resp, body := doJSON(t, app, http.MethodPost, "/report", tt.body, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d: %s", tt.name, resp.StatusCode, body)
		}
	}
}

func TestSaveScore(t *testing.T) {
	t.Parallel()

	store := &memoryStore{}
	app := newTestApp(t, store)

	resp, body := doJSON(t, app, http.MethodPost, "/save-score", map[string]any{"score": 77}, map[string]string{userHeader: "alice"})
	if resp.StatusCode != http.StatusOK || string(body) != scoreSavedMsg {
		t.Fatalf("unexpected response %d: %s", resp.StatusCode, body)
	}
	if len(store.submissions) != 1 || store.submissions[0] != (assessment.Submission{User: "alice", Score: 77}) {
		t.Fatalf("unexpected submissions %+v", store.submissions)
	}

	tests := []struct {
		name    string
		body    map[string]any
		headers map[string]string
		want    int
	}{
		{name: "no user", body: map[string]any{"score": 50}, want: http.StatusUnauthorized},
		{name: "no score", body: map[string]any{}, headers: map[string]string{userHeader: "bob"}, want: http.StatusBadRequest},
		{name: "out of range", body: map[string]any{"score": 120}, headers: map[string]string{userHeader: "bob"}, want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		resp, body := doJSON(t, app, http.MethodPost, "/save-score", tt.body, tt.headers)
		if resp.StatusCode != tt.want {
			t.Fatalf("%s: expected %d, got %d: %s", tt.name, tt.want, resp.StatusCode, body)
		}
	}

	resp, body = doJSON(t, app, http.MethodGet, "/admin/candidates", nil, nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"status":"completed"`) {
		t.Fatalf("unexpected listing %d: %s", resp.StatusCode, body)
	}
}

func TestSaveScorePersistenceFailure(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, &memoryStore{err: errors.New("connection refused")})
	resp, body := doJSON(t, app, http.MethodPost, "/save-score", map[string]any{"score": 10}, map[string]string{userHeader: "alice"})
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", resp.StatusCode, body)
	}

	app = newTestApp(t, nil)
	resp, _ = doJSON(t, app, http.MethodPost, "/save-score", map[string]any{"score": 10}, map[string]string{userHeader: "alice"})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without store, got %d", resp.StatusCode)
	}
}
