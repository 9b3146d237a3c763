package ai

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "embed"

	"github.com/spigell/hh-interviewer/internal/assessment"
	"github.com/tidwall/gjson"
)

//go:embed prompt.md
var promptTemplate string

var (
	ErrMalformedResponse = errors.New("malformed questions payload")
)

// QuestionsPrompt renders the question generation prompt for the job and résumé.
func QuestionsPrompt(job assessment.JobDescription, resume string, count int) string {
	r := strings.NewReplacer(
		"{{COUNT}}", strconv.Itoa(count),
		"{{TITLE}}", job.Title,
		"{{SKILLS}}", job.SkillsString(),
		"{{DESCRIPTION}}", job.Description,
		"{{RESUME}}", resume,
	)
	return r.Replace(strings.TrimRight(promptTemplate, "\r\n"))
}

// ParseQuestions accepts either a bare JSON array of strings or an object with
// a "questions" array. Anything else is ErrMalformedResponse.
func ParseQuestions(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformedResponse)
	}

	payload := gjson.Parse(raw)
	if payload.IsObject() {
		payload = payload.Get("questions")
	}

	if !payload.IsArray() {
		return nil, fmt.Errorf("%w: no questions array", ErrMalformedResponse)
	}

	items := payload.Array()
	questions := make([]string, 0, len(items))
	for i, item := range items {
		if item.Type != gjson.String {
			return nil, fmt.Errorf("%w: item %d is %s", ErrMalformedResponse, i, item.Type)
		}
		questions = append(questions, item.String())
	}

	return questions, nil
}

// ExtractJSON strips markdown code fences that language models wrap JSON in.
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
