package headhunter

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/spigell/hh-interviewer/internal/assessment"
)

type Vacancies struct {
	Items []*Vacancy
}

type Named struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type Vacancy struct {
	ID           string  `json:"id,omitempty"`
	Name         string  `json:"name,omitempty"`
	Area         Named   `json:"area,omitempty"`
	Experience   Named   `json:"experience,omitempty"`
	Employer     Named   `json:"employer,omitempty"`
	AlternateURL string  `json:"alternate_url,omitempty"`
	Description  string  `json:"description,omitempty"`
	KeySkills    []Named `json:"key_skills,omitempty"`
	Snippet      struct {
		Requirement    string `json:"requirement,omitempty"`
		Responsibility string `json:"responsibility,omitempty"`
	} `json:"snippet,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
}

var (
	htmlTags   = regexp.MustCompile(`<[^>]*>`)
	whitespace = regexp.MustCompile(`\s+`)
)

// JobDescription converts the vacancy into the screening input. Key skills
// become the job skills.
func (va *Vacancy) JobDescription() assessment.JobDescription {
	skills := make([]string, 0, len(va.KeySkills))
	for _, s := range va.KeySkills {
		if name := strings.TrimSpace(s.Name); name != "" {
			skills = append(skills, name)
		}
	}

	description := va.Description
	if strings.TrimSpace(description) == "" {
		description = strings.TrimSpace(va.Snippet.Requirement + " " + va.Snippet.Responsibility)
	}

	return assessment.JobDescription{
		Title:       strings.TrimSpace(va.Name),
		Skills:      skills,
		Experience:  va.Experience.Name,
		Description: plainText(description),
	}
}

// Label is a short single-line representation for selection prompts.
func (va *Vacancy) Label() string {
	return fmt.Sprintf("%s %s / %s / %s", va.ID, va.Name, va.Employer.Name, va.Area.Name)
}

func plainText(s string) string {
	s = htmlTags.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func (v *Vacancies) Len() int {
	return len(v.Items)
}

func (v *Vacancies) FindByID(id string) *Vacancy {
	for _, vacancy := range v.Items {
		if vacancy.ID == id {
			return vacancy
		}
	}
	return nil
}

func (v *Vacancies) Labels() []string {
	labels := make([]string, 0, len(v.Items))
	for _, vacancy := range v.Items {
		labels = append(labels, vacancy.Label())
	}
	return labels
}
