package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/hh-interviewer/internal/assessment"
)

var ErrNotFound = errors.New("job not found")

// Job is a single posting as stored by the admin side.
type Job struct {
	Title       string `json:"jobtitle"`
	Department  string `json:"department,omitempty"`
	Location    string `json:"location,omitempty"`
	Salary      string `json:"salary,omitempty"`
	Description string `json:"description,omitempty"`
	// Requirement is the comma-separated list of required skills.
	Requirement string `json:"requirement"`
	Experience  string `json:"experience,omitempty"`
}

type Jobs struct {
	Items []*Job
}

// Load reads a catalog file. An empty file is an empty catalog.
func Load(path string) (*Jobs, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &Jobs{}, nil
	}

	jobs, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return jobs, nil
}

// Decode accepts either a bare array of job records or an object with a
// "jobs" array. Numeric salaries are accepted as well.
func Decode(r io.Reader) (*Jobs, error) {
	var raw interface{}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}

	if obj, ok := raw.(map[string]interface{}); ok {
		records, found := obj["jobs"]
		if !found {
			return nil, errors.New(`catalog object has no "jobs" field`)
		}
		raw = records
	}

	var items []*Job
	cfg := &mapstructure.DecoderConfig{
		Result:           &items,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}

	return &Jobs{Items: items}, nil
}

func (j *Jobs) Len() int {
	return len(j.Items)
}

func (j *Jobs) Titles() []string {
	titles := make([]string, 0, len(j.Items))
	for _, job := range j.Items {
		titles = append(titles, job.Title)
	}
	return titles
}

// FindByTitle matches case-insensitively and ignores surrounding spaces.
func (j *Jobs) FindByTitle(title string) (*Job, error) {
	title = strings.TrimSpace(title)
	for _, job := range j.Items {
		if strings.EqualFold(strings.TrimSpace(job.Title), title) {
			return job, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, title)
}

func (job *Job) JobDescription() assessment.JobDescription {
	return assessment.JobDescription{
		Title:       strings.TrimSpace(job.Title),
		Skills:      assessment.ParseSkills(job.Requirement),
		Experience:  strings.TrimSpace(job.Experience),
		Description: strings.TrimSpace(job.Description),
	}
}
