package assessment

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned when a job has no skills to match against.
	ErrConfiguration = errors.New("job has no skills configured")
	// ErrEmptyResult is returned when question generation produced nothing.
	ErrEmptyResult = errors.New("no interview questions generated")
	// ErrNoAnswers is returned when a result is composed without answers.
	ErrNoAnswers = errors.New("no answers to compose a result from")
	// ErrInvalidInput is returned when answers, questions and scores do not line up.
	ErrInvalidInput = errors.New("invalid assessment input")
)

// RemoteServiceError wraps a failure of a question source. It is recovered by
// the next source in line and never returned to callers of GenerateQuestions.
type RemoteServiceError struct {
	Source string
	Err    error
}

func (e *RemoteServiceError) Error() string {
	return fmt.Sprintf("question source %s: %v", e.Source, e.Err)
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Err
}

// PersistenceError is returned when the score sink rejects a submission.
// The result itself stays valid and can be submitted again by the caller.
type PersistenceError struct {
	User  string
	Score int
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("submitting score %d for %q: %v", e.Score, e.User, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
