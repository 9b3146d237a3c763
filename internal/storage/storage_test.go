package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/spigell/hh-interviewer/internal/assessment"
)

func TestNewScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		submission assessment.Submission
		wantErr    bool
	}{
		{name: "valid", submission: assessment.Submission{User: " alice ", Score: 77}},
		{name: "zero", submission: assessment.Submission{User: "bob", Score: 0}},
		{name: "missing user", submission: assessment.Submission{User: "  ", Score: 50}, wantErr: true},
		{name: "negative", submission: assessment.Submission{User: "carol", Score: -1}, wantErr: true},
		{name: "too high", submission: assessment.Submission{User: "carol", Score: 101}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			score, err := newScore(tt.submission)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if score.Score != tt.submission.Score {
				t.Fatalf("expected score %d, got %d", tt.submission.Score, score.Score)
			}
		})
	}

	if _, err := newScore(assessment.Submission{}); !errors.Is(err, ErrUserRequired) {
		t.Fatalf("expected ErrUserRequired, got %v", err)
	}
}

func TestLatestPerUser(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	scores := []Score{
		{ID: 1, User: "alice", Score: 40, CreatedAt: base},
		{ID: 2, User: "bob", Score: 0, CreatedAt: base.Add(time.Minute)},
		{ID: 3, User: "alice", Score: 77, CreatedAt: base.Add(time.Hour)},
		{ID: 4, User: "carol", Score: 77, CreatedAt: base},
		{ID: 5, User: "carol", Score: 12, CreatedAt: base},
	}

	got := latestPerUser(scores)
	want := []Candidate{
		{User: "alice", Score: 77, Status: StatusCompleted, SubmittedAt: base.Add(time.Hour)},
		{User: "carol", Score: 12, Status: StatusCompleted, SubmittedAt: base},
		{User: "bob", Score: 0, Status: StatusPending, SubmittedAt: base.Add(time.Minute)},
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d candidates, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidate %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}

	if len(latestPerUser(nil)) != 0 {
		t.Fatalf("expected empty listing")
	}
}
