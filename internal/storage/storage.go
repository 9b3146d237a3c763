package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/spigell/hh-interviewer/internal/assessment"
)

const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
)

var ErrUserRequired = errors.New("user is required")

// Score is one submitted composite score. A user may submit many; the admin
// view only shows the latest.
type Score struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Score     int       `gorm:"not null" json:"score"`
	User      string    `gorm:"type:varchar(255);index;not null" json:"user"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// Candidate is a row of the admin listing.
type Candidate struct {
	User        string    `json:"user"`
	Score       int       `json:"score"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open connects to Postgres and migrates the scores table.
func Open(dsn string, debug bool, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("database dsn is required")
	}

	logLevel := gormlogger.Silent
	if debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.AutoMigrate(&Score{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return New(db, logger), nil
}

func New(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// SubmitScore stores a single score. It is never retried here.
func (s *Store) SubmitScore(ctx context.Context, submission assessment.Submission) error {
	score, err := newScore(submission)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(score).Error; err != nil {
		return fmt.Errorf("create score: %w", err)
	}

	s.logger.Info("score saved", zap.String("user", score.User), zap.Int("score", score.Score))
	return nil
}

// LatestScores returns the latest score of every user, best first.
func (s *Store) LatestScores(ctx context.Context) ([]Candidate, error) {
	var scores []Score
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&scores).Error; err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}

	return latestPerUser(scores), nil
}

func newScore(submission assessment.Submission) (*Score, error) {
	user := strings.TrimSpace(submission.User)
	if user == "" {
		return nil, ErrUserRequired
	}
	if submission.Score < 0 || submission.Score > 100 {
		return nil, fmt.Errorf("score %d out of range", submission.Score)
	}

	return &Score{User: user, Score: submission.Score}, nil
}

func latestPerUser(scores []Score) []Candidate {
	latest := make(map[string]Score, len(scores))
	for _, score := range scores {
		current, ok := latest[score.User]
		if !ok || score.CreatedAt.After(current.CreatedAt) ||
			(score.CreatedAt.Equal(current.CreatedAt) && score.ID > current.ID) {
			latest[score.User] = score
		}
	}

	candidates := make([]Candidate, 0, len(latest))
	for _, score := range latest {
		candidates = append(candidates, Candidate{
			User:        score.User,
			Score:       score.Score,
			Status:      candidateStatus(score.Score),
			SubmittedAt: score.CreatedAt,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].User < candidates[j].User
	})

	return candidates
}

func candidateStatus(score int) string {
	if score > 0 {
		return StatusCompleted
	}
	return StatusPending
}
