package repository

import (
	"context"
	"time"
)

// AttemptCounts is a total/correct pair of attempts.
type AttemptCounts struct {
	Total   int64 `db:"total"`
	Correct int64 `db:"correct"`
}

// SessionSummary aggregates a user's completed quiz sessions.
type SessionSummary struct {
	Completed int64 `db:"completed"`
	// AvgScore is the mean of correct answers per completed session.
	AvgScore float64 `db:"avg_score"`
}

// GenreProgress is the stored per-genre tally of one user.
type GenreProgress struct {
	GenreID         string     `db:"genre_id"`
	GenreName       string     `db:"genre_name"`
	TotalAttempts   int        `db:"total_attempts"`
	CorrectAttempts int        `db:"correct_attempts"`
	AccuracyRate    float64    `db:"accuracy_rate"`
	LastStudyDate   *time.Time `db:"last_study_date"`
}

// AttemptRecord is an attempt joined with its question and genre.
type AttemptRecord struct {
	QuestionID    string    `db:"question_id"`
	QuestionTitle string    `db:"question_title"`
	GenreName     string    `db:"genre_name"`
	IsCorrect     bool      `db:"is_correct"`
	AttemptTime   time.Time `db:"attempt_time"`
}

// AttemptEvent is the minimal projection used by fleet statistics.
type AttemptEvent struct {
	UserID    uint      `db:"user_id"`
	GenreID   string    `db:"genre_id"`
	IsCorrect bool      `db:"is_correct"`
	At        time.Time `db:"attempt_time"`
}

// ProgressRepository reads learner activity. The quiz flow owns the writes.
type ProgressRepository interface {
	// CountAttempts counts attempts of userID, or of everyone when userID is 0.
	CountAttempts(ctx context.Context, userID uint) (AttemptCounts, error)
	SessionSummary(ctx context.Context, userID uint) (SessionSummary, error)
	ListGenreProgress(ctx context.Context, userID uint) ([]GenreProgress, error)
	// ListRecentAttempts returns at most limit attempts at or after since, newest first.
	ListRecentAttempts(ctx context.Context, userID uint, since time.Time, limit int) ([]AttemptRecord, error)
	// LastAttemptAt returns nil when the user never answered.
	LastAttemptAt(ctx context.Context, userID uint) (*time.Time, error)
	// ListAttemptEvents returns every attempt at or after since.
	ListAttemptEvents(ctx context.Context, since time.Time) ([]AttemptEvent, error)
}
