package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/yourusername/quizbank-api/internal/domain/repository"
)

// ProgressRepo reads learner activity with hand-written aggregate queries.
type ProgressRepo struct {
	db *sqlx.DB
}

// NewProgressRepo creates a progress repository
func NewProgressRepo(db *sqlx.DB) *ProgressRepo {
	return &ProgressRepo{db: db}
}

const (
	countAllAttemptsQuery = `SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE is_correct) AS correct
		FROM user_attempts`
	countUserAttemptsQuery = countAllAttemptsQuery + ` WHERE user_id = $1`

	sessionSummaryQuery = `SELECT COUNT(*) AS completed, COALESCE(AVG(correct_answers), 0)::float8 AS avg_score
		FROM quiz_sessions
		WHERE user_id = $1 AND is_completed`

	genreProgressQuery = `SELECT p.genre_id, g.name AS genre_name, p.total_attempts, p.correct_attempts,
			p.accuracy_rate, p.last_study_date
		FROM user_progress p
		JOIN genres g ON g.id = p.genre_id
		WHERE p.user_id = $1
		ORDER BY p.genre_id`

	recentAttemptsQuery = `SELECT a.question_id, q.title AS question_title, g.name AS genre_name,
			a.is_correct, a.attempt_time
		FROM user_attempts a
		JOIN questions q ON q.id = a.question_id
		JOIN genres g ON g.id = q.genre_id
		WHERE a.user_id = $1 AND a.attempt_time >= $2
		ORDER BY a.attempt_time DESC
		LIMIT $3`

	lastAttemptQuery = `SELECT MAX(attempt_time) FROM user_attempts WHERE user_id = $1`

	attemptEventsQuery = `SELECT a.user_id, COALESCE(q.genre_id, '') AS genre_id, a.is_correct, a.attempt_time
		FROM user_attempts a
		LEFT JOIN questions q ON q.id = a.question_id
		WHERE a.attempt_time >= $1`
)

// CountAttempts counts the attempts of one user, or all attempts for userID 0.
func (r *ProgressRepo) CountAttempts(ctx context.Context, userID uint) (repository.AttemptCounts, error) {
	var c repository.AttemptCounts
	var err error
	if userID == 0 {
		err = r.db.GetContext(ctx, &c, countAllAttemptsQuery)
	} else {
		err = r.db.GetContext(ctx, &c, countUserAttemptsQuery, userID)
	}
	return c, err
}

func (r *ProgressRepo) SessionSummary(ctx context.Context, userID uint) (repository.SessionSummary, error) {
	var s repository.SessionSummary
	err := r.db.GetContext(ctx, &s, sessionSummaryQuery, userID)
	return s, err
}

func (r *ProgressRepo) ListGenreProgress(ctx context.Context, userID uint) ([]repository.GenreProgress, error) {
	out := make([]repository.GenreProgress, 0)
	if err := r.db.SelectContext(ctx, &out, genreProgressQuery, userID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProgressRepo) ListRecentAttempts(ctx context.Context, userID uint, since time.Time, limit int) ([]repository.AttemptRecord, error) {
	out := make([]repository.AttemptRecord, 0)
	if err := r.db.SelectContext(ctx, &out, recentAttemptsQuery, userID, since, limit); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProgressRepo) LastAttemptAt(ctx context.Context, userID uint) (*time.Time, error) {
	var last sql.NullTime
	if err := r.db.GetContext(ctx, &last, lastAttemptQuery, userID); err != nil {
		return nil, err
	}
	if !last.Valid {
		return nil, nil
	}
	return &last.Time, nil
}

func (r *ProgressRepo) ListAttemptEvents(ctx context.Context, since time.Time) ([]repository.AttemptEvent, error) {
	out := make([]repository.AttemptEvent, 0)
	if err := r.db.SelectContext(ctx, &out, attemptEventsQuery, since); err != nil {
		return nil, err
	}
	return out, nil
}
