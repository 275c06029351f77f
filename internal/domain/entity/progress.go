package entity

import "time"

// The progress tables are written by the learner-facing quiz flow.
// This service only reads them to build statistics.

// UserAttempt is a single answer given by a user to a question.
type UserAttempt struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	QuestionID  string    `gorm:"size:20;not null;index" json:"question_id"`
	IsCorrect   bool      `gorm:"not null" json:"is_correct"`
	AttemptTime time.Time `gorm:"not null;index" json:"attempt_time"`
}

// TableName returns the GORM table name.
func (UserAttempt) TableName() string {
	return "user_attempts"
}

// QuizSession is one run through a set of questions.
type QuizSession struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"not null;index" json:"user_id"`
	GenreID        *string    `gorm:"size:10" json:"genre_id"`
	TotalQuestions int        `gorm:"not null;default:0" json:"total_questions"`
	CorrectAnswers int        `gorm:"not null;default:0" json:"correct_answers"`
	IsCompleted    bool       `gorm:"not null;default:false" json:"is_completed"`
	StartedAt      time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`
}

// TableName returns the GORM table name.
func (QuizSession) TableName() string {
	return "quiz_sessions"
}

// UserProgress is the per-genre running tally of a user.
type UserProgress struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;uniqueIndex:idx_progress_user_genre" json:"user_id"`
	GenreID         string     `gorm:"size:10;not null;uniqueIndex:idx_progress_user_genre" json:"genre_id"`
	TotalAttempts   int        `gorm:"not null;default:0" json:"total_attempts"`
	CorrectAttempts int        `gorm:"not null;default:0" json:"correct_attempts"`
	AccuracyRate    float64    `gorm:"not null;default:0" json:"accuracy_rate"`
	LastStudyDate   *time.Time `json:"last_study_date"`
}

// TableName returns the GORM table name.
func (UserProgress) TableName() string {
	return "user_progress"
}
