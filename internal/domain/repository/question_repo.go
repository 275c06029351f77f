package repository

import (
	"context"
	"time"

	"github.com/yourusername/quizbank-api/internal/domain/entity"
)

// QuestionFilter narrows List. Zero values mean "no filter".
type QuestionFilter struct {
	GenreID    string
	Difficulty *int
	// Search matches title or body, case-insensitive.
	Search     string
	IsActive   *bool
	Unreviewed *bool
}

// QuestionBulkUpdate is a sparse field set applied to many questions at once.
type QuestionBulkUpdate struct {
	GenreID    *string
	Difficulty *int
	// SetReviewedAt distinguishes "reset to null" from "leave alone".
	SetReviewedAt bool
	ReviewedAt    *time.Time
}

// Empty reports whether the update carries no field.
func (u QuestionBulkUpdate) Empty() bool {
	return u.GenreID == nil && u.Difficulty == nil && !u.SetReviewedAt
}

// QuestionRepository stores questions together with the choices they own.
// Read methods load Genre, Author and Choices.
type QuestionRepository interface {
	// List returns questions newest first.
	List(ctx context.Context, filter QuestionFilter) ([]entity.Question, error)
	// ListAll returns every question ordered by id.
	ListAll(ctx context.Context) ([]entity.Question, error)
	GetByID(ctx context.Context, id string) (*entity.Question, error)
	// Create inserts the question and its choices. Returns apperrors.ErrConflict on a taken id.
	Create(ctx context.Context, question *entity.Question) error
	// Update saves the editable fields. When replaceChoices is set the owned
	// choices are deleted and question.Choices inserted instead.
	Update(ctx context.Context, question *entity.Question, replaceChoices bool) error
	// Upsert inserts the question or overwrites genre, difficulty, title, body,
	// clarification and is_active of an existing one. Author, created_at and
	// reviewed_at survive. Owned choices are always replaced by question.Choices.
	Upsert(ctx context.Context, question *entity.Question) (created bool, err error)
	Delete(ctx context.Context, id string) error
	// ExistingIDs returns the subset of ids that exist.
	ExistingIDs(ctx context.Context, ids []string) ([]string, error)
	SetActive(ctx context.Context, ids []string, active bool) (int64, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
	BulkUpdate(ctx context.Context, ids []string, update QuestionBulkUpdate) (int64, error)
	ListIDs(ctx context.Context) ([]string, error)
	ListChoiceIDs(ctx context.Context) ([]string, error)
	Count(ctx context.Context, activeOnly bool) (int64, error)
}
