package repository

import (
	"context"

	"github.com/yourusername/quizbank-api/internal/domain/entity"
)

// GenreRepository stores genres. Deleting a genre deletes the questions it owns.
type GenreRepository interface {
	// List returns every genre ordered by name, with QuestionCount filled in.
	List(ctx context.Context) ([]entity.Genre, error)
	GetByID(ctx context.Context, id string) (*entity.Genre, error)
	// Create returns apperrors.ErrConflict when the id is taken.
	Create(ctx context.Context, genre *entity.Genre) error
	Update(ctx context.Context, genre *entity.Genre) error
	Delete(ctx context.Context, id string) error
	ListIDs(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
}
