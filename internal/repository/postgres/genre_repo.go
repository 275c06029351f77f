package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/quizbank-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizbank-api/internal/pkg/errors"
)

// GenreRepo implements repository.GenreRepository
type GenreRepo struct {
	db *gorm.DB
}

// NewGenreRepo creates a genre repository
func NewGenreRepo(db *gorm.DB) *GenreRepo {
	return &GenreRepo{db: db}
}

// List returns every genre with its question count
func (r *GenreRepo) List(ctx context.Context) ([]entity.Genre, error) {
	var genres []entity.Genre
	err := r.db.WithContext(ctx).
		Model(&entity.Genre{}).
		Select("genres.*, (SELECT COUNT(*) FROM questions WHERE questions.genre_id = genres.id) AS question_count").
		Order("genres.name, genres.id").
		Find(&genres).Error
	if err != nil {
		return nil, err
	}
	return genres, nil
}

// GetByID returns a genre by id
func (r *GenreRepo) GetByID(ctx context.Context, id string) (*entity.Genre, error) {
	var genre entity.Genre
	err := r.db.WithContext(ctx).
		Select("genres.*, (SELECT COUNT(*) FROM questions WHERE questions.genre_id = genres.id) AS question_count").
		Where("genres.id = ?", id).
		First(&genre).Error
	if err != nil {
		return nil, translate(err)
	}
	return &genre, nil
}

// Create inserts a new genre
func (r *GenreRepo) Create(ctx context.Context, genre *entity.Genre) error {
	return translate(r.db.WithContext(ctx).Create(genre).Error)
}

// Update saves name and description
func (r *GenreRepo) Update(ctx context.Context, genre *entity.Genre) error {
	res := r.db.WithContext(ctx).
		Model(&entity.Genre{}).
		Where("id = ?", genre.ID).
		Updates(map[string]interface{}{
			"name":        genre.Name,
			"description": genre.Description,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete removes the genre together with its questions, their choices and attempts
func (r *GenreRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&entity.Question{}).Select("id").Where("genre_id = ?", id)
		if err := tx.Exec("DELETE FROM user_attempts WHERE question_id IN (?)", owned).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id IN (?)", owned).Delete(&entity.Choice{}).Error; err != nil {
			return err
		}
		if err := tx.Where("genre_id = ?", id).Delete(&entity.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM user_progress WHERE genre_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&entity.Genre{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

// ListIDs returns every genre id
func (r *GenreRepo) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&entity.Genre{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

// Count returns the number of genres
func (r *GenreRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Genre{}).Count(&n).Error
	return n, err
}
