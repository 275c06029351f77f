package postgres

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/quizbank-api/internal/domain/entity"
	"github.com/yourusername/quizbank-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizbank-api/internal/pkg/errors"
)

// QuestionRepo implements repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo creates a question repository
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

func (r *QuestionRepo) withAssociations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Genre").
		Preload("Author").
		Preload("Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("choices.order_index, choices.id")
		})
}

func applyFilter(db *gorm.DB, f repository.QuestionFilter) *gorm.DB {
	if f.GenreID != "" {
		db = db.Where("questions.genre_id = ?", f.GenreID)
	}
	if f.Difficulty != nil {
		db = db.Where("questions.difficulty = ?", *f.Difficulty)
	}
	if f.IsActive != nil {
		db = db.Where("questions.is_active = ?", *f.IsActive)
	}
	if f.Unreviewed != nil {
		if *f.Unreviewed {
			db = db.Where("questions.reviewed_at IS NULL")
		} else {
			db = db.Where("questions.reviewed_at IS NOT NULL")
		}
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + s + "%"
		db = db.Where("(questions.title ILIKE ? OR questions.body ILIKE ?)", like, like)
	}
	return db
}

// List returns filtered questions, newest first
func (r *QuestionRepo) List(ctx context.Context, filter repository.QuestionFilter) ([]entity.Question, error) {
	var questions []entity.Question
	err := applyFilter(r.withAssociations(ctx), filter).
		Order("questions.created_at DESC, questions.id DESC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// ListAll returns every question ordered by id
func (r *QuestionRepo) ListAll(ctx context.Context) ([]entity.Question, error) {
	var questions []entity.Question
	if err := r.withAssociations(ctx).Order("questions.id").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

// GetByID returns a question with genre, author and choices
func (r *QuestionRepo) GetByID(ctx context.Context, id string) (*entity.Question, error) {
	var question entity.Question
	if err := r.withAssociations(ctx).Where("questions.id = ?", id).First(&question).Error; err != nil {
		return nil, translate(err)
	}
	return &question, nil
}

// Create inserts the question and its choices in one transaction
func (r *QuestionRepo) Create(ctx context.Context, question *entity.Question) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		choices := question.Choices
		if err := tx.Omit(clause.Associations).Create(question).Error; err != nil {
			return err
		}
		return insertChoices(tx, question.ID, choices)
	}))
}

func insertChoices(tx *gorm.DB, questionID string, choices []entity.Choice) error {
	if len(choices) == 0 {
		return nil
	}
	for i := range choices {
		choices[i].QuestionID = questionID
	}
	return tx.Create(&choices).Error
}

// Update saves the editable fields and optionally replaces the choices
func (r *QuestionRepo) Update(ctx context.Context, question *entity.Question, replaceChoices bool) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&entity.Question{}).
			Where("id = ?", question.ID).
			Updates(map[string]interface{}{
				"genre_id":      question.GenreID,
				"difficulty":    question.Difficulty,
				"title":         question.Title,
				"body":          question.Body,
				"clarification": question.Clarification,
				"is_active":     question.IsActive,
				"reviewed_at":   question.ReviewedAt,
				"modifier_id":   question.ModifierID,
				"updated_at":    now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		question.UpdatedAt = now
		if !replaceChoices {
			return nil
		}
		if err := tx.Where("question_id = ?", question.ID).Delete(&entity.Choice{}).Error; err != nil {
			return err
		}
		return insertChoices(tx, question.ID, question.Choices)
	}))
}

// Upsert inserts the question or overwrites its content columns, then replaces its choices
func (r *QuestionRepo) Upsert(ctx context.Context, question *entity.Question) (bool, error) {
	var created bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&entity.Question{}).Where("id = ?", question.ID).Count(&n).Error; err != nil {
			return err
		}
		created = n == 0
		if created {
			if err := tx.Omit(clause.Associations).Create(question).Error; err != nil {
				return err
			}
		} else {
			err := tx.Model(&entity.Question{}).
				Where("id = ?", question.ID).
				Updates(map[string]interface{}{
					"genre_id":      question.GenreID,
					"difficulty":    question.Difficulty,
					"title":         question.Title,
					"body":          question.Body,
					"clarification": question.Clarification,
					"is_active":     question.IsActive,
					"updated_at":    time.Now(),
				}).Error
			if err != nil {
				return err
			}
		}
		if err := tx.Where("question_id = ?", question.ID).Delete(&entity.Choice{}).Error; err != nil {
			return err
		}
		return insertChoices(tx, question.ID, question.Choices)
	})
	if err != nil {
		return false, translate(err)
	}
	return created, nil
}

// Delete removes one question with its choices and attempts
func (r *QuestionRepo) Delete(ctx context.Context, id string) error {
	n, err := r.DeleteByIDs(ctx, []string{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ExistingIDs returns the ids that exist, without duplicates
func (r *QuestionRepo) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	found := make([]string, 0, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	err := r.db.WithContext(ctx).
		Model(&entity.Question{}).
		Where("id IN ?", ids).
		Order("id").
		Pluck("id", &found).Error
	return found, err
}

// SetActive flips is_active on the given questions
func (r *QuestionRepo) SetActive(ctx context.Context, ids []string, active bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&entity.Question{}).
		Where("id IN ?", ids).
		Update("is_active", active)
	return res.RowsAffected, res.Error
}

// DeleteByIDs removes the questions together with their choices and attempts
func (r *QuestionRepo) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM user_attempts WHERE question_id IN ?", ids).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id IN ?", ids).Delete(&entity.Choice{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&entity.Question{})
		n = res.RowsAffected
		return res.Error
	})
	return n, err
}

// BulkUpdate applies the sparse update to every listed question
func (r *QuestionRepo) BulkUpdate(ctx context.Context, ids []string, update repository.QuestionBulkUpdate) (int64, error) {
	if len(ids) == 0 || update.Empty() {
		return 0, nil
	}
	fields := map[string]interface{}{}
	if update.GenreID != nil {
		fields["genre_id"] = *update.GenreID
	}
	if update.Difficulty != nil {
		fields["difficulty"] = *update.Difficulty
	}
	if update.SetReviewedAt {
		fields["reviewed_at"] = update.ReviewedAt
	}
	res := r.db.WithContext(ctx).
		Model(&entity.Question{}).
		Where("id IN ?", ids).
		UpdateColumns(fields)
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	return res.RowsAffected, nil
}

// ListIDs returns every question id
func (r *QuestionRepo) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&entity.Question{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

// ListChoiceIDs returns every choice id
func (r *QuestionRepo) ListChoiceIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&entity.Choice{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

// Count returns the number of questions, optionally active ones only
func (r *QuestionRepo) Count(ctx context.Context, activeOnly bool) (int64, error) {
	var n int64
	db := r.db.WithContext(ctx).Model(&entity.Question{})
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Count(&n).Error
	return n, err
}
