package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/quizbank-api/internal/domain/entity"
	"github.com/yourusername/quizbank-api/internal/domain/repository"
	"github.com/yourusername/quizbank-api/internal/logger"
	apperrors "github.com/yourusername/quizbank-api/internal/pkg/errors"
	"github.com/yourusername/quizbank-api/internal/service/idgen"
)

const maxQuestionIDLen = 20

// Bulk actions accepted by QuestionService.BulkAction.
const (
	BulkActivate   = "activate"
	BulkDeactivate = "deactivate"
	BulkDelete     = "delete"
)

// ChoiceInput is a choice as submitted by an editor.
type ChoiceInput struct {
	Content    string
	IsCorrect  bool
	OrderIndex int
}

// QuestionInput carries the fields of a new question.
type QuestionInput struct {
	ID            string
	GenreID       string
	Difficulty    int
	Title         string
	Body          string
	Clarification string
	IsActive      *bool
	ReviewedAt    *time.Time
	Choices       []ChoiceInput
}

// QuestionPatch is a partial update. Nil fields are left unchanged, and
// Choices replaces the owned choices only when it is non-nil.
type QuestionPatch struct {
	GenreID       *string
	Difficulty    *int
	Title         *string
	Body          *string
	Clarification *string
	IsActive      *bool
	SetReviewedAt bool
	ReviewedAt    *time.Time
	Choices       *[]ChoiceInput
}

// BulkUpdateInput is the sparse field set of a bulk update.
type BulkUpdateInput = repository.QuestionBulkUpdate

// QuestionService manages questions and their choices.
type QuestionService struct {
	questionRepo repository.QuestionRepository
	genreRepo    repository.GenreRepository
	cacheRepo    repository.CacheRepository
}

// NewQuestionService creates a QuestionService. cacheRepo may be nil.
func NewQuestionService(
	questionRepo repository.QuestionRepository,
	genreRepo repository.GenreRepository,
	cacheRepo repository.CacheRepository,
) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		genreRepo:    genreRepo,
		cacheRepo:    cacheRepo,
	}
}

// List returns the questions matching filter, newest first.
func (s *QuestionService) List(ctx context.Context, filter repository.QuestionFilter) ([]entity.Question, error) {
	return s.questionRepo.List(ctx, filter)
}

// Get returns a question with its genre, author and choices.
func (s *QuestionService) Get(ctx context.Context, id string) (*entity.Question, error) {
	return s.questionRepo.GetByID(ctx, id)
}

// Create stores a question authored by author. Missing ids are generated.
func (s *QuestionService) Create(ctx context.Context, in QuestionInput, author *entity.User) (*entity.Question, error) {
	id := strings.TrimSpace(in.ID)
	if len(id) > maxQuestionIDLen {
		return nil, fmt.Errorf("%w: question id must be at most %d characters", apperrors.ErrValidation, maxQuestionIDLen)
	}
	q := &entity.Question{
		ID:            id,
		GenreID:       strings.TrimSpace(in.GenreID),
		Difficulty:    in.Difficulty,
		Title:         strings.TrimSpace(in.Title),
		Body:          in.Body,
		Clarification: in.Clarification,
		ReviewedAt:    in.ReviewedAt,
		IsActive:      true,
	}
	if in.IsActive != nil {
		q.IsActive = *in.IsActive
	}
	if author != nil {
		q.AuthorID = &author.ID
	}
	if err := s.validate(ctx, q); err != nil {
		return nil, err
	}

	if q.ID == "" {
		ids, err := s.questionRepo.ListIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list question ids: %w", err)
		}
		q.ID = idgen.Question.Next(ids)
	}
	choices, err := s.buildChoices(ctx, in.Choices, nil)
	if err != nil {
		return nil, err
	}
	q.Choices = choices

	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, err
	}
	dropStatsCache(s.cacheRepo)
	return s.questionRepo.GetByID(ctx, q.ID)
}

// Update applies patch and records modifier as the last editor.
func (s *QuestionService) Update(ctx context.Context, id string, patch QuestionPatch, modifier *entity.User) (*entity.Question, error) {
	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.GenreID != nil {
		q.GenreID = strings.TrimSpace(*patch.GenreID)
	}
	if patch.Difficulty != nil {
		q.Difficulty = *patch.Difficulty
	}
	if patch.Title != nil {
		q.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Body != nil {
		q.Body = *patch.Body
	}
	if patch.Clarification != nil {
		q.Clarification = *patch.Clarification
	}
	if patch.IsActive != nil {
		q.IsActive = *patch.IsActive
	}
	if patch.SetReviewedAt {
		q.ReviewedAt = patch.ReviewedAt
	}
	if modifier != nil {
		q.ModifierID = &modifier.ID
	}
	if err := s.validate(ctx, q); err != nil {
		return nil, err
	}

	replace := patch.Choices != nil
	if replace {
		choices, err := s.buildChoices(ctx, *patch.Choices, q.Choices)
		if err != nil {
			return nil, err
		}
		q.Choices = choices
	}
	if err := s.questionRepo.Update(ctx, q, replace); err != nil {
		return nil, err
	}
	dropStatsCache(s.cacheRepo)
	return s.questionRepo.GetByID(ctx, id)
}

// Delete removes a question and its choices.
func (s *QuestionService) Delete(ctx context.Context, id string) error {
	if err := s.questionRepo.Delete(ctx, id); err != nil {
		return err
	}
	dropStatsCache(s.cacheRepo)
	return nil
}

// BulkAction applies activate, deactivate or delete to every listed question.
func (s *QuestionService) BulkAction(ctx context.Context, action string, ids []string) (string, error) {
	if action == "" || len(ids) == 0 {
		return "", fmt.Errorf("%w: action and question_ids are required", apperrors.ErrValidation)
	}

	var (
		n    int64
		err  error
		verb string
	)
	switch action {
	case BulkActivate:
		n, err = s.questionRepo.SetActive(ctx, ids, true)
		verb = "activated"
	case BulkDeactivate:
		n, err = s.questionRepo.SetActive(ctx, ids, false)
		verb = "deactivated"
	case BulkDelete:
		n, err = s.questionRepo.DeleteByIDs(ctx, ids)
		verb = "deleted"
	default:
		return "", fmt.Errorf("%w: invalid action %q", apperrors.ErrValidation, action)
	}
	if err != nil {
		return "", fmt.Errorf("failed to %s questions: %w", action, err)
	}

	logger.Get().Info("bulk action applied",
		zap.String("action", action),
		zap.Int("requested", len(ids)),
		zap.Int64("affected", n),
	)
	dropStatsCache(s.cacheRepo)
	return fmt.Sprintf("%d questions %s", n, verb), nil
}

// BulkUpdate applies the same field values to every listed question. Nothing
// is written unless every supplied value is valid.
func (s *QuestionService) BulkUpdate(ctx context.Context, ids []string, upd BulkUpdateInput) (string, error) {
	if len(ids) == 0 {
		return "", fmt.Errorf("%w: question_ids and updates are required", apperrors.ErrValidation)
	}
	found, err := s.questionRepo.ExistingIDs(ctx, ids)
	if err != nil {
		return "", fmt.Errorf("failed to look up questions: %w", err)
	}
	if len(found) == 0 {
		return "", fmt.Errorf("%w: no matching questions", apperrors.ErrNotFound)
	}

	var changes []string
	if upd.GenreID != nil {
		genre, err := s.genreRepo.GetByID(ctx, *upd.GenreID)
		if err != nil {
			if isNotFound(err) {
				return "", fmt.Errorf("%w: genre not found", apperrors.ErrValidation)
			}
			return "", err
		}
		changes = append(changes, "genre: "+genre.Name)
	}
	if upd.Difficulty != nil {
		if !entity.IsValidDifficulty(*upd.Difficulty) {
			return "", fmt.Errorf("%w: %s", apperrors.ErrValidation, difficultyRule)
		}
		changes = append(changes, fmt.Sprintf("difficulty: %d", *upd.Difficulty))
	}
	if upd.SetReviewedAt {
		if upd.ReviewedAt == nil {
			changes = append(changes, "review status: reset")
		} else {
			changes = append(changes, "review status: completed")
		}
	}
	if upd.Empty() {
		return "nothing to update", nil
	}

	n, err := s.questionRepo.BulkUpdate(ctx, found, upd)
	if err != nil {
		return "", fmt.Errorf("failed to update questions: %w", err)
	}
	dropStatsCache(s.cacheRepo)
	return fmt.Sprintf("%d questions updated (%s)", n, strings.Join(changes, ", ")), nil
}

var difficultyRule = fmt.Sprintf("difficulty must be 1, 2 or 3 (1: %s, 2: %s, 3: %s)",
	entity.DifficultyLabel(entity.DifficultyElementary),
	entity.DifficultyLabel(entity.DifficultyIntermediate),
	entity.DifficultyLabel(entity.DifficultyAdvanced),
)

func (s *QuestionService) validate(ctx context.Context, q *entity.Question) error {
	if q.GenreID == "" {
		return fmt.Errorf("%w: genre is required", apperrors.ErrValidation)
	}
	if q.Title == "" {
		return fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if !entity.IsValidDifficulty(q.Difficulty) {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, difficultyRule)
	}
	if _, err := s.genreRepo.GetByID(ctx, q.GenreID); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: genre %q not found", apperrors.ErrValidation, q.GenreID)
		}
		return err
	}
	return nil
}

// buildChoices assigns fresh ids to the submitted choices. The ids of the
// choices being replaced are free for reuse.
func (s *QuestionService) buildChoices(ctx context.Context, in []ChoiceInput, replaced []entity.Choice) ([]entity.Choice, error) {
	if len(in) == 0 {
		return nil, nil
	}
	ids, err := s.questionRepo.ListChoiceIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list choice ids: %w", err)
	}
	alloc := idgen.NewAllocator(idgen.Choice, ids)
	for _, c := range replaced {
		alloc.Release(c.ID)
	}
	out := make([]entity.Choice, 0, len(in))
	for _, c := range in {
		out = append(out, entity.Choice{
			ID:         alloc.Next(),
			Content:    c.Content,
			IsCorrect:  c.IsCorrect,
			OrderIndex: c.OrderIndex,
		})
	}
	return out, nil
}
