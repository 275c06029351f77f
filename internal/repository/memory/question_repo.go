package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/yourusername/quizbank-api/internal/domain/entity"
	"github.com/yourusername/quizbank-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizbank-api/internal/pkg/errors"
)

// QuestionRepo implements repository.QuestionRepository.
type QuestionRepo struct {
	s *Store
}

// NewQuestionRepo binds a question repository to s.
func NewQuestionRepo(s *Store) *QuestionRepo {
	return &QuestionRepo{s: s}
}

func sortChoices(choices []entity.Choice) []entity.Choice {
	sort.Slice(choices, func(i, j int) bool {
		if choices[i].OrderIndex != choices[j].OrderIndex {
			return choices[i].OrderIndex < choices[j].OrderIndex
		}
		return choices[i].ID < choices[j].ID
	})
	return choices
}

func matches(q *entity.Question, f repository.QuestionFilter) bool {
	if f.GenreID != "" && q.GenreID != f.GenreID {
		return false
	}
	if f.Difficulty != nil && q.Difficulty != *f.Difficulty {
		return false
	}
	if f.IsActive != nil && q.IsActive != *f.IsActive {
		return false
	}
	if f.Unreviewed != nil && (q.ReviewedAt == nil) != *f.Unreviewed {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(q.Title), needle) &&
			!strings.Contains(strings.ToLower(q.Body), needle) {
			return false
		}
	}
	return true
}

func (r *QuestionRepo) List(ctx context.Context, filter repository.QuestionFilter) ([]entity.Question, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]entity.Question, 0)
	for _, q := range r.s.questions {
		if matches(&q, filter) {
			out = append(out, r.s.hydrateLocked(q))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *QuestionRepo) ListAll(ctx context.Context) ([]entity.Question, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]entity.Question, 0, len(r.s.questions))
	for _, q := range r.s.questions {
		out = append(out, r.s.hydrateLocked(q))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *QuestionRepo) GetByID(ctx context.Context, id string) (*entity.Question, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q, ok := r.s.questions[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	q = r.s.hydrateLocked(q)
	return &q, nil
}

// stored strips the loaded associations before a question is kept.
func stored(q *entity.Question) entity.Question {
	cp := *q
	cp.Genre = nil
	cp.Author = nil
	cp.Choices = nil
	return cp
}

func (r *QuestionRepo) Create(ctx context.Context, question *entity.Question) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.questions[question.ID]; ok {
		return apperrors.ErrConflict
	}
	if _, ok := r.s.genres[question.GenreID]; !ok {
		return apperrors.ErrNotFound
	}
	now := r.s.now()
	question.CreatedAt = now
	question.UpdatedAt = now
	r.s.questions[question.ID] = stored(question)
	link(r.s.genreQuestions, question.GenreID, question.ID)
	r.s.insertChoicesLocked(question.ID, question.Choices)
	return nil
}

func (r *QuestionRepo) Update(ctx context.Context, question *entity.Question, replaceChoices bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.questions[question.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if _, ok := r.s.genres[question.GenreID]; !ok {
		return apperrors.ErrNotFound
	}
	if cur.GenreID != question.GenreID {
		unlink(r.s.genreQuestions, cur.GenreID, cur.ID)
		link(r.s.genreQuestions, question.GenreID, cur.ID)
	}
	cur.GenreID = question.GenreID
	cur.Difficulty = question.Difficulty
	cur.Title = question.Title
	cur.Body = question.Body
	cur.Clarification = question.Clarification
	cur.IsActive = question.IsActive
	cur.ReviewedAt = question.ReviewedAt
	cur.ModifierID = question.ModifierID
	cur.UpdatedAt = r.s.now()
	r.s.questions[cur.ID] = cur
	question.UpdatedAt = cur.UpdatedAt

	if replaceChoices {
		r.s.deleteChoicesLocked(cur.ID)
		r.s.insertChoicesLocked(cur.ID, question.Choices)
	}
	return nil
}

func (r *QuestionRepo) Upsert(ctx context.Context, question *entity.Question) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.genres[question.GenreID]; !ok {
		return false, apperrors.ErrNotFound
	}
	now := r.s.now()
	cur, exists := r.s.questions[question.ID]
	if exists {
		unlink(r.s.genreQuestions, cur.GenreID, cur.ID)
		cur.GenreID = question.GenreID
		cur.Difficulty = question.Difficulty
		cur.Title = question.Title
		cur.Body = question.Body
		cur.Clarification = question.Clarification
		cur.IsActive = question.IsActive
		cur.UpdatedAt = now
	} else {
		cur = stored(question)
		cur.CreatedAt = now
		cur.UpdatedAt = now
	}
	r.s.questions[cur.ID] = cur
	link(r.s.genreQuestions, cur.GenreID, cur.ID)

	r.s.deleteChoicesLocked(cur.ID)
	r.s.insertChoicesLocked(cur.ID, question.Choices)
	return !exists, nil
}

func (r *QuestionRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.deleteQuestionLocked(id) {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *QuestionRepo) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.existingLocked(ids), nil
}

func (r *QuestionRepo) existingLocked(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := r.s.questions[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func (r *QuestionRepo) SetActive(ctx context.Context, ids []string, active bool) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	found := r.existingLocked(ids)
	for _, id := range found {
		q := r.s.questions[id]
		q.IsActive = active
		r.s.questions[id] = q
	}
	return int64(len(found)), nil
}

func (r *QuestionRepo) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, id := range ids {
		if r.s.deleteQuestionLocked(id) {
			n++
		}
	}
	return n, nil
}

func (r *QuestionRepo) BulkUpdate(ctx context.Context, ids []string, update repository.QuestionBulkUpdate) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if update.GenreID != nil {
		if _, ok := r.s.genres[*update.GenreID]; !ok {
			return 0, apperrors.ErrNotFound
		}
	}
	found := r.existingLocked(ids)
	for _, id := range found {
		q := r.s.questions[id]
		if update.GenreID != nil && q.GenreID != *update.GenreID {
			unlink(r.s.genreQuestions, q.GenreID, id)
			q.GenreID = *update.GenreID
			link(r.s.genreQuestions, q.GenreID, id)
		}
		if update.Difficulty != nil {
			q.Difficulty = *update.Difficulty
		}
		if update.SetReviewedAt {
			q.ReviewedAt = update.ReviewedAt
		}
		r.s.questions[id] = q
	}
	return int64(len(found)), nil
}

func (r *QuestionRepo) ListIDs(ctx context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]string, 0, len(r.s.questions))
	for id := range r.s.questions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *QuestionRepo) ListChoiceIDs(ctx context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]string, 0, len(r.s.choices))
	for id := range r.s.choices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *QuestionRepo) Count(ctx context.Context, activeOnly bool) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if !activeOnly {
		return int64(len(r.s.questions)), nil
	}
	var n int64
	for _, q := range r.s.questions {
		if q.IsActive {
			n++
		}
	}
	return n, nil
}
