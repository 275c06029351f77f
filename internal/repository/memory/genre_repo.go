package memory

import (
	"context"
	"sort"

	"github.com/yourusername/quizbank-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizbank-api/internal/pkg/errors"
)

// GenreRepo implements repository.GenreRepository.
type GenreRepo struct {
	s *Store
}

// NewGenreRepo binds a genre repository to s.
func NewGenreRepo(s *Store) *GenreRepo {
	return &GenreRepo{s: s}
}

func (r *GenreRepo) List(ctx context.Context) ([]entity.Genre, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]entity.Genre, 0, len(r.s.genres))
	for _, g := range r.s.genres {
		g.QuestionCount = int64(len(r.s.genreQuestions[g.ID]))
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *GenreRepo) GetByID(ctx context.Context, id string) (*entity.Genre, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g, ok := r.s.genres[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	g.QuestionCount = int64(len(r.s.genreQuestions[id]))
	return &g, nil
}

func (r *GenreRepo) Create(ctx context.Context, genre *entity.Genre) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.genres[genre.ID]; ok {
		return apperrors.ErrConflict
	}
	if genre.CreatedAt.IsZero() {
		genre.CreatedAt = r.s.now()
	}
	r.s.genres[genre.ID] = *genre
	return nil
}

func (r *GenreRepo) Update(ctx context.Context, genre *entity.Genre) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.genres[genre.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	stored.Name = genre.Name
	stored.Description = genre.Description
	r.s.genres[genre.ID] = stored
	return nil
}

// Delete removes the genre and every question it owns.
func (r *GenreRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.genres[id]; !ok {
		return apperrors.ErrNotFound
	}
	for qid := range r.s.genreQuestions[id] {
		r.s.deleteQuestionLocked(qid)
	}
	delete(r.s.genreQuestions, id)
	delete(r.s.genres, id)
	return nil
}

func (r *GenreRepo) ListIDs(ctx context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]string, 0, len(r.s.genres))
	for id := range r.s.genres {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *GenreRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.genres)), nil
}
