package memory

import (
	"context"
	"sort"
	"time"

	"github.com/yourusername/quizbank-api/internal/domain/repository"
)

// ProgressRepo implements repository.ProgressRepository over the attempts,
// sessions and tallies seeded into the store.
type ProgressRepo struct {
	s *Store
}

// NewProgressRepo binds a progress repository to s.
func NewProgressRepo(s *Store) *ProgressRepo {
	return &ProgressRepo{s: s}
}

func (r *ProgressRepo) CountAttempts(ctx context.Context, userID uint) (repository.AttemptCounts, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var c repository.AttemptCounts
	for _, a := range r.s.attempts {
		if userID != 0 && a.UserID != userID {
			continue
		}
		c.Total++
		if a.IsCorrect {
			c.Correct++
		}
	}
	return c, nil
}

func (r *ProgressRepo) SessionSummary(ctx context.Context, userID uint) (repository.SessionSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var sum repository.SessionSummary
	var correct int64
	for _, qs := range r.s.sessions {
		if qs.UserID != userID || !qs.IsCompleted {
			continue
		}
		sum.Completed++
		correct += int64(qs.CorrectAnswers)
	}
	if sum.Completed > 0 {
		sum.AvgScore = float64(correct) / float64(sum.Completed)
	}
	return sum, nil
}

func (r *ProgressRepo) ListGenreProgress(ctx context.Context, userID uint) ([]repository.GenreProgress, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]repository.GenreProgress, 0)
	for _, p := range r.s.progress {
		if p.UserID != userID {
			continue
		}
		out = append(out, repository.GenreProgress{
			GenreID:         p.GenreID,
			GenreName:       r.s.genres[p.GenreID].Name,
			TotalAttempts:   p.TotalAttempts,
			CorrectAttempts: p.CorrectAttempts,
			AccuracyRate:    p.AccuracyRate,
			LastStudyDate:   p.LastStudyDate,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GenreID < out[j].GenreID })
	return out, nil
}

func (r *ProgressRepo) ListRecentAttempts(ctx context.Context, userID uint, since time.Time, limit int) ([]repository.AttemptRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]repository.AttemptRecord, 0)
	for _, a := range r.s.attempts {
		if a.UserID != userID || a.AttemptTime.Before(since) {
			continue
		}
		q, ok := r.s.questions[a.QuestionID]
		if !ok {
			continue
		}
		out = append(out, repository.AttemptRecord{
			QuestionID:    q.ID,
			QuestionTitle: q.Title,
			GenreName:     r.s.genres[q.GenreID].Name,
			IsCorrect:     a.IsCorrect,
			AttemptTime:   a.AttemptTime,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AttemptTime.After(out[j].AttemptTime) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ProgressRepo) LastAttemptAt(ctx context.Context, userID uint) (*time.Time, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var last *time.Time
	for _, a := range r.s.attempts {
		if a.UserID != userID {
			continue
		}
		if last == nil || a.AttemptTime.After(*last) {
			t := a.AttemptTime
			last = &t
		}
	}
	return last, nil
}

func (r *ProgressRepo) ListAttemptEvents(ctx context.Context, since time.Time) ([]repository.AttemptEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]repository.AttemptEvent, 0)
	for _, a := range r.s.attempts {
		if a.AttemptTime.Before(since) {
			continue
		}
		ev := repository.AttemptEvent{UserID: a.UserID, IsCorrect: a.IsCorrect, At: a.AttemptTime}
		if q, ok := r.s.questions[a.QuestionID]; ok {
			ev.GenreID = q.GenreID
		}
		out = append(out, ev)
	}
	return out, nil
}
