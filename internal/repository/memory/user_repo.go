package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/yourusername/quizbank-api/internal/domain/entity"
	"github.com/yourusername/quizbank-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizbank-api/internal/pkg/errors"
)

// UserRepo implements repository.UserRepository.
type UserRepo struct {
	s *Store
}

// NewUserRepo binds a user repository to s.
func NewUserRepo(s *Store) *UserRepo {
	return &UserRepo{s: s}
}

func userMatches(u *entity.User, f repository.UserFilter) bool {
	if f.IsActive != nil && u.IsActive != *f.IsActive {
		return false
	}
	if f.IsStaff != nil && u.IsStaff != *f.IsStaff {
		return false
	}
	if f.Search == "" {
		return true
	}
	needle := strings.ToLower(f.Search)
	for _, field := range []string{u.Username, u.Email, u.FirstName, u.LastName} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func (r *UserRepo) List(ctx context.Context, filter repository.UserFilter) ([]entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]entity.User, 0)
	for _, u := range r.s.users {
		if userMatches(&u, filter) {
			out = append(out, u)
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

func (r *UserRepo) ListActive(ctx context.Context) ([]entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]entity.User, 0)
	for _, u := range r.s.users {
		if u.IsActive {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Username == user.Username {
			return apperrors.ErrConflict
		}
	}
	if err := user.HashPassword(); err != nil {
		return err
	}
	user.ID = r.s.nextUserID
	r.s.nextUserID++
	now := r.s.now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.users[user.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	cur.Email = user.Email
	cur.FirstName = user.FirstName
	cur.LastName = user.LastName
	cur.IsActive = user.IsActive
	cur.IsStaff = user.IsStaff
	cur.UpdatedAt = r.s.now()
	r.s.users[user.ID] = cur
	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID uint, newPassword string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	cur.Password = newPassword
	if err := cur.HashPassword(); err != nil {
		return err
	}
	cur.UpdatedAt = r.s.now()
	r.s.users[userID] = cur
	return nil
}

func (r *UserRepo) Count(ctx context.Context, activeOnly bool) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, u := range r.s.users {
		if !activeOnly || u.IsActive {
			n++
		}
	}
	return n, nil
}
