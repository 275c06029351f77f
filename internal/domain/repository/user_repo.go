package repository

import (
	"context"

	"github.com/yourusername/quizbank-api/internal/domain/entity"
)

// UserFilter narrows List.
type UserFilter struct {
	// Search matches username, email, first or last name.
	Search   string
	IsActive *bool
	IsStaff  *bool
}

// UserRepository stores accounts.
type UserRepository interface {
	// List returns users newest first.
	List(ctx context.Context, filter UserFilter) ([]entity.User, error)
	// ListActive returns active users ordered by username.
	ListActive(ctx context.Context) ([]entity.User, error)
	GetByID(ctx context.Context, id uint) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	UpdatePassword(ctx context.Context, userID uint, newPassword string) error
	Count(ctx context.Context, activeOnly bool) (int64, error)
}
