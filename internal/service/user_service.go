package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/quizbank-api/internal/domain/entity"
	"github.com/yourusername/quizbank-api/internal/domain/repository"
	"github.com/yourusername/quizbank-api/internal/logger"
	apperrors "github.com/yourusername/quizbank-api/internal/pkg/errors"
)

const minPasswordLen = 8

// UserPatch is a partial account update. Nil fields are left unchanged.
type UserPatch struct {
	Email     *string
	FirstName *string
	LastName  *string
	IsActive  *bool
	IsStaff   *bool
}

// UserService manages accounts from the admin side.
type UserService struct {
	userRepo  repository.UserRepository
	cacheRepo repository.CacheRepository
}

// NewUserService creates a UserService. cacheRepo may be nil.
func NewUserService(userRepo repository.UserRepository, cacheRepo repository.CacheRepository) *UserService {
	return &UserService{userRepo: userRepo, cacheRepo: cacheRepo}
}

// List returns accounts matching filter, newest first.
func (s *UserService) List(ctx context.Context, filter repository.UserFilter) ([]entity.User, error) {
	return s.userRepo.List(ctx, filter)
}

// Get returns one account.
func (s *UserService) Get(ctx context.Context, id uint) (*entity.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// Update applies patch to the account.
func (s *UserService) Update(ctx context.Context, id uint, patch UserPatch) (*entity.User, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if email != "" && !strings.Contains(email, "@") {
			return nil, fmt.Errorf("%w: invalid email address", apperrors.ErrValidation)
		}
		u.Email = email
	}
	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	if patch.IsActive != nil {
		u.IsActive = *patch.IsActive
	}
	if patch.IsStaff != nil {
		u.IsStaff = *patch.IsStaff
	}
	if err := s.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}
	dropStatsCache(s.cacheRepo)
	return u, nil
}

// CreateAdmin creates an active staff account.
func (s *UserService) CreateAdmin(ctx context.Context, username, email, password string) (*entity.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", apperrors.ErrValidation)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", apperrors.ErrValidation, minPasswordLen)
	}
	u := &entity.User{
		Username: username,
		Email:    strings.TrimSpace(email),
		Password: password,
		IsActive: true,
		IsStaff:  true,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}
	logger.Get().Info("admin account created", zap.Uint("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

// ResetPassword sets a new password for username.
func (s *UserService) ResetPassword(ctx context.Context, username, password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", apperrors.ErrValidation, minPasswordLen)
	}
	u, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, u.ID, password); err != nil {
		return err
	}
	logger.Get().Info("password reset", zap.Uint("user_id", u.ID))
	return nil
}

// Authenticate returns the active account behind username and password.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	u, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	if !u.IsActive || !u.CheckPassword(password) {
		return nil, apperrors.ErrUnauthorized
	}
	return u, nil
}
