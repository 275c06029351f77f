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
	"github.com/yourusername/quizbank-api/internal/service/idgen"
)

const (
	maxGenreIDLen   = 10
	maxGenreNameLen = 100
)

// GenreService manages genres.
type GenreService struct {
	genreRepo repository.GenreRepository
	cacheRepo repository.CacheRepository
}

// NewGenreService creates a GenreService. cacheRepo may be nil.
func NewGenreService(genreRepo repository.GenreRepository, cacheRepo repository.CacheRepository) *GenreService {
	return &GenreService{genreRepo: genreRepo, cacheRepo: cacheRepo}
}

// List returns all genres ordered by name with their question counts.
func (s *GenreService) List(ctx context.Context) ([]entity.Genre, error) {
	return s.genreRepo.List(ctx)
}

// Get returns one genre.
func (s *GenreService) Get(ctx context.Context, id string) (*entity.Genre, error) {
	return s.genreRepo.GetByID(ctx, id)
}

// Create stores a new genre. A blank id is replaced by the next "gNN" id.
func (s *GenreService) Create(ctx context.Context, id, name, description string) (*entity.Genre, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if err := validateGenreName(name); err != nil {
		return nil, err
	}
	if len(id) > maxGenreIDLen {
		return nil, fmt.Errorf("%w: genre id must be at most %d characters", apperrors.ErrValidation, maxGenreIDLen)
	}
	if id == "" {
		ids, err := s.genreRepo.ListIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list genre ids: %w", err)
		}
		id = idgen.Genre.Next(ids)
	}

	genre := &entity.Genre{ID: id, Name: name, Description: description}
	if err := s.genreRepo.Create(ctx, genre); err != nil {
		return nil, err
	}
	dropStatsCache(s.cacheRepo)
	return genre, nil
}

// Update changes the name and/or description. Nil arguments are left as is.
func (s *GenreService) Update(ctx context.Context, id string, name, description *string) (*entity.Genre, error) {
	genre, err := s.genreRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if err := validateGenreName(trimmed); err != nil {
			return nil, err
		}
		genre.Name = trimmed
	}
	if description != nil {
		genre.Description = *description
	}
	if err := s.genreRepo.Update(ctx, genre); err != nil {
		return nil, err
	}
	dropStatsCache(s.cacheRepo)
	return genre, nil
}

// Delete removes the genre together with its questions and their choices.
func (s *GenreService) Delete(ctx context.Context, id string) error {
	if err := s.genreRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Get().Info("genre deleted", zap.String("genre_id", id))
	dropStatsCache(s.cacheRepo)
	return nil
}

func validateGenreName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	if len([]rune(name)) > maxGenreNameLen {
		return fmt.Errorf("%w: name must be at most %d characters", apperrors.ErrValidation, maxGenreNameLen)
	}
	return nil
}
