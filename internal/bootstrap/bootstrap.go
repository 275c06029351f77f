// Package bootstrap assembles repositories and services from configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/yourusername/quizbank-api/internal/config"
	"github.com/yourusername/quizbank-api/internal/domain/repository"
	"github.com/yourusername/quizbank-api/internal/logger"
	apperrors "github.com/yourusername/quizbank-api/internal/pkg/errors"
	"github.com/yourusername/quizbank-api/internal/repository/memory"
	pgRepo "github.com/yourusername/quizbank-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/quizbank-api/internal/repository/redis"
	"github.com/yourusername/quizbank-api/internal/service"
	"github.com/yourusername/quizbank-api/pkg/auth"
	"github.com/yourusername/quizbank-api/pkg/database"
)

// Repositories is the storage layer selected by DatabaseConfig.Driver.
type Repositories struct {
	Genres    repository.GenreRepository
	Questions repository.QuestionRepository
	Users     repository.UserRepository
	Progress  repository.ProgressRepository

	// Cache and Redis stay nil when Redis is disabled.
	Cache repository.CacheRepository
	Redis redis.UniversalClient

	closers []func() error
}

// OpenRepositories connects the configured store and, if enabled, Redis.
func OpenRepositories(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	repos := &Repositories{}

	switch cfg.Database.Driver {
	case "memory":
		store := memory.NewStore()
		repos.Genres = memory.NewGenreRepo(store)
		repos.Questions = memory.NewQuestionRepo(store)
		repos.Users = memory.NewUserRepo(store)
		repos.Progress = memory.NewProgressRepo(store)
		logger.Get().Warn("using the in-memory store, data is lost on exit")

	case "postgres":
		db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), cfg.Logger.Level == "debug")
		if err != nil {
			return nil, err
		}
		sqlDB, err := database.GetSQLDB(db)
		if err != nil {
			return nil, err
		}
		repos.closers = append(repos.closers, sqlDB.Close)

		if cfg.Database.MigrateOnStart {
			if err := database.MigrateDB(db, cfg.Database.MigrationsPath); err != nil {
				repos.Close()
				return nil, err
			}
		}
		sqlxDB, err := database.NewSQLX(db)
		if err != nil {
			repos.Close()
			return nil, err
		}
		repos.Genres = pgRepo.NewGenreRepo(db)
		repos.Questions = pgRepo.NewQuestionRepo(db)
		repos.Users = pgRepo.NewUserRepo(db)
		repos.Progress = pgRepo.NewProgressRepo(sqlxDB)

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	if cfg.Redis.Enabled {
		client, err := database.NewUniversalRedisClient(ctx, cfg.Redis)
		if err != nil {
			repos.Close()
			return nil, err
		}
		repos.closers = append(repos.closers, client.Close)
		cache, err := redisRepo.NewCacheRepo(client)
		if err != nil {
			repos.Close()
			return nil, err
		}
		repos.Redis = client
		repos.Cache = cache
		logger.Get().Info("connected to redis", zap.String("mode", cfg.Redis.Mode))
	}
	return repos, nil
}

// Close releases connections in reverse order of opening.
func (r *Repositories) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// Services groups the application services.
type Services struct {
	Genre    *service.GenreService
	Question *service.QuestionService
	Transfer *service.TransferService
	Stats    *service.StatsService
	User     *service.UserService
	JWT      *auth.JWTService
}

// NewServices wires the services on top of repos.
func NewServices(cfg *config.Config, repos *Repositories) (*Services, error) {
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs, cfg.JWT.Issuer)
	if err != nil {
		return nil, err
	}
	loc := cfg.CSV.Location()
	return &Services{
		Genre:    service.NewGenreService(repos.Genres, repos.Cache),
		Question: service.NewQuestionService(repos.Questions, repos.Genres, repos.Cache),
		Transfer: service.NewTransferService(repos.Questions, repos.Genres, repos.Cache, loc),
		Stats: service.NewStatsService(repos.Users, repos.Questions, repos.Genres, repos.Progress, repos.Cache, service.StatsOptions{
			CacheTTL:           cfg.Stats.CacheTTL(),
			DefaultWindowDays:  cfg.Stats.DefaultWindowDays,
			RecentActivityDays: cfg.Stats.RecentActivityDays,
			RecentActivityMax:  cfg.Stats.RecentActivityMax,
			Location:           loc,
		}),
		User: service.NewUserService(repos.Users, repos.Cache),
		JWT:  jwtService,
	}, nil
}

// EnsureAdmin creates the configured staff account unless it already exists.
func EnsureAdmin(ctx context.Context, cfg config.AdminConfig, users *service.UserService) error {
	if cfg.Username == "" {
		return nil
	}
	_, err := users.CreateAdmin(ctx, cfg.Username, cfg.Email, cfg.Password)
	if errors.Is(err, apperrors.ErrConflict) {
		logger.Get().Debug("admin account already exists", zap.String("username", cfg.Username))
		return nil
	}
	return err
}
