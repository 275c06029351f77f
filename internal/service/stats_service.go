package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/quizbank-api/internal/domain/entity"
	"github.com/yourusername/quizbank-api/internal/domain/repository"
	"github.com/yourusername/quizbank-api/internal/logger"
	apperrors "github.com/yourusername/quizbank-api/internal/pkg/errors"
)

const (
	minWindowDays = 1
	maxWindowDays = 365
	titlePreview  = 50
	dateLayout    = "2006-01-02"
)

// StatsOptions tunes StatsService.
type StatsOptions struct {
	CacheTTL           time.Duration
	DefaultWindowDays  int
	RecentActivityDays int
	RecentActivityMax  int
	Location           *time.Location
}

// Overview is the global content and account count.
type Overview struct {
	TotalUsers      int64 `json:"total_users"`
	ActiveUsers     int64 `json:"active_users"`
	TotalQuestions  int64 `json:"total_questions"`
	ActiveQuestions int64 `json:"active_questions"`
	TotalGenres     int64 `json:"total_genres"`
}

// UserProgressSummary is one line of the learner overview.
type UserProgressSummary struct {
	UserID            uint       `json:"user_id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	IsStaff           bool       `json:"is_staff"`
	TotalAttempts     int64      `json:"total_attempts"`
	CorrectAttempts   int64      `json:"correct_attempts"`
	AccuracyRate      float64    `json:"accuracy_rate"`
	CompletedSessions int64      `json:"completed_sessions"`
	LastActivity      *time.Time `json:"last_activity"`
}

// UserProgressList wraps the learner overview.
type UserProgressList struct {
	Users      []UserProgressSummary `json:"users"`
	TotalUsers int                   `json:"total_users"`
}

// GenreProgress is a user's stored tally for one genre.
type GenreProgress struct {
	GenreID         string     `json:"genre_id"`
	GenreName       string     `json:"genre_name"`
	TotalAttempts   int        `json:"total_attempts"`
	CorrectAttempts int        `json:"correct_attempts"`
	AccuracyRate    float64    `json:"accuracy_rate"`
	LastStudyDate   *time.Time `json:"last_study_date"`
}

// RecentActivity is one recent attempt with a display title.
type RecentActivity struct {
	QuestionID    string    `json:"question_id"`
	QuestionTitle string    `json:"question_title"`
	GenreName     string    `json:"genre_name"`
	IsCorrect     bool      `json:"is_correct"`
	AttemptTime   time.Time `json:"attempt_time"`
}

// UserProgressDetail is the full progress report of one user.
type UserProgressDetail struct {
	UserID          uint             `json:"user_id"`
	Username        string           `json:"username"`
	Email           string           `json:"email"`
	TotalAttempts   int64            `json:"total_attempts"`
	CorrectAttempts int64            `json:"correct_attempts"`
	AccuracyRate    float64          `json:"accuracy_rate"`
	TotalSessions   int64            `json:"total_sessions"`
	AvgScore        float64          `json:"avg_score"`
	GenreProgress   []GenreProgress  `json:"genre_progress"`
	RecentActivity  []RecentActivity `json:"recent_activity"`
}

// GenreStat aggregates attempts on one genre inside the window.
type GenreStat struct {
	GenreID         string  `json:"genre_id"`
	GenreName       string  `json:"genre_name"`
	TotalAttempts   int64   `json:"total_attempts"`
	CorrectAttempts int64   `json:"correct_attempts"`
	AccuracyRate    float64 `json:"accuracy_rate"`
	UniqueUsers     int     `json:"unique_users"`
}

// DailyActivity is one day of the activity series.
type DailyActivity struct {
	Date        string `json:"date"`
	Attempts    int    `json:"attempts"`
	ActiveUsers int    `json:"active_users"`
}

// FleetStats summarises learner activity over a trailing window.
type FleetStats struct {
	PeriodDays      int             `json:"period_days"`
	TotalUsers      int64           `json:"total_users"`
	ActiveUsers     int64           `json:"active_users"`
	ActiveLearners  int             `json:"active_learners"`
	TotalAttempts   int64           `json:"total_attempts"`
	CorrectAttempts int64           `json:"correct_attempts"`
	OverallAccuracy float64         `json:"overall_accuracy"`
	GenreStats      []GenreStat     `json:"genre_stats"`
	DailyActivity   []DailyActivity `json:"daily_activity"`
}

// StatsService computes the admin statistics.
type StatsService struct {
	userRepo     repository.UserRepository
	questionRepo repository.QuestionRepository
	genreRepo    repository.GenreRepository
	progressRepo repository.ProgressRepository
	cacheRepo    repository.CacheRepository
	opts         StatsOptions
	now          func() time.Time
}

// NewStatsService creates a StatsService. cacheRepo may be nil.
func NewStatsService(
	userRepo repository.UserRepository,
	questionRepo repository.QuestionRepository,
	genreRepo repository.GenreRepository,
	progressRepo repository.ProgressRepository,
	cacheRepo repository.CacheRepository,
	opts StatsOptions,
) *StatsService {
	if opts.DefaultWindowDays <= 0 {
		opts.DefaultWindowDays = 30
	}
	if opts.RecentActivityDays <= 0 {
		opts.RecentActivityDays = 30
	}
	if opts.RecentActivityMax <= 0 {
		opts.RecentActivityMax = 10
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &StatsService{
		userRepo:     userRepo,
		questionRepo: questionRepo,
		genreRepo:    genreRepo,
		progressRepo: progressRepo,
		cacheRepo:    cacheRepo,
		opts:         opts,
		now:          time.Now,
	}
}

// DefaultWindowDays is the window used when the caller gives none.
func (s *StatsService) DefaultWindowDays() int {
	return s.opts.DefaultWindowDays
}

// AccuracyRate returns correct/total as a percentage rounded to one
// decimal, or 0 when there are no attempts.
func AccuracyRate(correct, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return round1(float64(correct) / float64(total) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// PreviewTitle shortens long titles and names untitled questions by id.
func PreviewTitle(questionID, title string) string {
	if title == "" {
		return "Question " + questionID
	}
	runes := []rune(title)
	if len(runes) > titlePreview {
		return string(runes[:titlePreview]) + "..."
	}
	return title
}

// Overview counts users, questions and genres.
func (s *StatsService) Overview(ctx context.Context) (*Overview, error) {
	var out Overview
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.TotalUsers, err = s.userRepo.Count(ctx, false)
		return err
	})
	g.Go(func() (err error) {
		out.ActiveUsers, err = s.userRepo.Count(ctx, true)
		return err
	})
	g.Go(func() (err error) {
		out.TotalQuestions, err = s.questionRepo.Count(ctx, false)
		return err
	})
	g.Go(func() (err error) {
		out.ActiveQuestions, err = s.questionRepo.Count(ctx, true)
		return err
	})
	g.Go(func() (err error) {
		out.TotalGenres, err = s.genreRepo.Count(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	return &out, nil
}

// UserProgressList summarises every active user, ordered by username.
func (s *StatsService) UserProgressList(ctx context.Context) (*UserProgressList, error) {
	users, err := s.userRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := &UserProgressList{Users: make([]UserProgressSummary, 0, len(users))}
	for _, u := range users {
		counts, err := s.progressRepo.CountAttempts(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		sessions, err := s.progressRepo.SessionSummary(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		last, err := s.progressRepo.LastAttemptAt(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		out.Users = append(out.Users, UserProgressSummary{
			UserID:            u.ID,
			Username:          u.Username,
			Email:             u.Email,
			FirstName:         u.FirstName,
			LastName:          u.LastName,
			IsStaff:           u.IsStaff,
			TotalAttempts:     counts.Total,
			CorrectAttempts:   counts.Correct,
			AccuracyRate:      AccuracyRate(counts.Correct, counts.Total),
			CompletedSessions: sessions.Completed,
			LastActivity:      last,
		})
	}
	out.TotalUsers = len(out.Users)
	return out, nil
}

// UserProgressDetail reports the progress of one user.
func (s *StatsService) UserProgressDetail(ctx context.Context, userID uint) (*UserProgressDetail, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts, err := s.progressRepo.CountAttempts(ctx, userID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.progressRepo.SessionSummary(ctx, userID)
	if err != nil {
		return nil, err
	}
	genres, err := s.progressRepo.ListGenreProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	since := s.now().AddDate(0, 0, -s.opts.RecentActivityDays)
	recent, err := s.progressRepo.ListRecentAttempts(ctx, userID, since, s.opts.RecentActivityMax)
	if err != nil {
		return nil, err
	}

	out := &UserProgressDetail{
		UserID:          u.ID,
		Username:        u.Username,
		Email:           u.Email,
		TotalAttempts:   counts.Total,
		CorrectAttempts: counts.Correct,
		AccuracyRate:    AccuracyRate(counts.Correct, counts.Total),
		TotalSessions:   sessions.Completed,
		AvgScore:        round1(sessions.AvgScore),
		GenreProgress:   make([]GenreProgress, 0, len(genres)),
		RecentActivity:  make([]RecentActivity, 0, len(recent)),
	}
	for _, g := range genres {
		out.GenreProgress = append(out.GenreProgress, GenreProgress(g))
	}
	for _, a := range recent {
		out.RecentActivity = append(out.RecentActivity, RecentActivity{
			QuestionID:    a.QuestionID,
			QuestionTitle: PreviewTitle(a.QuestionID, a.QuestionTitle),
			GenreName:     a.GenreName,
			IsCorrect:     a.IsCorrect,
			AttemptTime:   a.AttemptTime,
		})
	}
	return out, nil
}

// FleetStats aggregates attempts over the last days days. Results are cached
// for the configured TTL.
func (s *StatsService) FleetStats(ctx context.Context, days int) (*FleetStats, error) {
	if days < minWindowDays || days > maxWindowDays {
		return nil, fmt.Errorf("%w: days must be between %d and %d", apperrors.ErrValidation, minWindowDays, maxWindowDays)
	}

	key := fmt.Sprintf("%sfleet:%d", statsCachePrefix, days)
	if s.cacheRepo != nil && s.opts.CacheTTL > 0 {
		var cached FleetStats
		err := s.cacheRepo.GetJSON(key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Get().Warn("stats cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	out, err := s.computeFleetStats(ctx, days)
	if err != nil {
		return nil, err
	}

	if s.cacheRepo != nil && s.opts.CacheTTL > 0 {
		if err := s.cacheRepo.SetJSON(key, out, s.opts.CacheTTL); err != nil {
			logger.Get().Warn("stats cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}

func (s *StatsService) computeFleetStats(ctx context.Context, days int) (*FleetStats, error) {
	start := s.now().AddDate(0, 0, -days)
	out := &FleetStats{PeriodDays: days}

	var (
		events []repository.AttemptEvent
		genres []entity.Genre
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.TotalUsers, err = s.userRepo.Count(gctx, false)
		return err
	})
	g.Go(func() (err error) {
		out.ActiveUsers, err = s.userRepo.Count(gctx, true)
		return err
	})
	g.Go(func() (err error) {
		events, err = s.progressRepo.ListAttemptEvents(gctx, start)
		return err
	})
	g.Go(func() (err error) {
		genres, err = s.genreRepo.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load activity: %w", err)
	}

	type genreAgg struct {
		total, correct int64
		users          map[uint]struct{}
	}
	byGenre := make(map[string]*genreAgg, len(genres))
	for _, genre := range genres {
		byGenre[genre.ID] = &genreAgg{users: make(map[uint]struct{})}
	}
	learners := make(map[uint]struct{})
	dayUsers := make([]map[uint]struct{}, days)
	out.DailyActivity = make([]DailyActivity, days)
	for i := 0; i < days; i++ {
		dayUsers[i] = make(map[uint]struct{})
		out.DailyActivity[i].Date = start.AddDate(0, 0, i).In(s.opts.Location).Format(dateLayout)
	}

	for _, ev := range events {
		if ev.At.Before(start) {
			continue
		}
		learners[ev.UserID] = struct{}{}
		out.TotalAttempts++
		if ev.IsCorrect {
			out.CorrectAttempts++
		}
		if agg, ok := byGenre[ev.GenreID]; ok {
			agg.total++
			if ev.IsCorrect {
				agg.correct++
			}
			agg.users[ev.UserID] = struct{}{}
		}
		if i := dayIndex(start, ev.At, days); i >= 0 {
			out.DailyActivity[i].Attempts++
			dayUsers[i][ev.UserID] = struct{}{}
		}
	}

	out.ActiveLearners = len(learners)
	out.OverallAccuracy = AccuracyRate(out.CorrectAttempts, out.TotalAttempts)
	for i := range out.DailyActivity {
		out.DailyActivity[i].ActiveUsers = len(dayUsers[i])
	}
	out.GenreStats = make([]GenreStat, 0, len(genres))
	for _, genre := range genres {
		agg := byGenre[genre.ID]
		out.GenreStats = append(out.GenreStats, GenreStat{
			GenreID:         genre.ID,
			GenreName:       genre.Name,
			TotalAttempts:   agg.total,
			CorrectAttempts: agg.correct,
			AccuracyRate:    AccuracyRate(agg.correct, agg.total),
			UniqueUsers:     len(agg.users),
		})
	}
	return out, nil
}

// dayIndex maps t to the bucket [start+i days, start+i+1 days), or -1.
func dayIndex(start, t time.Time, days int) int {
	guess := int(t.Sub(start) / (24 * time.Hour))
	// calendar days may be 23 or 25 hours long, so check the neighbours too
	for _, i := range []int{guess, guess - 1, guess + 1} {
		if i < 0 || i >= days {
			continue
		}
		if !t.Before(start.AddDate(0, 0, i)) && t.Before(start.AddDate(0, 0, i+1)) {
			return i
		}
	}
	return -1
}
