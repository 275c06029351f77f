package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizbank-api/internal/domain/entity"
	"github.com/yourusername/quizbank-api/internal/repository/memory"
)

// fixture wires every service to one memory store.
type fixture struct {
	store     *memory.Store
	genres    *memory.GenreRepo
	questions *memory.QuestionRepo
	users     *memory.UserRepo
	progress  *memory.ProgressRepo

	genreSvc    *GenreService
	questionSvc *QuestionService
	transferSvc *TransferService
	statsSvc    *StatsService
	userSvc     *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()
	f := &fixture{
		store:     s,
		genres:    memory.NewGenreRepo(s),
		questions: memory.NewQuestionRepo(s),
		users:     memory.NewUserRepo(s),
		progress:  memory.NewProgressRepo(s),
	}
	f.genreSvc = NewGenreService(f.genres, nil)
	f.questionSvc = NewQuestionService(f.questions, f.genres, nil)
	f.transferSvc = NewTransferService(f.questions, f.genres, nil, time.UTC)
	f.statsSvc = NewStatsService(f.users, f.questions, f.genres, f.progress, nil, StatsOptions{})
	f.userSvc = NewUserService(f.users, nil)
	return f
}

func (f *fixture) genre(t *testing.T, id, name string) {
	t.Helper()
	require.NoError(t, f.genres.Create(context.Background(), &entity.Genre{ID: id, Name: name}))
}

func (f *fixture) user(t *testing.T, username string, staff bool) *entity.User {
	t.Helper()
	u := &entity.User{Username: username, Email: username + "@example.com", Password: "password1", IsActive: true, IsStaff: staff}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }
