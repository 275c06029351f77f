package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizbank-api/internal/domain/entity"
	"github.com/yourusername/quizbank-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizbank-api/internal/pkg/errors"
)

func seed(t *testing.T) (*Store, *GenreRepo, *QuestionRepo) {
	t.Helper()
	ctx := context.Background()
	s := NewStore()
	genres := NewGenreRepo(s)
	questions := NewQuestionRepo(s)

	require.NoError(t, genres.Create(ctx, &entity.Genre{ID: "g01", Name: "Networks"}))
	require.NoError(t, genres.Create(ctx, &entity.Genre{ID: "g02", Name: "Databases"}))
	require.NoError(t, questions.Create(ctx, &entity.Question{
		ID: "QFB00001", GenreID: "g01", Difficulty: 1, Title: "Routing", IsActive: true,
		Choices: []entity.Choice{
			{ID: "a000000001", Content: "yes", IsCorrect: true, OrderIndex: 0},
			{ID: "a000000002", Content: "no", OrderIndex: 1},
		},
	}))
	require.NoError(t, questions.Create(ctx, &entity.Question{
		ID: "QFB00002", GenreID: "g02", Difficulty: 2, Title: "Indexes", Body: "B-tree?", IsActive: false,
		Choices: []entity.Choice{{ID: "a000000003", Content: "B-tree", OrderIndex: 0}},
	}))
	return s, genres, questions
}

func TestGenreRepo_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	s, genres, questions := seed(t)
	s.AddAttempt(entity.UserAttempt{UserID: 1, QuestionID: "QFB00001", AttemptTime: time.Now()})

	require.NoError(t, genres.Delete(ctx, "g01"))

	_, err := questions.GetByID(ctx, "QFB00001")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	choiceIDs, err := questions.ListChoiceIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a000000003"}, choiceIDs)
	counts, err := NewProgressRepo(s).CountAttempts(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, counts.Total)

	assert.ErrorIs(t, genres.Delete(ctx, "g01"), apperrors.ErrNotFound)
}

func TestGenreRepo_ListCountsQuestions(t *testing.T) {
	_, genres, _ := seed(t)

	list, err := genres.List(context.Background())

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Databases", list[0].Name)
	assert.Equal(t, int64(1), list[0].QuestionCount)
	assert.Equal(t, int64(1), list[1].QuestionCount)
}

func TestGenreRepo_CreateConflict(t *testing.T) {
	_, genres, _ := seed(t)

	err := genres.Create(context.Background(), &entity.Genre{ID: "g01", Name: "dup"})

	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestQuestionRepo_GetByIDHydrates(t *testing.T) {
	_, _, questions := seed(t)

	q, err := questions.GetByID(context.Background(), "QFB00001")

	require.NoError(t, err)
	require.NotNil(t, q.Genre)
	assert.Equal(t, "Networks", q.Genre.Name)
	require.Len(t, q.Choices, 2)
	assert.Equal(t, "yes", q.Choices[0].Content)
	assert.Equal(t, "QFB00001", q.Choices[0].QuestionID)
}

func TestQuestionRepo_UpsertPreservesAuthorAndReplacesChoices(t *testing.T) {
	ctx := context.Background()
	s, _, questions := seed(t)
	users := NewUserRepo(s)
	author := &entity.User{Username: "alice", Password: "pw"}
	require.NoError(t, users.Create(ctx, author))

	reviewed := time.Now()
	require.NoError(t, questions.Create(ctx, &entity.Question{
		ID: "QFB00003", GenreID: "g01", Difficulty: 1, Title: "Routing", IsActive: true,
		AuthorID: &author.ID, ReviewedAt: &reviewed,
		Choices: []entity.Choice{{ID: "a000000005", Content: "yes", OrderIndex: 0}},
	}))

	created, err := questions.Upsert(ctx, &entity.Question{
		ID: "QFB00003", GenreID: "g02", Difficulty: 3, Title: "Routing v2", IsActive: false,
		Choices: []entity.Choice{{ID: "a000000004", Content: "maybe", OrderIndex: 0}},
	})
	require.NoError(t, err)
	assert.False(t, created)

	got, err := questions.GetByID(ctx, "QFB00003")
	require.NoError(t, err)
	assert.Equal(t, "g02", got.GenreID)
	assert.Equal(t, "Routing v2", got.Title)
	assert.False(t, got.IsActive)
	assert.Equal(t, "alice", got.AuthorName())
	assert.NotNil(t, got.ReviewedAt)
	require.Len(t, got.Choices, 1)
	assert.Equal(t, "a000000004", got.Choices[0].ID)

	list, err := questions.List(ctx, repository.QuestionFilter{GenreID: "g02"})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestQuestionRepo_ListFilters(t *testing.T) {
	ctx := context.Background()
	_, _, questions := seed(t)
	active := true
	diff := 2
	unreviewed := true

	byActive, err := questions.List(ctx, repository.QuestionFilter{IsActive: &active})
	require.NoError(t, err)
	require.Len(t, byActive, 1)
	assert.Equal(t, "QFB00001", byActive[0].ID)

	byDifficulty, err := questions.List(ctx, repository.QuestionFilter{Difficulty: &diff})
	require.NoError(t, err)
	require.Len(t, byDifficulty, 1)
	assert.Equal(t, "QFB00002", byDifficulty[0].ID)

	bySearch, err := questions.List(ctx, repository.QuestionFilter{Search: "b-TREE"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)

	all, err := questions.List(ctx, repository.QuestionFilter{Unreviewed: &unreviewed})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestQuestionRepo_BulkOperations(t *testing.T) {
	ctx := context.Background()
	_, _, questions := seed(t)
	ids := []string{"QFB00001", "QFB00002", "QFB09999"}

	n, err := questions.SetActive(ctx, ids, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	active, err := questions.Count(ctx, true)
	require.NoError(t, err)
	assert.Zero(t, active)

	genre := "g02"
	n, err = questions.BulkUpdate(ctx, ids, repository.QuestionBulkUpdate{GenreID: &genre})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	missing := "g99"
	_, err = questions.BulkUpdate(ctx, ids, repository.QuestionBulkUpdate{GenreID: &missing})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	n, err = questions.DeleteByIDs(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	choiceIDs, err := questions.ListChoiceIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, choiceIDs)
}

func TestUserRepo_CreateHashesAndFilters(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepo(NewStore())
	staff := &entity.User{Username: "admin", Email: "admin@example.com", Password: "secret", IsActive: true, IsStaff: true}
	require.NoError(t, users.Create(ctx, staff))
	require.NoError(t, users.Create(ctx, &entity.User{Username: "bob", IsActive: false}))

	assert.True(t, staff.CheckPassword("secret"))
	assert.ErrorIs(t, users.Create(ctx, &entity.User{Username: "admin"}), apperrors.ErrConflict)

	isStaff := true
	list, err := users.List(ctx, repository.UserFilter{IsStaff: &isStaff})
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = users.List(ctx, repository.UserFilter{Search: "EXAMPLE"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	activeCount, err := users.Count(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), activeCount)

	require.NoError(t, users.UpdatePassword(ctx, staff.ID, "new-secret"))
	got, err := users.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, got.CheckPassword("new-secret"))
}
