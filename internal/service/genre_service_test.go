package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/quizbank-api/internal/pkg/errors"
)

func TestGenreService_CreateGeneratesID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	g1, err := f.genreSvc.Create(ctx, "", "Networks", "")
	require.NoError(t, err)
	g2, err := f.genreSvc.Create(ctx, "  ", "Databases", "SQL and friends")
	require.NoError(t, err)
	custom, err := f.genreSvc.Create(ctx, "misc", "Misc", "")
	require.NoError(t, err)
	g3, err := f.genreSvc.Create(ctx, "", "Security", "")
	require.NoError(t, err)

	assert.Equal(t, "g01", g1.ID)
	assert.Equal(t, "g02", g2.ID)
	assert.Equal(t, "misc", custom.ID)
	assert.Equal(t, "g03", g3.ID)
}

func TestGenreService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.genreSvc.Create(ctx, "", " ", "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.genreSvc.Create(ctx, "g0000000001", "Too long id", "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.genreSvc.Create(ctx, "g01", "One", "")
	require.NoError(t, err)
	_, err = f.genreSvc.Create(ctx, "g01", "Again", "")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestGenreService_Update(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.genre(t, "g01", "Networks")

	g, err := f.genreSvc.Update(ctx, "g01", nil, strPtr("Routing and switching"))
	require.NoError(t, err)
	assert.Equal(t, "Networks", g.Name)
	assert.Equal(t, "Routing and switching", g.Description)

	_, err = f.genreSvc.Update(ctx, "g01", strPtr(""), nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.genreSvc.Update(ctx, "g09", strPtr("x"), nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGenreService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seedQuestions(t, f)

	require.NoError(t, f.genreSvc.Delete(ctx, "g01"))

	count, err := f.questions.Count(ctx, false)
	require.NoError(t, err)
	assert.Zero(t, count)
	choiceIDs, err := f.questions.ListChoiceIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, choiceIDs)
	assert.ErrorIs(t, f.genreSvc.Delete(ctx, "g01"), apperrors.ErrNotFound)
}
