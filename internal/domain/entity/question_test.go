package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDifficultyLabel(t *testing.T) {
	assert.Equal(t, "Elementary", DifficultyLabel(1))
	assert.Equal(t, "Intermediate", DifficultyLabel(2))
	assert.Equal(t, "Advanced", DifficultyLabel(3))
	assert.Equal(t, "", DifficultyLabel(4))
}

func TestIsValidDifficulty(t *testing.T) {
	for _, d := range []int{1, 2, 3} {
		assert.True(t, IsValidDifficulty(d), "difficulty %d", d)
	}
	for _, d := range []int{0, -1, 4, 5} {
		assert.False(t, IsValidDifficulty(d), "difficulty %d", d)
	}
}

func TestQuestion_OrderedChoices(t *testing.T) {
	q := &Question{
		ID: "QFB00001",
		Choices: []Choice{
			{ID: "a000000003", OrderIndex: 2},
			{ID: "a000000001", OrderIndex: 0},
			{ID: "a000000004", OrderIndex: 1},
			{ID: "a000000002", OrderIndex: 1},
		},
	}

	ordered := q.OrderedChoices()

	require.Len(t, ordered, 4)
	ids := []string{ordered[0].ID, ordered[1].ID, ordered[2].ID, ordered[3].ID}
	assert.Equal(t, []string{"a000000001", "a000000004", "a000000002", "a000000003"}, ids)
	// the stored slice is left untouched
	assert.Equal(t, "a000000003", q.Choices[0].ID)
}

func TestQuestion_DisplayHelpers(t *testing.T) {
	now := time.Now()
	q := &Question{
		Difficulty: DifficultyAdvanced,
		Genre:      &Genre{ID: "g01", Name: "Networking"},
		Author:     &User{Username: "alice"},
		ReviewedAt: &now,
	}

	assert.Equal(t, "Advanced", q.DifficultyDisplay())
	assert.Equal(t, "Networking", q.GenreName())
	assert.Equal(t, "alice", q.AuthorName())
	assert.True(t, q.IsReviewed())

	empty := &Question{}
	assert.Equal(t, "", empty.GenreName())
	assert.Equal(t, "", empty.AuthorName())
	assert.False(t, empty.IsReviewed())
}
