package idgen

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheme_Seeds(t *testing.T) {
	assert.Equal(t, "g01", Genre.Next(nil))
	assert.Equal(t, "QFB00001", Question.Next(nil))
	assert.Equal(t, "a000000001", Choice.Next(nil))
}

func TestGenre_Next(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		expected string
	}{
		{"g01..g09", []string{"g01", "g02", "g03", "g04", "g05", "g06", "g07", "g08", "g09"}, "g10"},
		{"pad grows past 99", []string{"g98", "g99"}, "g100"},
		{"string order beats numeric order", []string{"g99", "g100"}, "g100"},
		{"ignores non matching ids", []string{"g05", "gx10", "history", "G42"}, "g06"},
		{"only non matching ids", []string{"genre", "g-1"}, "g01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Genre.Next(tt.existing))
		})
	}
}

func TestQuestion_Next(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		expected string
	}{
		{"increments highest", []string{"QFB00001", "QFB00007", "QFB00003"}, "QFB00008"},
		{"falls back to highest well formed id", []string{"QFB00004", "QFBX"}, "QFB00005"},
		{"no well formed id", []string{"QFBX", "Q1"}, "QFB00001"},
		{"ignores other prefixes", []string{"ZZZ99999", "QFB00010"}, "QFB00011"},
		{"grows beyond pad", []string{"QFB99999"}, "QFB100000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Question.Next(tt.existing))
		})
	}
}

func TestChoice_Next(t *testing.T) {
	assert.Equal(t, "a000000078", Choice.Next([]string{"a000000077", "a000000002"}))
	// a malformed maximum restarts at the seed
	assert.Equal(t, "a000000001", Choice.Next([]string{"a000000077", "abc"}))
}

func TestAllocator_NextClaimsIDs(t *testing.T) {
	a := NewAllocator(Question, []string{"QFB00001"})

	assert.Equal(t, "QFB00002", a.Next())
	assert.Equal(t, "QFB00003", a.Next())
	assert.True(t, a.Has("QFB00003"))
}

func TestAllocator_ClaimExplicitID(t *testing.T) {
	a := NewAllocator(Question, nil)
	assert.Equal(t, "QFB00001", a.Peek())

	a.Claim("QFB00050")

	assert.Equal(t, "QFB00051", a.Next())
}

func TestAllocator_ReleaseMaximum(t *testing.T) {
	a := NewAllocator(Choice, []string{"a000000001", "a000000002", "a000000003"})

	a.Release("a000000003")
	a.Release("a000000002")

	assert.Equal(t, "a000000002", a.Next())
	assert.False(t, a.Has("a000000003"))
}

func TestAllocator_MatchesSchemeNext(t *testing.T) {
	existing := []string{"g01", "g07", "g99", "g100", "misc"}
	a := NewAllocator(Genre, existing)

	for i := 0; i < 5; i++ {
		expected := Genre.Next(keys(a))
		assert.Equal(t, expected, a.Next(), fmt.Sprintf("step %d", i))
	}
}

func keys(a *Allocator) []string {
	out := make([]string, 0, len(a.ids))
	for id := range a.ids {
		out = append(out, id)
	}
	return out
}
