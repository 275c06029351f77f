package entity

import (
	"sort"
	"time"
)

// Difficulty levels of a question.
const (
	DifficultyElementary   = 1
	DifficultyIntermediate = 2
	DifficultyAdvanced     = 3
)

var difficultyLabels = map[int]string{
	DifficultyElementary:   "Elementary",
	DifficultyIntermediate: "Intermediate",
	DifficultyAdvanced:     "Advanced",
}

// IsValidDifficulty reports whether d is one of the three supported levels.
func IsValidDifficulty(d int) bool {
	_, ok := difficultyLabels[d]
	return ok
}

// DifficultyLabel returns the display label for d, or "" when d is unknown.
func DifficultyLabel(d int) string {
	if label, ok := difficultyLabels[d]; ok {
		return label
	}
	return ""
}

// Question is a quiz item owned by a genre. It owns its choices.
type Question struct {
	ID            string     `gorm:"primaryKey;size:20" json:"id"`
	GenreID       string     `gorm:"size:10;not null;index" json:"genre"`
	Genre         *Genre     `gorm:"foreignKey:GenreID" json:"-"`
	Difficulty    int        `gorm:"not null" json:"difficulty"`
	Title         string     `gorm:"type:text;not null" json:"title"`
	Body          string     `gorm:"type:text;not null;default:''" json:"body"`
	Clarification string     `gorm:"type:text;not null;default:''" json:"clarification"`
	AuthorID      *uint      `gorm:"index" json:"-"`
	Author        *User      `gorm:"foreignKey:AuthorID" json:"-"`
	ModifierID    *uint      `gorm:"index" json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ReviewedAt    *time.Time `json:"reviewed_at"`
	IsActive      bool       `gorm:"not null" json:"is_active"`
	Choices       []Choice   `gorm:"foreignKey:QuestionID" json:"choices"`
}

// TableName returns the GORM table name.
func (Question) TableName() string {
	return "questions"
}

// DifficultyDisplay returns the label of the question's difficulty.
func (q *Question) DifficultyDisplay() string {
	return DifficultyLabel(q.Difficulty)
}

// GenreName returns the owning genre's name when it was loaded.
func (q *Question) GenreName() string {
	if q.Genre == nil {
		return ""
	}
	return q.Genre.Name
}

// AuthorName returns the author's username, or "" when the author is unknown or deleted.
func (q *Question) AuthorName() string {
	if q.Author == nil {
		return ""
	}
	return q.Author.Username
}

// IsReviewed reports whether the question has passed review.
func (q *Question) IsReviewed() bool {
	return q.ReviewedAt != nil
}

// OrderedChoices returns a copy of the choices sorted by OrderIndex.
// Equal indexes keep their stored order.
func (q *Question) OrderedChoices() []Choice {
	out := make([]Choice, len(q.Choices))
	copy(out, q.Choices)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderIndex < out[j].OrderIndex
	})
	return out
}
