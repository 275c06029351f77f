package dto

import (
	"time"

	"github.com/yourusername/quizbank-api/internal/domain/entity"
)

// GenreRequest is the body of genre create and update calls.
type GenreRequest struct {
	ID          string  `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// GenreResponse is a genre as returned by the admin API.
type GenreResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	QuestionCount int64     `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewGenreResponse converts a genre.
func NewGenreResponse(g *entity.Genre) GenreResponse {
	return GenreResponse{
		ID:            g.ID,
		Name:          g.Name,
		Description:   g.Description,
		QuestionCount: g.QuestionCount,
		CreatedAt:     g.CreatedAt,
	}
}

// NewGenreListResponse converts a list of genres.
func NewGenreListResponse(genres []entity.Genre) []GenreResponse {
	out := make([]GenreResponse, 0, len(genres))
	for i := range genres {
		out = append(out, NewGenreResponse(&genres[i]))
	}
	return out
}
