package dto

import (
	"encoding/json"
	"time"

	"github.com/yourusername/quizbank-api/internal/domain/entity"
)

// ChoiceRequest is a submitted choice. A client supplied id is ignored.
type ChoiceRequest struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	IsCorrect  bool   `json:"is_correct"`
	OrderIndex int    `json:"order_index"`
}

// QuestionRequest is the body of question create, PUT and PATCH calls.
type QuestionRequest struct {
	ID            string           `json:"id"`
	Genre         *string          `json:"genre"`
	Difficulty    *int             `json:"difficulty" binding:"omitempty,difficulty"`
	Title         *string          `json:"title"`
	Body          *string          `json:"body"`
	Clarification *string          `json:"clarification"`
	IsActive      *bool            `json:"is_active"`
	ReviewedAt    NullableTime     `json:"reviewed_at"`
	Choices       *[]ChoiceRequest `json:"choices"`
}

// BulkActionRequest is the body of POST /questions/bulk-action.
type BulkActionRequest struct {
	Action      string   `json:"action"`
	QuestionIDs []string `json:"question_ids"`
}

// BulkUpdateRequest is the body of POST /questions/bulk-update. Updates is
// kept raw so a null reviewed_at can be told apart from a missing one.
type BulkUpdateRequest struct {
	QuestionIDs []string                   `json:"question_ids"`
	Updates     map[string]json.RawMessage `json:"updates"`
}

// ChoiceResponse is a choice as returned by the admin API.
type ChoiceResponse struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	IsCorrect  bool   `json:"is_correct"`
	OrderIndex int    `json:"order_index"`
}

// QuestionResponse is a question with its choices.
type QuestionResponse struct {
	ID                string           `json:"id"`
	Genre             string           `json:"genre"`
	GenreName         string           `json:"genre_name"`
	Difficulty        int              `json:"difficulty"`
	DifficultyDisplay string           `json:"difficulty_display"`
	Title             string           `json:"title"`
	Body              string           `json:"body"`
	Clarification     string           `json:"clarification"`
	Choices           []ChoiceResponse `json:"choices"`
	AuthorName        *string          `json:"author_name"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	ReviewedAt        *time.Time       `json:"reviewed_at"`
	IsActive          bool             `json:"is_active"`
}

// NewQuestionResponse converts a question loaded with its associations.
func NewQuestionResponse(q *entity.Question) QuestionResponse {
	choices := q.OrderedChoices()
	resp := QuestionResponse{
		ID:                q.ID,
		Genre:             q.GenreID,
		GenreName:         q.GenreName(),
		Difficulty:        q.Difficulty,
		DifficultyDisplay: q.DifficultyDisplay(),
		Title:             q.Title,
		Body:              q.Body,
		Clarification:     q.Clarification,
		Choices:           make([]ChoiceResponse, 0, len(choices)),
		CreatedAt:         q.CreatedAt,
		UpdatedAt:         q.UpdatedAt,
		ReviewedAt:        q.ReviewedAt,
		IsActive:          q.IsActive,
	}
	if name := q.AuthorName(); name != "" {
		resp.AuthorName = &name
	}
	for _, c := range choices {
		resp.Choices = append(resp.Choices, ChoiceResponse{
			ID:         c.ID,
			Content:    c.Content,
			IsCorrect:  c.IsCorrect,
			OrderIndex: c.OrderIndex,
		})
	}
	return resp
}

// NewQuestionListResponse converts a list of questions.
func NewQuestionListResponse(questions []entity.Question) []QuestionResponse {
	out := make([]QuestionResponse, 0, len(questions))
	for i := range questions {
		out = append(out, NewQuestionResponse(&questions[i]))
	}
	return out
}
