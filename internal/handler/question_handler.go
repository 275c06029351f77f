package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizbank-api/internal/domain/repository"
	"github.com/yourusername/quizbank-api/internal/handler/dto"
	"github.com/yourusername/quizbank-api/internal/middleware"
	"github.com/yourusername/quizbank-api/internal/service"
)

// QuestionHandler serves the question admin endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

func queryBool(c *gin.Context, key string) *bool {
	raw, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	v := strings.EqualFold(raw, "true")
	return &v
}

// List returns questions newest first, narrowed by the query filters.
func (h *QuestionHandler) List(c *gin.Context) {
	filter := repository.QuestionFilter{
		GenreID:    c.Query("genre"),
		Search:     c.Query("search"),
		IsActive:   queryBool(c, "is_active"),
		Unreviewed: queryBool(c, "reviewed_at__isnull"),
	}
	if raw := c.Query("difficulty"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "difficulty must be an integer")
			return
		}
		filter.Difficulty = &d
	}

	questions, err := h.questionService.List(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuestionListResponse(questions))
}

func choiceInputs(in []dto.ChoiceRequest) []service.ChoiceInput {
	out := make([]service.ChoiceInput, 0, len(in))
	for _, ch := range in {
		out = append(out, service.ChoiceInput{
			Content:    ch.Content,
			IsCorrect:  ch.IsCorrect,
			OrderIndex: ch.OrderIndex,
		})
	}
	return out
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// Create stores a question authored by the caller.
func (h *QuestionHandler) Create(c *gin.Context) {
	var req dto.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	in := service.QuestionInput{
		ID:            req.ID,
		GenreID:       deref(req.Genre),
		Difficulty:    deref(req.Difficulty),
		Title:         deref(req.Title),
		Body:          deref(req.Body),
		Clarification: deref(req.Clarification),
		IsActive:      req.IsActive,
		ReviewedAt:    req.ReviewedAt.Value,
	}
	if req.Choices != nil {
		in.Choices = choiceInputs(*req.Choices)
	}

	q, err := h.questionService.Create(c.Request.Context(), in, middleware.CurrentUser(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewQuestionResponse(q))
}

// Get returns one question with its choices.
func (h *QuestionHandler) Get(c *gin.Context) {
	q, err := h.questionService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuestionResponse(q))
}

// Update handles PUT and PATCH. Choices are replaced only when the body
// carries a choices key. PUT requires genre, difficulty and title.
func (h *QuestionHandler) Update(c *gin.Context) {
	var req dto.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if c.Request.Method == http.MethodPut && (req.Genre == nil || req.Difficulty == nil || req.Title == nil) {
		badRequest(c, "genre, difficulty and title are required")
		return
	}

	patch := service.QuestionPatch{
		GenreID:       req.Genre,
		Difficulty:    req.Difficulty,
		Title:         req.Title,
		Body:          req.Body,
		Clarification: req.Clarification,
		IsActive:      req.IsActive,
		SetReviewedAt: req.ReviewedAt.Set,
		ReviewedAt:    req.ReviewedAt.Value,
	}
	if req.Choices != nil {
		choices := choiceInputs(*req.Choices)
		patch.Choices = &choices
	}

	q, err := h.questionService.Update(c.Request.Context(), c.Param("id"), patch, middleware.CurrentUser(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuestionResponse(q))
}

// Delete removes a question and its choices.
func (h *QuestionHandler) Delete(c *gin.Context) {
	if err := h.questionService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BulkAction activates, deactivates or deletes a list of questions.
func (h *QuestionHandler) BulkAction(c *gin.Context) {
	var req dto.BulkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	msg, err := h.questionService.BulkAction(c.Request.Context(), req.Action, req.QuestionIDs)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// BulkUpdate sets genre, difficulty or review status on a list of questions.
func (h *QuestionHandler) BulkUpdate(c *gin.Context) {
	var req dto.BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if len(req.QuestionIDs) == 0 || len(req.Updates) == 0 {
		badRequest(c, "question_ids and updates are required")
		return
	}
	upd, err := decodeBulkUpdate(req.Updates)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	msg, err := h.questionService.BulkUpdate(c.Request.Context(), req.QuestionIDs, upd)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// decodeBulkUpdate reads the recognised keys of an updates object. Unknown
// keys are ignored. A difficulty that is not an integer becomes 0 so the
// service rejects it with the difficulty rule.
func decodeBulkUpdate(raw map[string]json.RawMessage) (service.BulkUpdateInput, error) {
	var upd service.BulkUpdateInput

	if v, ok := raw["genre"]; ok {
		var genre string
		if err := json.Unmarshal(v, &genre); err != nil {
			return upd, errors.New("genre must be a string")
		}
		upd.GenreID = &genre
	}

	if v, ok := raw["difficulty"]; ok {
		d := 0
		var n int
		if err := json.Unmarshal(v, &n); err == nil {
			d = n
		}
		upd.Difficulty = &d
	}

	if v, ok := raw["reviewed_at"]; ok {
		upd.SetReviewedAt = true
		if string(v) != "null" {
			var t time.Time
			if err := json.Unmarshal(v, &t); err != nil {
				return upd, errors.New("reviewed_at must be null or an RFC 3339 timestamp")
			}
			upd.ReviewedAt = &t
		}
	}
	return upd, nil
}
