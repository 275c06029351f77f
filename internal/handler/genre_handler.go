package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizbank-api/internal/handler/dto"
	"github.com/yourusername/quizbank-api/internal/service"
)

// GenreHandler serves the genre admin endpoints.
type GenreHandler struct {
	genreService *service.GenreService
}

// NewGenreHandler creates a GenreHandler.
func NewGenreHandler(genreService *service.GenreService) *GenreHandler {
	return &GenreHandler{genreService: genreService}
}

// List returns every genre ordered by name.
func (h *GenreHandler) List(c *gin.Context) {
	genres, err := h.genreService.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewGenreListResponse(genres))
}

// Create stores a genre, generating its id when none is given.
func (h *GenreHandler) Create(c *gin.Context) {
	var req dto.GenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	var name, desc string
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		desc = *req.Description
	}
	genre, err := h.genreService.Create(c.Request.Context(), req.ID, name, desc)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewGenreResponse(genre))
}

// Get returns one genre.
func (h *GenreHandler) Get(c *gin.Context) {
	genre, err := h.genreService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewGenreResponse(genre))
}

// Update changes name and description. PUT requires the name.
func (h *GenreHandler) Update(c *gin.Context) {
	var req dto.GenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if c.Request.Method == http.MethodPut && req.Name == nil {
		badRequest(c, "name is required")
		return
	}
	genre, err := h.genreService.Update(c.Request.Context(), c.Param("id"), req.Name, req.Description)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewGenreResponse(genre))
}

// Delete removes the genre with every question it owns.
func (h *GenreHandler) Delete(c *gin.Context) {
	if err := h.genreService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
