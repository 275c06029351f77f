package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizbank-api/internal/domain/repository"
	"github.com/yourusername/quizbank-api/internal/handler/dto"
	"github.com/yourusername/quizbank-api/internal/service"
)

const userIDKey = "userID"

// UserHandler serves the account admin endpoints.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List returns accounts newest first.
func (h *UserHandler) List(c *gin.Context) {
	filter := repository.UserFilter{
		Search:   c.Query("search"),
		IsActive: queryBool(c, "is_active"),
		IsStaff:  queryBool(c, "is_staff"),
	}
	users, err := h.userService.List(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserListResponse(users))
}

// Get returns one account.
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), c.MustGet(userIDKey).(uint))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// Update changes profile fields and flags of an account.
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	user, err := h.userService.Update(c.Request.Context(), c.MustGet(userIDKey).(uint), service.UserPatch{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  req.IsActive,
		IsStaff:   req.IsStaff,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}
