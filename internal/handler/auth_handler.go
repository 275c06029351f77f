package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/quizbank-api/internal/domain/entity"
	"github.com/yourusername/quizbank-api/internal/handler/dto"
	"github.com/yourusername/quizbank-api/internal/logger"
	"github.com/yourusername/quizbank-api/internal/service"
)

// TokenIssuer mints access tokens.
type TokenIssuer interface {
	GenerateToken(user *entity.User) (string, time.Time, error)
}

// AuthHandler exchanges staff credentials for an access token.
type AuthHandler struct {
	userService *service.UserService
	tokens      TokenIssuer
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(userService *service.UserService, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{userService: userService, tokens: tokens}
}

// Token checks username and password and returns a bearer token. Only staff
// accounts may sign in.
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	if !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin rights required"})
		return
	}

	token, expires, err := h.tokens.GenerateToken(user)
	if err != nil {
		handleError(c, err)
		return
	}
	logger.Get().Info("admin token issued", zap.Uint("user_id", user.ID))
	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expires,
		User:        dto.NewUserResponse(user),
	})
}
