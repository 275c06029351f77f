package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizbank-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizbank-api/internal/pkg/errors"
	"github.com/yourusername/quizbank-api/pkg/auth"
)

type stubTokens map[string]uint

func (s stubTokens) ParseToken(token string) (*auth.JWTCustomClaims, error) {
	if token == "expired" {
		return nil, apperrors.ErrExpiredToken
	}
	id, ok := s[token]
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	return &auth.JWTCustomClaims{UserID: id}, nil
}

type stubUsers map[uint]*entity.User

func (s stubUsers) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return u, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter() *gin.Engine {
	tokens := stubTokens{"admin": 1, "learner": 2, "disabled": 3, "ghost": 9}
	users := stubUsers{
		1: {ID: 1, Username: "root", IsActive: true, IsStaff: true},
		2: {ID: 2, Username: "alice", IsActive: true},
		3: {ID: 3, Username: "bob", IsActive: false, IsStaff: true},
	}
	m := NewAuthMiddleware(tokens, users)

	r := gin.New()
	r.GET("/admin", m.RequireAuth(), m.AdminOnly(), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Username)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := newAuthRouter()

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"staff passes", "Bearer admin", http.StatusOK, "root"},
		{"lowercase scheme", "bearer admin", http.StatusOK, "root"},
		{"missing header", "", http.StatusUnauthorized, "token_missing"},
		{"wrong scheme", "Basic admin", http.StatusUnauthorized, "token_missing"},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, "token_invalid"},
		{"expired token", "Bearer expired", http.StatusUnauthorized, "token_expired"},
		{"deleted user", "Bearer ghost", http.StatusUnauthorized, "user_inactive"},
		{"inactive user", "Bearer disabled", http.StatusUnauthorized, "user_inactive"},
		{"non staff", "Bearer learner", http.StatusForbidden, "Admin rights required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestExtractUintParam(t *testing.T) {
	r := gin.New()
	r.GET("/users/:id", ExtractUintParam("id", "uid"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.MustGet("uid").(uint)})
	})

	for path, want := range map[string]int{
		"/users/12":  http.StatusOK,
		"/users/0":   http.StatusBadRequest,
		"/users/abc": http.StatusBadRequest,
		"/users/-1":  http.StatusBadRequest,
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	for _, rl := range []*RateLimiter{nil, NewRateLimiter(nil), NewRateLimiter(client)} {
		r := gin.New()
		r.GET("/csv", rl.Limit(CSVRateLimitConfig(1)), func(c *gin.Context) { c.Status(http.StatusOK) })

		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/csv", nil))
			require.Equal(t, http.StatusOK, w.Code)
		}
	}
}

func TestCSVRateLimitConfigDefault(t *testing.T) {
	assert.Equal(t, 10, CSVRateLimitConfig(0).MaxRequests)
	assert.Equal(t, 3, CSVRateLimitConfig(3).MaxRequests)
}
