package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizbank-api/internal/middleware"
)

// Router bundles everything RegisterRoutes mounts.
type Router struct {
	Auth        *middleware.AuthMiddleware
	RateLimiter *middleware.RateLimiter

	AuthHandler     *AuthHandler
	GenreHandler    *GenreHandler
	QuestionHandler *QuestionHandler
	UserHandler     *UserHandler
	StatsHandler    *StatsHandler
	TransferHandler *TransferHandler

	// CSVRatePerMinute caps CSV calls per client. Zero uses the default.
	CSVRatePerMinute int
	// MaxUploadMB caps multipart bodies on the CSV endpoints.
	MaxUploadMB int64
}

func limitBody(maxMB int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxMB > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxMB<<20)
		}
		c.Next()
	}
}

// RegisterRoutes mounts the health check, the token endpoint and the admin API.
func RegisterRoutes(router *gin.Engine, r Router) {
	RegisterValidators()

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	api.POST("/auth/token", r.RateLimiter.Limit(middleware.LoginRateLimitConfig()), r.AuthHandler.Token)

	admin := api.Group("/admin")
	admin.Use(r.Auth.RequireAuth(), r.Auth.AdminOnly())
	{
		genres := admin.Group("/genres")
		{
			genres.GET("", r.GenreHandler.List)
			genres.POST("", r.GenreHandler.Create)
			genres.GET("/:id", r.GenreHandler.Get)
			genres.PUT("/:id", r.GenreHandler.Update)
			genres.PATCH("/:id", r.GenreHandler.Update)
			genres.DELETE("/:id", r.GenreHandler.Delete)
		}

		questions := admin.Group("/questions")
		{
			questions.GET("", r.QuestionHandler.List)
			questions.POST("", r.QuestionHandler.Create)
			questions.POST("/bulk-action", r.QuestionHandler.BulkAction)
			questions.POST("/bulk-update", r.QuestionHandler.BulkUpdate)
			questions.GET("/:id", r.QuestionHandler.Get)
			questions.PUT("/:id", r.QuestionHandler.Update)
			questions.PATCH("/:id", r.QuestionHandler.Update)
			questions.DELETE("/:id", r.QuestionHandler.Delete)
		}

		users := admin.Group("/users")
		{
			users.GET("", r.UserHandler.List)
			users.GET("/progress", r.StatsHandler.UserProgressList)

			userWithID := users.Group("/:id")
			userWithID.Use(middleware.ExtractUintParam("id", userIDKey))
			{
				userWithID.GET("", r.UserHandler.Get)
				userWithID.PUT("", r.UserHandler.Update)
				userWithID.PATCH("", r.UserHandler.Update)
				userWithID.GET("/progress", r.StatsHandler.UserProgressDetail)
			}
		}

		admin.GET("/stats", r.StatsHandler.Overview)
		admin.GET("/stats/users", r.StatsHandler.FleetStats)

		csv := admin.Group("/csv")
		csv.Use(r.RateLimiter.Limit(middleware.CSVRateLimitConfig(r.CSVRatePerMinute)))
		{
			csv.GET("/export", r.TransferHandler.Export)
			csv.POST("/import", limitBody(r.MaxUploadMB), r.TransferHandler.Import)
			csv.POST("/delete", limitBody(r.MaxUploadMB), r.TransferHandler.Delete)
		}
	}
}
