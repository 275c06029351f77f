package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizbank-api/internal/service"
)

// StatsHandler serves the statistics endpoints.
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// Overview returns the global counts.
func (h *StatsHandler) Overview(c *gin.Context) {
	out, err := h.statsService.Overview(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// UserProgressList summarises the progress of every active user.
func (h *StatsHandler) UserProgressList(c *gin.Context) {
	out, err := h.statsService.UserProgressList(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// UserProgressDetail reports the progress of one user.
func (h *StatsHandler) UserProgressDetail(c *gin.Context) {
	out, err := h.statsService.UserProgressDetail(c.Request.Context(), c.MustGet(userIDKey).(uint))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// FleetStats aggregates activity over the last ?days days.
func (h *StatsHandler) FleetStats(c *gin.Context) {
	days := h.statsService.DefaultWindowDays()
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "days must be an integer")
			return
		}
		days = n
	}
	out, err := h.statsService.FleetStats(c.Request.Context(), days)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
