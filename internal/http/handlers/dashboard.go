package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) DashboardStats(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	stats, err := h.Dashboard.Stats(c.Request.Context(), uid)
	if err != nil {
		internalError(c, http.StatusInternalServerError, "Failed to fetch dashboard statistics", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) Upcoming(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	tasks, err := h.Dashboard.Upcoming(c.Request.Context(), uid)
	if err != nil {
		internalError(c, http.StatusInternalServerError, "Failed to fetch upcoming deadlines", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}
