package handlers

import (
	"net/http"
	"strconv"

	"workflow_api/internal/http/middleware"
	"workflow_api/internal/logger"
	"workflow_api/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Auth      *service.AuthService
	Clients   *service.ClientService
	Tasks     *service.TaskService
	Dashboard *service.DashboardService
}

func NewHandler(auth *service.AuthService, clients *service.ClientService, tasks *service.TaskService, dashboard *service.DashboardService) *Handler {
	return &Handler{Auth: auth, Clients: clients, Tasks: tasks, Dashboard: dashboard}
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}

// internalError logs err against the request and answers with a fixed message.
func internalError(c *gin.Context, status int, msg string, err error) {
	args := []any{"error", err, "path", c.FullPath()}
	if uid, ok := middleware.UserID(c); ok {
		args = append(args, "user_id", uid)
	}
	logger.FromContext(c.Request.Context()).Error(msg, args...)
	fail(c, status, msg)
}

// userID is the owner for every scoped route; JWT has already run.
func userID(c *gin.Context) (int64, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "Invalid token")
	}
	return id, ok
}

func pathID(c *gin.Context, msg string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, msg)
		return 0, false
	}
	return id, true
}

// validationError answers 400 with the service message when err is a
// validation failure.
func validationError(c *gin.Context, err error) bool {
	if service.IsValidation(err) {
		fail(c, http.StatusBadRequest, err.Error())
		return true
	}
	return false
}
