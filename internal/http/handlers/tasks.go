package handlers

import (
	"errors"
	"net/http"

	"workflow_api/internal/service"

	"github.com/gin-gonic/gin"
)

const invalidTaskID = "Invalid task ID"

func (h *Handler) CreateTask(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var in service.CreateTaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	task, err := h.Tasks.Create(c.Request.Context(), uid, in)
	if err != nil {
		if validationError(c, err) {
			return
		}
		internalError(c, http.StatusInternalServerError, "Failed to create task", err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *Handler) ListTasks(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var in service.ListTasksInput
	if err := c.ShouldBindQuery(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	page, err := h.Tasks.List(c.Request.Context(), uid, in)
	if err != nil {
		if validationError(c, err) {
			return
		}
		internalError(c, http.StatusInternalServerError, "Failed to fetch tasks", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) GetTask(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, invalidTaskID)
	if !ok {
		return
	}

	task, err := h.Tasks.Get(c.Request.Context(), uid, id)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			fail(c, http.StatusNotFound, "Task not found")
			return
		}
		internalError(c, http.StatusInternalServerError, "Failed to fetch task", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) UpdateTask(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, invalidTaskID)
	if !ok {
		return
	}
	var in service.UpdateTaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	task, err := h.Tasks.Update(c.Request.Context(), uid, id, in)
	if err != nil {
		switch {
		case validationError(c, err):
		case errors.Is(err, service.ErrTaskNotFound):
			fail(c, http.StatusNotFound, "Task not found or unauthorized")
		default:
			internalError(c, http.StatusInternalServerError, "Error updating task", err)
		}
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, invalidTaskID)
	if !ok {
		return
	}

	if err := h.Tasks.Delete(c.Request.Context(), uid, id); err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			fail(c, http.StatusNotFound, "Task not found or not authorized")
			return
		}
		internalError(c, http.StatusInternalServerError, "Failed to delete task", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
