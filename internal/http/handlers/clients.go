package handlers

import (
	"errors"
	"net/http"

	"workflow_api/internal/service"

	"github.com/gin-gonic/gin"
)

const invalidClientID = "Invalid client ID"

func (h *Handler) ListClients(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	clients, err := h.Clients.List(c.Request.Context(), uid)
	if err != nil {
		internalError(c, http.StatusInternalServerError, "Error fetching clients", err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (h *Handler) GetClient(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, invalidClientID)
	if !ok {
		return
	}

	client, err := h.Clients.Get(c.Request.Context(), uid, id)
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			fail(c, http.StatusNotFound, "Client not found")
			return
		}
		internalError(c, http.StatusInternalServerError, "Error fetching client", err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *Handler) CreateClient(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var in service.ClientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	client, err := h.Clients.Create(c.Request.Context(), uid, in)
	if err != nil {
		if validationError(c, err) {
			return
		}
		internalError(c, http.StatusInternalServerError, "Error creating client", err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (h *Handler) UpdateClient(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, invalidClientID)
	if !ok {
		return
	}
	var in service.ClientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	client, err := h.Clients.Update(c.Request.Context(), uid, id, in)
	if err != nil {
		switch {
		case validationError(c, err):
		case errors.Is(err, service.ErrClientNotFound):
			fail(c, http.StatusNotFound, "Client not found")
		default:
			internalError(c, http.StatusInternalServerError, "Error updating client", err)
		}
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *Handler) DeleteClient(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, invalidClientID)
	if !ok {
		return
	}

	if err := h.Clients.Delete(c.Request.Context(), uid, id); err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			fail(c, http.StatusNotFound, "Client not found or unauthorized")
			return
		}
		internalError(c, http.StatusInternalServerError, "Error deleting client", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client deleted successfully"})
}

func (h *Handler) ClientTasks(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, invalidClientID)
	if !ok {
		return
	}

	tasks, err := h.Clients.Tasks(c.Request.Context(), uid, id)
	if err != nil {
		internalError(c, http.StatusInternalServerError, "Error fetching tasks", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}
