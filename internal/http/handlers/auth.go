package handlers

import (
	"errors"
	"net/http"

	"workflow_api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type AuthRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func bindCredentials(c *gin.Context) (AuthRequest, bool) {
	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			fail(c, http.StatusBadRequest, "Username and password are required")
		} else {
			fail(c, http.StatusBadRequest, "Invalid request payload")
		}
		return req, false
	}
	return req, true
}

func (h *Handler) Register(c *gin.Context) {
	req, ok := bindCredentials(c)
	if !ok {
		return
	}

	token, _, err := h.Auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case validationError(c, err):
		case errors.Is(err, service.ErrUsernameTaken):
			fail(c, http.StatusConflict, "Username already exists")
		default:
			internalError(c, http.StatusServiceUnavailable, "User registration failed", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) Login(c *gin.Context) {
	req, ok := bindCredentials(c)
	if !ok {
		return
	}

	token, _, err := h.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case validationError(c, err):
		case errors.Is(err, service.ErrUserNotFound):
			fail(c, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrInvalidPassword):
			fail(c, http.StatusUnauthorized, "Invalid password")
		default:
			internalError(c, http.StatusServiceUnavailable, "Login failed", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Logout has no server-side effect; tokens are stateless.
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *Handler) Me(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	u, err := h.Auth.Me(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			fail(c, http.StatusNotFound, "User not found")
			return
		}
		internalError(c, http.StatusServiceUnavailable, "Could not fetch user info", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": u.ID, "username": u.Username})
}
