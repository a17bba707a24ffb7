package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leadrelay/leadrelay/internal/api/middleware"
	"github.com/leadrelay/leadrelay/internal/repository"
)

// UserHandler handles user profile endpoints.
type UserHandler struct {
	users *repository.UserRepository
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users *repository.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// Me handles GET /api/v1/users/me.
func (h *UserHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

// Get handles GET /api/v1/users/:id. Users may only read their own profile.
func (h *UserHandler) Get(c *gin.Context) {
	id := c.Param("id")
	current := middleware.CurrentUser(c)
	if current.ID != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to read this profile"})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}
