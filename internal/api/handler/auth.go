package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/leadrelay/leadrelay/internal/auth"
	"github.com/leadrelay/leadrelay/internal/domain"
	"github.com/leadrelay/leadrelay/internal/logger"
	"github.com/leadrelay/leadrelay/internal/repository"
)

// AuthHandler handles registration and token issuance.
type AuthHandler struct {
	users  *repository.UserRepository
	issuer *auth.TokenIssuer
}

// NewAuthHandler creates a new auth handler.
// Parameters:
//   - users: user repository.
//   - issuer: token issuer.
//
// Returns:
//   - *AuthHandler: initialized handler.
func NewAuthHandler(users *repository.UserRepository, issuer *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{
		users:  users,
		issuer: issuer,
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type tokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid registration payload: " + err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	exists, err := h.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check username"})
		return
	}
	if exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username already registered"})
		return
	}

	exists, err = h.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check email"})
		return
	}
	if exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := &domain.User{
		ID:             uuid.New().String(),
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashed,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := h.users.Create(ctx, user); err != nil {
		logger.CtxError(ctx, "Failed to create user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	logger.CtxInfo(ctx, "User registered: username=%s", user.Username)
	c.JSON(http.StatusOK, user)
}

// Token handles POST /api/v1/auth/token. It verifies credentials and
// returns a signed bearer token.
func (h *AuthHandler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid credentials payload: " + err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	user, err := h.users.GetByUsername(ctx, req.Username)
	if err != nil || !auth.CheckPassword(user.HashedPassword, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect username or password"})
		return
	}

	token, err := h.issuer.Issue(user.Username)
	if err != nil {
		logger.CtxError(ctx, "Failed to issue token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
	})
}
