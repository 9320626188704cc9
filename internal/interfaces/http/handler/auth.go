package handler

import (
	"time"

	"github.com/fpm2805/ayuda-penco/internal/infrastructure/auth"
	"github.com/gin-gonic/gin"
)

// AdminLogin verifies the admin panel credential
type AdminLogin interface {
	Login(username, password string) (*auth.Token, error)
}

// AuthHandler handles admin authentication
type AuthHandler struct {
	BaseHandler
	admin AdminLogin
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(admin AdminLogin) *AuthHandler {
	return &AuthHandler{admin: admin}
}

// LoginRequest represents the request body for admin login
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"required,max=128"`
}

// TokenResponse represents the token data of a successful login
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	token, err := h.admin.Login(req.Username, req.Password)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, TokenResponse{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.ExpiresAt,
		TokenType:   token.TokenType,
	})
}
