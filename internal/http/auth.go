package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/codelens/internal/domain"
)

// LoginRequest represents an email/password login attempt
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// GoogleLoginRequest carries an upstream Google access token obtained by the
// frontend's own OAuth flow
type GoogleLoginRequest struct {
	AccessToken string `json:"access_token"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// login authenticates with email and password and issues a credential pair
func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	pair, err := s.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		slog.WarnContext(c.Request.Context(), "login failed", "email", req.Email, "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// register creates a new user account and issues a credential pair
func (s *Server) register(c *gin.Context) {
	var req domain.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	pair, err := s.authService.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, pair)
}

// googleLogin verifies an upstream Google access token, gets or creates the
// matching user and issues a credential pair
func (s *Server) googleLogin(c *gin.Context) {
	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	pair, user, err := s.authService.LoginWithFederatedToken(c.Request.Context(), "google", req.AccessToken)
	if err != nil {
		slog.WarnContext(c.Request.Context(), "google login failed", "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access":  pair.Access,
		"refresh": pair.Refresh,
		"user":    user,
	})
}

// refreshToken exchanges a refresh token for a fresh credential pair
func (s *Server) refreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	pair, err := s.authService.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}
