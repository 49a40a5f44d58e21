package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/codelens/internal/domain"
)

// getProfile returns the authenticated user's profile
func (s *Server) getProfile(c *gin.Context) {
	user, err := s.authService.GetProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// updateProfile applies a partial update to the authenticated user's profile.
// Email is read-only.
func (s *Server) updateProfile(c *gin.Context) {
	var req domain.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	user, err := s.authService.UpdateProfile(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
