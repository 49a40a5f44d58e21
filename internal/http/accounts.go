package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UnlinkAccountRequest identifies a linked account to remove
type UnlinkAccountRequest struct {
	Provider string `json:"provider" binding:"required"`
	UID      string `json:"uid" binding:"required"`
}

// SetAccountLabelRequest sets the display label on a linked account
type SetAccountLabelRequest struct {
	Provider string `json:"provider" binding:"required"`
	UID      string `json:"uid" binding:"required"`
	Label    string `json:"label"`
}

// listLinkedAccounts returns the user's linked accounts grouped by provider
func (s *Server) listLinkedAccounts(c *gin.Context) {
	accounts, err := s.accountService.ListLinkedAccounts(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, accounts)
}

// unlinkAccount removes a linked account and its stored provider token
func (s *Server) unlinkAccount(c *gin.Context) {
	var req UnlinkAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	if err := s.accountService.Unlink(c.Request.Context(), currentUserID(c), req.Provider, req.UID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"detail": "Account unlinked"})
}

// setAccountLabel updates the display label on a linked account
func (s *Server) setAccountLabel(c *gin.Context) {
	var req SetAccountLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	if err := s.accountService.SetLabel(c.Request.Context(), currentUserID(c), req.Provider, req.UID, req.Label); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"detail": "Label updated"})
}
