package http

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/codelens/internal/system"
)

// getSystemStats returns host CPU, memory and disk statistics
func (s *Server) getSystemStats(c *gin.Context) {
	dataPath := filepath.Dir(s.config.DatabasePath)
	c.JSON(http.StatusOK, system.GetStats(dataPath))
}
