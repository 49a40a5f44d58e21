package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/codelens/internal/domain"
	"github.com/codelens/internal/httputil"
)

// listGitHubRepositories returns the user's live repositories from GitHub.
// ?github_uid= selects a specific linked account; the first linked GitHub
// account is used otherwise.
func (s *Server) listGitHubRepositories(c *gin.Context) {
	repos, err := s.repoService.ListAvailable(c.Request.Context(), currentUserID(c), c.Query("github_uid"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, repos)
}

// listRepositoryContents browses a live repository's tree. ?path= selects
// a subdirectory, defaulting to the repository root.
func (s *Server) listRepositoryContents(c *gin.Context) {
	entries, err := s.repoService.ListContents(c.Request.Context(), currentUserID(c),
		c.Query("github_uid"), c.Param("owner"), c.Param("name"), c.Query("path"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// getRepositoryFile fetches a single decoded file from a live repository
func (s *Server) getRepositoryFile(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "path parameter is required"})
		return
	}

	content, err := s.repoService.GetFileContent(c.Request.Context(), currentUserID(c),
		c.Query("github_uid"), c.Param("owner"), c.Param("name"), path)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": content, "path": path})
}

// githubConnectionStatus reports the user's linked GitHub accounts
func (s *Server) githubConnectionStatus(c *gin.Context) {
	status, err := s.repoService.ConnectionStatus(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// listImportedRepositories returns the user's imported repositories
func (s *Server) listImportedRepositories(c *gin.Context) {
	repos, err := s.repoService.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, repos)
}

// importRepository imports a GitHub repository for tracking
func (s *Server) importRepository(c *gin.Context) {
	var req domain.ImportRepositoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	repo, err := s.repoService.Import(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, repo)
}

// syncRepository marks the repository as syncing and enqueues the sync job
func (s *Server) syncRepository(c *gin.Context) {
	id, err := httputil.ValidateAndGetID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid repository ID"})
		return
	}

	repo, err := s.repoService.RequestSync(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, repo)
}

// deleteRepository removes an imported repository
func (s *Server) deleteRepository(c *gin.Context) {
	id, err := httputil.ValidateAndGetID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid repository ID"})
		return
	}

	if err := s.repoService.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
