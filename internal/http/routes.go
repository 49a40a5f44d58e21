package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// Health check endpoint (no auth required)
	s.engine.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "codelens",
		})
	})

	// Auth endpoints - public, these issue or refresh credentials
	authGroup := s.engine.Group("/api/auth")
	{
		authGroup.POST("/login/", s.login)
		authGroup.POST("/registration/", s.register)
		authGroup.POST("/google/", s.googleLogin)
		authGroup.POST("/token/refresh/", s.refreshToken)

		// OAuth redirect flow, login intent starts unauthenticated
		authGroup.GET("/authorize/:provider", s.beginProviderLogin)
		authGroup.GET("/callback/:provider", s.providerCallback)
	}

	// API routes - all protected by authentication
	api := s.engine.Group("/api")
	api.Use(s.authMiddleware())
	{
		s.setupAccountRoutes(api)
		s.setupRepoRoutes(api)
		s.setupSubmissionRoutes(api)

		api.GET("/system/stats", s.getSystemStats)
	}
}

func (s *Server) setupAccountRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	{
		auth.GET("/profile/", s.getProfile)
		auth.PUT("/profile/", s.updateProfile)

		auth.GET("/accounts/", s.listLinkedAccounts)
		auth.POST("/accounts/unlink/", s.unlinkAccount)
		auth.POST("/accounts/label/", s.setAccountLabel)

		// OAuth redirect flow, connect intent requires the current user
		auth.GET("/connect/:provider", s.beginProviderConnect)
	}
}

func (s *Server) setupRepoRoutes(api *gin.RouterGroup) {
	gh := api.Group("/github")
	{
		gh.GET("/repos/", s.listGitHubRepositories)
		gh.GET("/repos/:owner/:name/contents/", s.listRepositoryContents)
		gh.GET("/repos/:owner/:name/file/", s.getRepositoryFile)
		gh.GET("/status/", s.githubConnectionStatus)
		gh.GET("/imported/", s.listImportedRepositories)
		gh.POST("/imported/", s.importRepository)
		gh.POST("/imported/:id/sync/", s.syncRepository)
		gh.DELETE("/imported/:id", s.deleteRepository)
	}
}

func (s *Server) setupSubmissionRoutes(api *gin.RouterGroup) {
	submissions := api.Group("/submissions")
	{
		submissions.POST("/", s.createSubmission)
		submissions.GET("/", s.listSubmissions)
		submissions.GET("/:id", s.getSubmission)
		submissions.PUT("/:id", s.updateSubmission)
		submissions.DELETE("/:id", s.deleteSubmission)
		submissions.GET("/:id/review/", s.getSubmissionReview)
	}
}
