package http

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/codelens/internal/identity"
)

// beginProviderLogin redirects the browser to the provider's authorization
// endpoint with login intent
func (s *Server) beginProviderLogin(c *gin.Context) {
	authorizeURL, err := s.accountService.BeginLogin(c.Request.Context(), c.Param("provider"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Redirect(http.StatusFound, authorizeURL)
}

// beginProviderConnect redirects the browser to the provider's authorization
// endpoint with connect intent bound to the current user
func (s *Server) beginProviderConnect(c *gin.Context) {
	authorizeURL, err := s.accountService.BeginConnect(c.Request.Context(), currentUserID(c), c.Param("provider"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Redirect(http.StatusFound, authorizeURL)
}

// providerCallback completes an OAuth redirect flow. Login intent hands the
// issued credential pair to the frontend via query parameters; connect intent
// returns to the accounts page.
func (s *Server) providerCallback(c *gin.Context) {
	provider := c.Param("provider")
	state := c.Query("state")
	code := c.Query("code")

	if errParam := c.Query("error"); errParam != "" {
		slog.WarnContext(c.Request.Context(), "provider denied authorization", "provider", provider, "error", errParam)
		s.redirectWithError(c, errParam)
		return
	}
	if state == "" || code == "" {
		s.redirectWithError(c, "missing state or code")
		return
	}

	result, err := s.accountService.CompleteCallback(c.Request.Context(), provider, state, code)
	if err != nil {
		slog.WarnContext(c.Request.Context(), "oauth callback failed", "provider", provider, "error", err)
		s.redirectWithError(c, err.Error())
		return
	}

	if result.Intent == identity.IntentLogin {
		query := url.Values{}
		query.Set("access", result.Pair.Access)
		query.Set("refresh", result.Pair.Refresh)
		c.Redirect(http.StatusFound, s.config.FrontendURL+"/github/callback?"+query.Encode())
		return
	}

	c.Redirect(http.StatusFound, s.config.FrontendURL+"/github")
}

// redirectWithError sends the browser back to the frontend with the failure
// reason in the query string
func (s *Server) redirectWithError(c *gin.Context, reason string) {
	query := url.Values{}
	query.Set("error", reason)
	c.Redirect(http.StatusFound, s.config.FrontendURL+"/login?"+query.Encode())
}
