package httputil

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultPageSize is the page size applied when none is requested
	DefaultPageSize = 20
	// MaxPageSize caps the requested page size
	MaxPageSize = 100
)

// ParsePage extracts the 1-based page number from the query string
func ParsePage(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ParsePageSize extracts the page size from the query string, clamped to MaxPageSize
func ParsePageSize(c *gin.Context) int {
	size, err := strconv.Atoi(c.Query("page_size"))
	if err != nil || size < 1 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// ParseOrdering extracts the ordering parameter from the query string
func ParseOrdering(c *gin.Context) string {
	return c.Query("ordering")
}

// ValidateAndGetID validates and returns a resource ID from a URL parameter
func ValidateAndGetID(c *gin.Context) (string, error) {
	id := c.Param("id")
	if id == "" {
		return "", fmt.Errorf("invalid resource ID")
	}
	return id, nil
}

// PageURL builds the next/previous page link for a paginated listing, or nil
// when the page is out of range
func PageURL(c *gin.Context, page, pageSize, total int) *string {
	if page < 1 || (page-1)*pageSize >= total {
		return nil
	}
	query := c.Request.URL.Query()
	query.Set("page", strconv.Itoa(page))
	url := c.Request.URL.Path + "?" + query.Encode()
	return &url
}
