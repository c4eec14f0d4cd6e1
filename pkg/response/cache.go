package response

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListWithCache sends a public collection response that shared caches may keep for maxAge seconds.
func ListWithCache(c *gin.Context, data interface{}, count int, pagination interface{}, maxAge int) {
	c.Header("Cache-Control", formatCacheControl(maxAge))
	List(c, data, count, pagination)
}

// SuccessNoCache sends a successful JSON response with no-cache headers.
func SuccessNoCache(c *gin.Context, data interface{}) {
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	Success(c, http.StatusOK, data, "", nil)
}

func formatCacheControl(maxAge int) string {
	if maxAge <= 0 {
		return "no-cache"
	}
	return "public, max-age=" + strconv.Itoa(maxAge)
}
