package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireReady answers 503 until ready reports true. Requests rejected here
// never reach the store, so nothing is lost when the seed replaces its state.
func RequireReady(ready func() bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ready() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{
				Code:    http.StatusServiceUnavailable,
				Message: "patient table is still loading",
				TraceID: RequestIDFrom(c),
			})
			return
		}
		c.Next()
	}
}
