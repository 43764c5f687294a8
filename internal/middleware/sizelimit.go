package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SizeLimitConfig represents size limit configuration
type SizeLimitConfig struct {
	MaxBodySize int64 // in bytes
}

func DefaultSizeLimitConfig() SizeLimitConfig {
	return SizeLimitConfig{
		MaxBodySize: 64 << 10, // field edits are tiny
	}
}

// SizeLimit rejects oversized bodies up front and caps the reader for
// requests that do not declare a length.
func SizeLimit(config SizeLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > config.MaxBodySize {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Code:    http.StatusRequestEntityTooLarge,
				Message: fmt.Sprintf("body size exceeds %d bytes", config.MaxBodySize),
				TraceID: c.GetString(ContextRequestID),
			})
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.MaxBodySize)
		}
		c.Next()
	}
}
