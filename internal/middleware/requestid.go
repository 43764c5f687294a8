package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderXRequestID = "X-Request-ID"
	ContextRequestID = "request_id"

	maxRequestIDLength = 64
)

// RequestID tags each request with an id that ends up in access logs and
// error bodies. A caller-supplied X-Request-ID is kept only when it is a
// short printable ASCII token; anything else is replaced by a new uuid.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderXRequestID)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}

		c.Set(ContextRequestID, rid)
		c.Header(HeaderXRequestID, rid)
		c.Next()
	}
}

// RequestIDFrom returns the id assigned by RequestID, or "".
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(ContextRequestID)
}

func validRequestID(rid string) bool {
	if rid == "" || len(rid) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(rid); i++ {
		if rid[i] <= ' ' || rid[i] > '~' {
			return false
		}
	}
	return true
}
