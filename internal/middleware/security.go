package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityConfig represents security headers configuration
type SecurityConfig struct {
	FrameOptions       string
	ContentTypeOptions string
	ReferrerPolicy     string
	CSPDirectives      []string
	// NoStore stops browsers and proxies from caching patient data.
	NoStore bool
}

// DefaultSecurityConfig returns headers suited to a JSON-only API.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		FrameOptions:       "DENY",
		ContentTypeOptions: "nosniff",
		ReferrerPolicy:     "no-referrer",
		CSPDirectives: []string{
			"default-src 'none'",
			"frame-ancestors 'none'",
		},
		NoStore: true,
	}
}

// SecurityHeaders adds security headers to responses
func SecurityHeaders(config SecurityConfig) gin.HandlerFunc {
	csp := strings.Join(config.CSPDirectives, "; ")

	return func(c *gin.Context) {
		c.Header("X-Frame-Options", config.FrameOptions)
		c.Header("X-Content-Type-Options", config.ContentTypeOptions)
		c.Header("Referrer-Policy", config.ReferrerPolicy)
		if csp != "" {
			c.Header("Content-Security-Policy", csp)
		}
		if config.NoStore {
			c.Header("Cache-Control", "no-store")
		}

		c.Next()
	}
}
