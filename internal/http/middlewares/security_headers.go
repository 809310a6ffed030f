package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
)

const defaultCSP = "default-src 'none'; frame-ancestors 'none'"

// SecurityHeaders sets the hardening headers. HSTS is only sent outside development.
func SecurityHeaders(isDevelopment bool) gin.HandlerFunc {
	sm := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: defaultCSP,
		STSSeconds:            31536000,
		STSIncludeSubdomains:  true,
		IsDevelopment:         isDevelopment,
	})

	return func(c *gin.Context) {
		if err := sm.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}

		// secure may have written a redirect
		if status := c.Writer.Status(); status > 300 && status < 399 {
			c.Abort()
			return
		}
		c.Next()
	}
}
