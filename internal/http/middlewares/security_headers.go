package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	apiCSP = "default-src 'none'"
	// The bundled front end is plain HTML served from /, with assets under /public.
	pageCSP = "default-src 'self'; base-uri 'none'; frame-ancestors 'none'; object-src 'none'; connect-src 'self'; img-src 'self' data:; style-src 'self' 'unsafe-inline'"
)

func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("X-XSS-Protection", "0")

		path := c.Request.URL.Path
		if path == "/" || strings.HasPrefix(path, "/public") {
			c.Header("Content-Security-Policy", pageCSP)
		} else {
			c.Header("Content-Security-Policy", apiCSP)
		}

		c.Next()
	}
}
