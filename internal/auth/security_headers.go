package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// apiSecurityHeaders are sent with every response. The API serves JSON and
// event streams only, so nothing may be framed, sniffed or loaded.
var apiSecurityHeaders = [][2]string{
	{"X-Frame-Options", "DENY"},
	{"X-Content-Type-Options", "nosniff"},
	{"Referrer-Policy", "no-referrer"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Cross-Origin-Resource-Policy", "same-origin"},
	{"Permissions-Policy", strings.Join([]string{
		"accelerometer=()", "camera=()", "geolocation=()", "gyroscope=()",
		"magnetometer=()", "microphone=()", "payment=()", "usb=()",
	}, ", ")},
}

// SecurityHeadersMiddleware adds security headers to all responses. Feed and
// favourites responses are per device, so /api responses are never cached.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, kv := range apiSecurityHeaders {
			h.Set(kv[0], kv[1])
		}
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			h.Set("Cache-Control", "no-store")
		}
		c.Next()
	}
}

// StrictTransportSecurityMiddleware adds HSTS to requests that arrived over
// HTTPS, directly or through a proxy setting X-Forwarded-Proto.
func StrictTransportSecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
