package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type SecurityConfig struct {
	HSTSMaxAge            int // 0 disables Strict-Transport-Security
	HSTSIncludeSubdomains bool
	FrameOptions          string
	ContentTypeOptions    string
	ReferrerPolicy        string
	// CrossOriginResourcePolicy must allow the marketing site's origin to
	// read catalog JSON.
	CrossOriginResourcePolicy string
	CSPDirectives             []string
}

// DefaultSecurityConfig returns headers for a JSON-only API.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		HSTSMaxAge:                31536000,
		HSTSIncludeSubdomains:     true,
		FrameOptions:              "DENY",
		ContentTypeOptions:        "nosniff",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginResourcePolicy: "cross-origin",
		CSPDirectives: []string{
			"default-src 'none'",
			"frame-ancestors 'none'",
		},
	}
}

type header struct{ key, value string }

// SecurityHeaders sets the configured headers on every response. Empty
// values are skipped.
func SecurityHeaders(config SecurityConfig) gin.HandlerFunc {
	var hsts string
	if config.HSTSMaxAge > 0 {
		hsts = "max-age=" + strconv.Itoa(config.HSTSMaxAge)
		if config.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
	}

	var headers []header
	for _, h := range []header{
		{"Strict-Transport-Security", hsts},
		{"X-Frame-Options", config.FrameOptions},
		{"X-Content-Type-Options", config.ContentTypeOptions},
		{"Referrer-Policy", config.ReferrerPolicy},
		{"Cross-Origin-Resource-Policy", config.CrossOriginResourcePolicy},
		{"Content-Security-Policy", strings.Join(config.CSPDirectives, "; ")},
	} {
		if h.value != "" {
			headers = append(headers, h)
		}
	}

	return func(c *gin.Context) {
		for _, h := range headers {
			c.Header(h.key, h.value)
		}
		c.Next()
	}
}
