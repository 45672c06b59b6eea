package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CacheConfig represents cache control configuration
type CacheConfig struct {
	MaxAge               int
	Private              bool
	NoStore              bool
	MustRevalidate       bool
	NoCache              bool
	StaleWhileRevalidate int
	StaleIfError         int
	Vary                 []string
}

// DefaultCacheConfig lets shared caches hold catalog reads briefly. A
// reload is visible to clients within MaxAge seconds.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxAge:               60,
		StaleWhileRevalidate: 30,
		StaleIfError:         300,
		Vary:                 []string{"Accept", "Accept-Encoding"},
	}
}

// Cache adds cache control headers to GET responses
func Cache(config CacheConfig) gin.HandlerFunc {
	directives := make([]string, 0, 6)
	if config.Private {
		directives = append(directives, "private")
	} else {
		directives = append(directives, "public")
	}
	if config.MaxAge > 0 {
		directives = append(directives, "max-age="+strconv.Itoa(config.MaxAge))
	}
	if config.NoStore {
		directives = append(directives, "no-store")
	}
	if config.NoCache {
		directives = append(directives, "no-cache")
	}
	if config.MustRevalidate {
		directives = append(directives, "must-revalidate")
	}
	if config.StaleWhileRevalidate > 0 {
		directives = append(directives, "stale-while-revalidate="+strconv.Itoa(config.StaleWhileRevalidate))
	}
	if config.StaleIfError > 0 {
		directives = append(directives, "stale-if-error="+strconv.Itoa(config.StaleIfError))
	}
	value := strings.Join(directives, ", ")
	vary := strings.Join(config.Vary, ", ")

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Header("Cache-Control", "no-store")
			c.Next()
			return
		}

		c.Header("Cache-Control", value)
		if vary != "" {
			// Added, not set: CORS may already vary on Origin.
			c.Writer.Header().Add("Vary", vary)
		}
		c.Next()
	}
}

// NoStore marks responses as uncacheable, for health and admin routes.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
