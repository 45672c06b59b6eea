package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivispa/catalog-api/internal/model"
	apperrors "github.com/vivispa/catalog-api/pkg/errors"
	"github.com/vivispa/catalog-api/pkg/httputil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, engine *gin.Engine, method, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRequestID(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID(), Logger())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextRequestID))
	})

	w := serve(t, engine, http.MethodGet, "/", nil)
	assert.NotEmpty(t, w.Header().Get(HeaderXRequestID))
	assert.Equal(t, w.Header().Get(HeaderXRequestID), w.Body.String())

	w = serve(t, engine, http.MethodGet, "/", http.Header{HeaderXRequestID: {"edge-7f3a"}})
	assert.Equal(t, "edge-7f3a", w.Body.String())

	w = serve(t, engine, http.MethodGet, "/", http.Header{HeaderXRequestID: {"bad id\n"}})
	assert.NotEqual(t, "bad id\n", w.Body.String())
	assert.NotEmpty(t, w.Body.String())
}

func TestCORS(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://vivi.example"}
	cfg.MaxAge = 600

	engine := gin.New()
	engine.Use(CORS(cfg))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(t, engine, http.MethodOptions, "/", http.Header{"Origin": {"https://vivi.example"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://vivi.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))

	w = serve(t, engine, http.MethodGet, "/", http.Header{"Origin": {"https://evil.example"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Wildcard(t *testing.T) {
	engine := gin.New()
	engine.Use(CORS(DefaultCORSConfig()))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(t, engine, http.MethodGet, "/", http.Header{"Origin": {"https://any.example"}})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCache(t *testing.T) {
	engine := gin.New()
	engine.Use(Cache(DefaultCacheConfig()))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(t, engine, http.MethodGet, "/", nil)
	assert.Equal(t, "public, max-age=60, stale-while-revalidate=30, stale-if-error=300", w.Header().Get("Cache-Control"))
	assert.Equal(t, "Accept, Accept-Encoding", w.Header().Get("Vary"))

	w = serve(t, engine, http.MethodPost, "/", nil)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestCache_KeepsCORSVary(t *testing.T) {
	cors := DefaultCORSConfig()
	cors.AllowOrigins = []string{"https://viviaesthetics.ca"}
	engine := gin.New()
	engine.Use(CORS(cors), Cache(DefaultCacheConfig()))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(t, engine, http.MethodGet, "/", http.Header{"Origin": {"https://viviaesthetics.ca"}})
	assert.Equal(t, []string{"Origin", "Accept, Accept-Encoding"}, w.Header().Values("Vary"))
}

func TestSecurityHeaders(t *testing.T) {
	engine := gin.New()
	engine.Use(SecurityHeaders(DefaultSecurityConfig()))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(t, engine, http.MethodGet, "/", nil)
	assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "default-src 'none'; frame-ancestors 'none'", w.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "cross-origin", w.Header().Get("Cross-Origin-Resource-Policy"))

	cfg := DefaultSecurityConfig()
	cfg.HSTSMaxAge = 0
	engine = gin.New()
	engine.Use(SecurityHeaders(cfg))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	w = serve(t, engine, http.MethodGet, "/", nil)
	_, ok := w.Header()["Strict-Transport-Security"]
	assert.False(t, ok)
}

func TestRateLimit(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.5, Burst: 2})
	engine := gin.New()
	engine.Use(rl.RateLimit())
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(t, engine, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusOK, serve(t, engine, http.MethodGet, "/", nil).Code)

	w := serve(t, engine, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.Equal(t, "rate limit exceeded", decode(t, w).Message)
}

func TestRecovery(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID(), Recovery())
	engine.GET("/", func(c *gin.Context) { panic("boom") })

	w := serve(t, engine, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "error", decode(t, w).Status)
}

func TestValidation(t *testing.T) {
	engine := gin.New()
	engine.Use(ErrorHandler(), Validation(DefaultValidationConfig()))
	engine.GET("/items", func(c *gin.Context) {
		var req model.Criteria
		if err := c.ShouldBindQuery(&req); err != nil {
			_ = c.Error(err).SetType(gin.ErrorTypeBind)
			return
		}
		c.JSON(http.StatusOK, req)
	})

	w := serve(t, engine, http.MethodGet, "/items?sortBy=price-low-high", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(t, engine, http.MethodGet, "/items?sortBy=random", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "invalid query parameters", resp.Message)
	assert.Equal(t, []string{"sortBy must be one of: name-az name-za price-low-high price-high-low highest-discount"}, resp.Errors)
}

func TestErrorHandler(t *testing.T) {
	engine := gin.New()
	engine.Use(ErrorHandler())
	engine.GET("/missing", func(c *gin.Context) {
		_ = c.Error(apperrors.NotFound(`catalog "menu"`, nil))
	})
	engine.GET("/broken", func(c *gin.Context) {
		_ = c.Error(errors.New("disk on fire"))
	})

	w := serve(t, engine, http.MethodGet, "/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, `catalog "menu" not found`, decode(t, w).Message)

	w = serve(t, engine, http.MethodGet, "/broken", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode(t, w).Message)
}
