package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/vivispa/catalog-api/internal/repository"
)

type readyFunc func() bool

func (f readyFunc) Ready() bool { return f() }

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func serve(h *Handler, target string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h.RegisterRoutes(engine.Group("/api/v1"))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestReadiness(t *testing.T) {
	reg := prometheus.NewRegistry()
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("refused") })

	tests := []struct {
		name    string
		ready   bool
		pingers map[string]repository.Pinger
		code    int
		body    string
	}{
		{"not loaded", false, nil, http.StatusServiceUnavailable, `{"reason":"Catalog not loaded","status":"DOWN"}`},
		{"loaded", true, nil, http.StatusOK, `{"status":"UP"}`},
		{"database up", true, map[string]repository.Pinger{"Database": ok}, http.StatusOK, `{"status":"UP"}`},
		{"redis down", true, map[string]repository.Pinger{"Redis": down}, http.StatusServiceUnavailable, `{"reason":"Redis connection failed","status":"DOWN"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ready := tt.ready
			h := NewHandler(readyFunc(func() bool { return ready }), reg, tt.pingers)
			w := serve(h, "/api/v1/health/ready")
			assert.Equal(t, tt.code, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestLivenessAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "vivi_probe_total", Help: "probe"})
	reg.MustRegister(counter)
	counter.Inc()

	h := NewHandler(readyFunc(func() bool { return false }), reg, nil)

	w := serve(h, "/api/v1/health/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"UP"}`, w.Body.String())

	w = serve(h, "/api/v1/health/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "vivi_probe_total 1")
}
