package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/commercesync/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestDefaultProfilingConfig(t *testing.T) {
	cfg := middleware.DefaultProfilingConfig()

	assert.True(t, cfg.Enabled)
	assert.Contains(t, cfg.SkipPaths, "/health")
	assert.Contains(t, cfg.SkipPathPrefixes, "/swagger")
}

func TestProfilingMiddleware_Labels(t *testing.T) {
	r := gin.New()
	r.Use(middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig()))

	var route, method, tenant string
	var routeOK bool
	r.GET("/api/v1/tenants/:tenant_id/sync-logs", func(c *gin.Context) {
		ctx := c.Request.Context()
		route, routeOK = pprof.Label(ctx, "route")
		method, _ = pprof.Label(ctx, "method")
		tenant, _ = pprof.Label(ctx, "tenant_id")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tenants/company-42/sync-logs", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, routeOK)
	assert.Equal(t, "/api/v1/tenants/:tenant_id/sync-logs", route)
	assert.Equal(t, http.MethodGet, method)
	assert.Equal(t, "company-42", tenant)
}

func TestProfilingMiddleware_SkipsAndDisabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  middleware.ProfilingConfig
		path string
	}{
		{"disabled", middleware.ProfilingConfig{Enabled: false}, "/api/v1/tenants/company-42/sync-logs"},
		{"skip path", middleware.DefaultProfilingConfig(), "/health"},
		{"skip prefix", middleware.DefaultProfilingConfig(), "/swagger/index.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(middleware.ProfilingWithConfig(tt.cfg))

			labelled := true
			handler := func(c *gin.Context) {
				_, labelled = pprof.Label(c.Request.Context(), "method")
				c.Status(http.StatusOK)
			}
			r.GET("/api/v1/tenants/:tenant_id/sync-logs", handler)
			r.GET("/health", handler)
			r.GET("/swagger/*any", handler)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.False(t, labelled)
		})
	}
}
