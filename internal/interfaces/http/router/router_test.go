package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appintegration "github.com/commercesync/backend/internal/application/integration"
	"github.com/commercesync/backend/internal/domain/integration"
	"github.com/commercesync/backend/internal/infrastructure/auth"
	"github.com/commercesync/backend/internal/infrastructure/config"
	"github.com/commercesync/backend/internal/interfaces/http/handler"
	"github.com/commercesync/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ---------------------------------------------------------------------------
// Router and DomainGroup
// ---------------------------------------------------------------------------

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "v1", r.apiVersion)
	assert.Equal(t, "/api/v1", r.BasePath())
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("test", "/test").GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup_MiddlewareAndSubgroups(t *testing.T) {
	engine := gin.New()
	var trail []string

	group := NewDomainGroup("tenants", "/tenants").Use(func(c *gin.Context) {
		trail = append(trail, "group")
		c.Next()
	})
	group.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	group.Group("logs", "/:id/logs").POST("/purge", func(c *gin.Context) {
		trail = append(trail, "purge:"+c.Param("id"))
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, "tenants", group.Name())
	assert.Equal(t, "/tenants", group.Prefix())

	NewRouter(engine).Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/tenants/t-1/logs/purge", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"group", "purge:t-1"}, trail)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tenants/t-1/logs/purge", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDomainGroup_Routes(t *testing.T) {
	noop := func(c *gin.Context) {}
	group := NewDomainGroup("tenants", "/tenants/:tenant_id")
	group.POST("/sync", noop).GET("/sync-logs", noop)
	group.Group("config", "/configuration/").GET("", noop)

	assert.Equal(t, []RouteInfo{
		{Method: http.MethodPost, Path: "/tenants/:tenant_id/sync"},
		{Method: http.MethodGet, Path: "/tenants/:tenant_id/sync-logs"},
		{Method: http.MethodGet, Path: "/tenants/:tenant_id/configuration/"},
	}, group.Routes())
}

func TestJoinPaths(t *testing.T) {
	tests := []struct {
		prefix, path, expected string
	}{
		{"", "", "/"},
		{"/a", "", "/a"},
		{"/a", "/", "/a"},
		{"", "/b", "/b"},
		{"/a/", "/b", "/a/b"},
		{"/a", "b", "/a/b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, joinPaths(tt.prefix, tt.path), "%q + %q", tt.prefix, tt.path)
	}
}

// ---------------------------------------------------------------------------
// Route table
// ---------------------------------------------------------------------------

type stubDispatcher struct{}

func (stubDispatcher) Dispatch(_ context.Context, ev integration.WebhookEvent, _ []byte) (*appintegration.DispatchResult, error) {
	return &appintegration.DispatchResult{Event: ev.Event, Status: appintegration.DispatchSkipped, Reason: "stub"}, nil
}

type stubSyncer struct{}

func (stubSyncer) SyncTenant(_ context.Context, tenantID string, _ ...integration.SyncModule) (*appintegration.TenantSyncReport, error) {
	return &appintegration.TenantSyncReport{TenantID: tenantID}, nil
}

type stubLogs struct{}

func (stubLogs) ListForTenant(context.Context, string, integration.SyncLogFilter) ([]integration.SyncLogEntry, int64, error) {
	return nil, 0, nil
}

type stubTenants struct{}

func (stubTenants) GetTenant(_ context.Context, tenantID string) (*integration.Tenant, error) {
	return &integration.Tenant{ID: tenantID, Name: "Shop"}, nil
}

func (stubTenants) ConfigureTarget(_ context.Context, tenantID string, _ appintegration.ConfigureTargetInput) (*integration.Tenant, error) {
	return &integration.Tenant{ID: tenantID}, nil
}

type stubCallbacks struct{}

func (stubCallbacks) HandleCallback(_ context.Context, in appintegration.CallbackInput) (*appintegration.CallbackResult, error) {
	return &appintegration.CallbackResult{
		Tenant:      &integration.Tenant{ID: in.CompanyID},
		RedirectURL: "https://dashboard.example.com/",
	}, nil
}

type routeFixture struct {
	engine  *gin.Engine
	tokens  *auth.JWTService
	revoked *auth.InMemoryRevocationList
}

func newRouteFixture(t *testing.T, limiter *middleware.RateLimiter, swagger config.SwaggerConfig) *routeFixture {
	t.Helper()

	tokens, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:       "router-test-secret",
		TokenExpiration: time.Hour,
		Issuer:          "commerce-sync",
	})
	require.NoError(t, err)
	revoked := auth.NewInMemoryRevocationList()

	engine := gin.New()
	RegisterRoutes(engine, Handlers{
		Webhook: handler.NewWebhookHandler(stubDispatcher{}, 0),
		Sync:    handler.NewSyncHandler(stubSyncer{}, stubLogs{}),
		Tenant:  handler.NewTenantHandler(stubTenants{}),
		Auth:    handler.NewAuthHandler(stubCallbacks{}, revoked, time.Hour),
		System:  handler.NewSystemHandler("commerce-sync", "test"),
	}, RouteConfig{
		Tokens:      tokens,
		Revocations: revoked,
		Limiter:     limiter,
		Swagger:     swagger,
	})

	return &routeFixture{engine: engine, tokens: tokens, revoked: revoked}
}

func (f *routeFixture) do(t *testing.T, method, path, tenantID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if tenantID != "" {
		token, _, err := f.tokens.IssueTenantToken(tenantID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestRegisterRoutes_PublicEndpoints(t *testing.T) {
	f := newRouteFixture(t, nil, config.SwaggerConfig{})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"root health", http.MethodGet, "/health", "", http.StatusOK},
		{"api health", http.MethodGet, "/api/v1/health", "", http.StatusOK},
		{"system info", http.MethodGet, "/api/v1/system/info", "", http.StatusOK},
		{"webhook", http.MethodPost, "/api/v1/webhooks/genuka",
			`{"event":"product.updated","entity":{"id":"p1","company_id":"c1"}}`, http.StatusOK},
		{"callback", http.MethodGet,
			"/api/v1/auth/callback?company_id=c1&code=abc&timestamp=1700000000&hmac=ff", "", http.StatusFound},
		{"swagger disabled", http.MethodGet, "/swagger/index.html", "", http.StatusNotFound},
		{"unknown", http.MethodGet, "/api/v1/unknown", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, tt.method, tt.path, "", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestRegisterRoutes_TenantEndpointsRequireMatchingToken(t *testing.T) {
	f := newRouteFixture(t, nil, config.SwaggerConfig{})

	tests := []struct {
		name     string
		method   string
		path     string
		tenantID string
		body     string
		status   int
	}{
		{"no token", http.MethodGet, "/api/v1/tenants/c1/sync-logs", "", "", http.StatusUnauthorized},
		{"other tenant", http.MethodGet, "/api/v1/tenants/c1/sync-logs", "c2", "", http.StatusForbidden},
		{"sync logs", http.MethodGet, "/api/v1/tenants/c1/sync-logs", "c1", "", http.StatusOK},
		{"manual sync", http.MethodPost, "/api/v1/tenants/c1/sync?modules=products", "c1", "", http.StatusOK},
		{"get configuration", http.MethodGet, "/api/v1/tenants/c1/configuration", "c1", "", http.StatusOK},
		{"save configuration", http.MethodPost, "/api/v1/tenants/c1/configuration", "c1",
			`{"base_url":"https://shop.example.com","consumer_key":"ck_1","consumer_secret":"cs_1"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, tt.method, tt.path, tt.tenantID, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestRegisterRoutes_LogoutRevokesTenantTokens(t *testing.T) {
	f := newRouteFixture(t, nil, config.SwaggerConfig{})

	token, _, err := f.tokens.IssueTenantToken("c1")
	require.NoError(t, err)

	send := func(method, path string) int {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		f.engine.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusOK, send(http.MethodGet, "/api/v1/tenants/c1/configuration"))
	require.Equal(t, http.StatusOK, send(http.MethodPost, "/api/v1/tenants/c1/logout"))
	assert.Equal(t, http.StatusUnauthorized, send(http.MethodGet, "/api/v1/tenants/c1/configuration"))
}

func TestRegisterRoutes_ManualSyncRateLimitedPerTenant(t *testing.T) {
	f := newRouteFixture(t, middleware.NewRateLimiter(0.001, 1), config.SwaggerConfig{})

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/v1/tenants/c1/sync", "c1", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, f.do(t, http.MethodPost, "/api/v1/tenants/c1/sync", "c1", "").Code)
	// another tenant has its own bucket
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/v1/tenants/c2/sync", "c2", "").Code)
	// the sync log is not limited
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/v1/tenants/c1/sync-logs", "c1", "").Code)
}

func TestRegisterRoutes_SwaggerAllowList(t *testing.T) {
	f := newRouteFixture(t, nil, config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8"}})

	w := f.do(t, http.MethodGet, "/swagger/index.html", "", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// ---------------------------------------------------------------------------
// Engine
// ---------------------------------------------------------------------------

func TestNewEngine_Middleware(t *testing.T) {
	engine, err := NewEngine(EngineConfig{
		HTTP: config.HTTPConfig{MaxBodySize: 16},
	})
	require.NoError(t, err)

	engine.POST("/echo", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(middleware.RequestIDKey))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("{}"))
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-123", w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get(middleware.RequestIDHeader))

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestNewEngine_RecoversFromPanics(t *testing.T) {
	engine, err := NewEngine(EngineConfig{})
	require.NoError(t, err)
	engine.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestNewEngine_InvalidTrustedProxies(t *testing.T) {
	_, err := NewEngine(EngineConfig{HTTP: config.HTTPConfig{TrustedProxies: []string{"not-an-ip"}}})
	assert.Error(t, err)
}
