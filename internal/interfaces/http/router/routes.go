package router

import (
	"github.com/commercesync/backend/internal/infrastructure/auth"
	"github.com/commercesync/backend/internal/infrastructure/config"
	"github.com/commercesync/backend/internal/interfaces/http/handler"
	"github.com/commercesync/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers mounted by RegisterRoutes
type Handlers struct {
	Webhook *handler.WebhookHandler
	Sync    *handler.SyncHandler
	Tenant  *handler.TenantHandler
	Auth    *handler.AuthHandler
	System  *handler.SystemHandler
}

// RouteConfig holds the route-level guards
type RouteConfig struct {
	// Tokens validates dashboard bearer tokens
	Tokens middleware.TokenValidator
	// Revocations is optional
	Revocations auth.RevocationList
	// Limiter is optional; nil disables rate limiting
	Limiter *middleware.RateLimiter
	Swagger config.SwaggerConfig
	Logger  *zap.Logger
}

// RegisterRoutes mounts the public probes, the documentation and the
// versioned API on engine.
//
//	GET  /health
//	GET  /swagger/*any
//	POST /api/v1/webhooks/genuka
//	GET  /api/v1/auth/callback
//	GET  /api/v1/health
//	GET  /api/v1/system/info
//	POST /api/v1/tenants/:tenant_id/sync
//	GET  /api/v1/tenants/:tenant_id/sync-logs
//	GET  /api/v1/tenants/:tenant_id/configuration
//	POST /api/v1/tenants/:tenant_id/configuration
//	POST /api/v1/tenants/:tenant_id/logout
func RegisterRoutes(engine *gin.Engine, h Handlers, cfg RouteConfig) *Router {
	engine.GET("/health", h.System.Health)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	r := NewRouter(engine)
	r.Register(
		webhookRoutes(h),
		authRoutes(h, cfg),
		systemRoutes(h),
		tenantRoutes(h, cfg),
	)
	r.Setup()
	return r
}

// webhookRoutes are called by the SOURCE platform and carry no dashboard token
func webhookRoutes(h Handlers) *DomainGroup {
	return NewDomainGroup("webhooks", "/webhooks").
		POST("/genuka", h.Webhook.Receive)
}

func authRoutes(h Handlers, cfg RouteConfig) *DomainGroup {
	return NewDomainGroup("auth", "/auth").
		Use(middleware.RateLimit(cfg.Limiter)).
		GET("/callback", h.Auth.Callback)
}

func systemRoutes(h Handlers) *DomainGroup {
	g := NewDomainGroup("system", "")
	g.GET("/health", h.System.Health)
	g.Group("system", "/system").GET("/info", h.System.GetSystemInfo)
	return g
}

// tenantRoutes are the dashboard endpoints, scoped to the tenant in the
// token. Manual syncs are limited per tenant rather than per client.
func tenantRoutes(h Handlers, cfg RouteConfig) *DomainGroup {
	g := NewDomainGroup("tenants", "/tenants/:"+middleware.TenantIDParam).
		Use(middleware.TenantAuth(middleware.JWTMiddlewareConfig{
			Validator:   cfg.Tokens,
			Revocations: cfg.Revocations,
			TenantParam: middleware.TenantIDParam,
			Logger:      cfg.Logger,
		}))

	g.POST("/sync", middleware.RateLimitByKey(cfg.Limiter, tenantKey), h.Sync.TriggerSync)
	g.GET("/sync-logs", h.Sync.ListSyncLogs)
	g.GET("/configuration", h.Tenant.GetConfiguration)
	g.POST("/configuration", h.Tenant.SaveConfiguration)
	g.POST("/logout", h.Auth.Logout)
	return g
}

func tenantKey(c *gin.Context) string {
	return "tenant:" + c.Param(middleware.TenantIDParam)
}
