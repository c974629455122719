package router

import (
	"fmt"

	"github.com/commercesync/backend/internal/infrastructure/config"
	"github.com/commercesync/backend/internal/infrastructure/logger"
	"github.com/commercesync/backend/internal/infrastructure/telemetry"
	"github.com/commercesync/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EngineConfig holds what the HTTP engine needs besides its routes
type EngineConfig struct {
	App       config.AppConfig
	HTTP      config.HTTPConfig
	Telemetry config.TelemetryConfig
	Profiling config.ProfilingConfig
	// Meters is optional; nil disables HTTP metrics.
	Meters *telemetry.MeterProvider
	Logger *zap.Logger
}

// quietPaths are not access-logged
var quietPaths = []string{"/health", "/api/v1/health"}

// NewEngine builds a gin engine with the middleware chain shared by every
// route. RequestID runs first so every log line and span carries it.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	profiling := middleware.DefaultProfilingConfig()
	profiling.Enabled = cfg.Profiling.Enabled

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log, quietPaths...),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanEnricher(),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: cfg.Meters,
			Enabled:       cfg.Telemetry.MetricsEnabled,
		}),
		middleware.ProfilingWithConfig(profiling),
		middleware.Secure(),
		middleware.CORSWithConfig(middleware.CORSConfigFrom(cfg.HTTP)),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	return engine, nil
}
