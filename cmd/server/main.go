package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appintegration "github.com/commercesync/backend/internal/application/integration"
	"github.com/commercesync/backend/internal/domain/integration"
	"github.com/commercesync/backend/internal/infrastructure/auth"
	"github.com/commercesync/backend/internal/infrastructure/cache"
	"github.com/commercesync/backend/internal/infrastructure/config"
	"github.com/commercesync/backend/internal/infrastructure/ecommerce"
	"github.com/commercesync/backend/internal/infrastructure/logger"
	"github.com/commercesync/backend/internal/infrastructure/migration"
	"github.com/commercesync/backend/internal/infrastructure/persistence"
	"github.com/commercesync/backend/internal/infrastructure/scheduler"
	"github.com/commercesync/backend/internal/infrastructure/storage"
	"github.com/commercesync/backend/internal/infrastructure/telemetry"
	"github.com/commercesync/backend/internal/interfaces/http/handler"
	"github.com/commercesync/backend/internal/interfaces/http/middleware"
	"github.com/commercesync/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/commercesync/backend/docs"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Commerce Sync API
//	@version		1.0
//	@description	Synchronizes products, customers and orders from Genuka companies to their WooCommerce stores.

//	@contact.name	API Support
//	@contact.url	https://github.com/commercesync/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Dashboard token issued by the onboarding callback. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tel, err := telemetry.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Error("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	// Tee application logs into the OTLP pipeline once it is up
	if tel.Logs.IsEnabled() {
		log, err = logger.New(logCfg, logger.WithCore(tel.Logs.ZapCore(logger.ParseLevel(cfg.Log.Level))))
		if err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	log = log.With(zap.String("service", cfg.Telemetry.ServiceName))
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting commerce sync",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// -----------------------------------------------------------------------
	// Database
	// -----------------------------------------------------------------------

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	if err := telemetry.NewDBTracingPlugin(
		telemetry.DBTracingConfigFrom(cfg.Telemetry, cfg.Database.DBName), log,
	).Register(db.DB); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to access connection pool", zap.Error(err))
	}
	if tel.Meter.IsEnabled() {
		if _, err := telemetry.RegisterDBPoolMetrics(tel.Meter.Meter("commerce-sync/db"), sqlDB); err != nil {
			log.Warn("Failed to register database pool metrics", zap.Error(err))
		}
	}

	if cfg.Database.MigrateOnStart {
		if err := migrateUp(sqlDB, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	cipher, err := persistence.NewSecretCipher(cfg.Security.EncryptionKey)
	if err != nil {
		log.Fatal("Invalid encryption key", zap.Error(err))
	}
	if cipher == nil {
		log.Warn("No encryption key configured, tenant secrets are stored in plain text")
	}
	tenantRepo := persistence.NewGormTenantRepository(db.DB, cipher)
	syncLogRepo := persistence.NewGormSyncLogRepository(db.DB)

	// -----------------------------------------------------------------------
	// Platforms
	// -----------------------------------------------------------------------

	genuka := ecommerce.NewGenukaConfig(cfg.Source.ClientID, cfg.Source.ClientSecret, cfg.Source.RedirectURI)
	genuka.APIBaseURL = cfg.Source.APIBaseURL
	genuka.APIVersion = cfg.Source.APIVersion
	genuka.HTTP = clientConfig(cfg.Source.Client)

	connector, err := ecommerce.NewConnector(genuka, clientConfig(cfg.Target.Client), log)
	if err != nil {
		log.Fatal("Failed to create platform connector", zap.Error(err))
	}
	authorizer, err := ecommerce.NewGenukaAuthorizer(genuka, log.With(zap.String("platform", "genuka")))
	if err != nil {
		log.Fatal("Failed to create SOURCE authorizer", zap.Error(err))
	}

	// -----------------------------------------------------------------------
	// Shared state: debounce claims and token revocations
	// -----------------------------------------------------------------------

	guard, err := cache.NewDebounceGuardFactory(cfg.Redis, cache.WithLogger(log)).CreateGuard()
	if err != nil {
		log.Fatal("Failed to create debounce guard", zap.Error(err))
	}
	defer func() {
		_ = guard.Close()
	}()

	var revocations auth.RevocationList = auth.NewInMemoryRevocationList()
	redisGuard, sharedRedis := guard.(*cache.RedisDebounceGuard)
	if sharedRedis {
		revocations = auth.NewRedisRevocationList(redisGuard.Client())
	}

	var archive integration.PayloadArchive
	switch {
	case cfg.Storage.Enabled:
		s3Archive, err := storage.NewS3PayloadArchive(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create webhook archive", zap.Error(err))
		}
		archive = s3Archive
	case !cfg.App.IsProduction():
		archive = storage.NewMemoryPayloadArchive()
	}

	// -----------------------------------------------------------------------
	// Application services
	// -----------------------------------------------------------------------

	syncMetrics, err := telemetry.NewSyncMetrics(tel.Meter.Meter("commerce-sync/sync"), log)
	if err != nil {
		log.Fatal("Failed to create sync metrics", zap.Error(err))
	}

	tokens, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		log.Fatal("Failed to create token service", zap.Error(err))
	}

	syncService := appintegration.NewSyncService(appintegration.SyncServiceConfig{
		Tenants:         tenantRepo,
		Logs:            syncLogRepo,
		SourceConnector: connector,
		TargetConnector: connector,
		Metrics:         syncMetrics,
		Logger:          log,
		MaxPages:        cfg.Sync.MaxPages,
	})
	tenantService := appintegration.NewTenantService(appintegration.TenantServiceConfig{
		Tenants:        tenantRepo,
		Authorizer:     authorizer,
		Tokens:         tokens,
		CallbackSecret: cfg.Security.CallbackSecret,
		Logger:         log,
	})
	dispatcher := appintegration.NewWebhookDispatcher(appintegration.WebhookDispatcherConfig{
		Tenants:         tenantRepo,
		Logs:            syncLogRepo,
		SourceConnector: connector,
		TargetConnector: connector,
		Guard:           guard,
		Archive:         archive,
		Metrics:         syncMetrics,
		Logger:          log,
		Window:          cfg.Sync.DebounceWindow,
	})

	syncScheduler, err := scheduler.NewSyncScheduler(scheduler.SyncSchedulerConfig{
		Enabled:    cfg.Sync.SchedulerEnabled,
		Interval:   cfg.Sync.Interval,
		RunTimeout: cfg.Sync.RunTimeout,
	}, syncService, log.With(zap.String("component", "scheduler")))
	if err != nil {
		log.Fatal("Failed to create sync scheduler", zap.Error(err))
	}
	if err := syncScheduler.Start(ctx); err != nil {
		log.Fatal("Failed to start sync scheduler", zap.Error(err))
	}

	// -----------------------------------------------------------------------
	// HTTP
	// -----------------------------------------------------------------------

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst)
		go limiter.Run(ctx, time.Minute)
	}

	system := handler.NewSystemHandler(cfg.App.Name, version).
		AddCheck("database", func(ctx context.Context) error {
			return sqlDB.PingContext(ctx)
		})
	if sharedRedis {
		system.AddCheck("redis", func(ctx context.Context) error {
			return redisGuard.Client().Ping(ctx).Err()
		})
	}

	engine, err := router.NewEngine(router.EngineConfig{
		App:       cfg.App,
		HTTP:      cfg.HTTP,
		Telemetry: cfg.Telemetry,
		Profiling: cfg.Profiling,
		Meters:    tel.Meter,
		Logger:    log,
	})
	if err != nil {
		log.Fatal("Failed to create HTTP engine", zap.Error(err))
	}

	router.RegisterRoutes(engine, router.Handlers{
		Webhook: handler.NewWebhookHandler(dispatcher, cfg.HTTP.WebhookBodyLimit),
		Sync:    handler.NewSyncHandler(syncService, syncLogRepo),
		Tenant:  handler.NewTenantHandler(tenantService),
		Auth:    handler.NewAuthHandler(tenantService, revocations, cfg.Auth.TokenExpiration),
		System:  system,
	}, router.RouteConfig{
		Tokens:      tokens,
		Revocations: revocations,
		Limiter:     limiter,
		Swagger:     cfg.Swagger,
		Logger:      log,
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := syncScheduler.Stop(shutdownCtx); err != nil {
		log.Warn("Sync scheduler did not stop in time", zap.Error(err))
	}
	cancel()

	log.Info("Server exited")
}

func clientConfig(c config.ClientConfig) ecommerce.HTTPConfig {
	return ecommerce.HTTPConfig{
		Timeout:      c.Timeout,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
		RateLimit:    c.RateLimit,
		Burst:        c.Burst,
	}
}

// migrateUp applies the embedded schema. The migrator is not closed: its
// postgres driver would close the shared pool with it.
func migrateUp(sqlDB *sql.DB, log *zap.Logger) error {
	m, err := migration.New(sqlDB, "", log.With(zap.String("component", "migration")))
	if err != nil {
		return err
	}
	return m.Up()
}
