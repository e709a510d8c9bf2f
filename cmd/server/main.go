package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monartisan/backend/internal/domain/identity"
	"github.com/monartisan/backend/internal/infrastructure/cache"
	"github.com/monartisan/backend/internal/infrastructure/config"
	"github.com/monartisan/backend/internal/infrastructure/logger"
	"github.com/monartisan/backend/internal/infrastructure/persistence"
	"github.com/monartisan/backend/internal/infrastructure/telemetry"
	"github.com/monartisan/backend/internal/interfaces/http/handler"
	"github.com/monartisan/backend/internal/interfaces/http/middleware"
	"github.com/monartisan/backend/internal/interfaces/http/router"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/monartisan/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//go:generate swag init -g main.go -d ./,../../internal/interfaces/http -o ../../docs

//	@title			MonArtisan Pro API
//	@version		1.0
//	@description	Quotes, invoices, agenda and client portal for French tradespeople
//	@termsOfService	https://monartisan.fr/cgu

//	@contact.name	API Support
//	@contact.email	support@monartisan.fr

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

//	@securityDefinitions.apikey	PortalToken
//	@in							header
//	@name						X-Portal-Token
//	@description				Client portal link token

const shutdownTimeout = 30 * time.Second

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	// Telemetry providers log through a bootstrap logger until the real one
	// exists, since the OTEL log bridge must be part of the final core.
	bootLog, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	otelCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}
	logProvider, err := telemetry.NewLoggerProvider(ctx, otelCfg, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, logProvider, zapcore.InfoLevel))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	log.Info("Starting MonArtisan Pro",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, otelCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}
	meter := meterProvider.Meter("monartisan")

	// Database
	gormLog := logger.NewQueryLogger(log, logger.GormLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	backends, err := cache.Connect(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := backends.Close(); err != nil {
			log.Error("Error closing cache", zap.Error(err))
		}
	}()

	app, err := buildApp(ctx, cfg, db, backends, meter, log)
	if err != nil {
		log.Fatal("Failed to build application", zap.Error(err))
	}
	if err := app.start(ctx); err != nil {
		log.Fatal("Failed to start background workers", zap.Error(err))
	}

	engine := newEngine(cfg, app, db, backends, meter, log)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	app.stop(shutdownCtx)

	if err := profiler.Stop(); err != nil {
		log.Warn("Failed to stop profiler", zap.Error(err))
	}
	for name, shutdown := range map[string]func(context.Context) error{
		"tracer": tracerProvider.Shutdown,
		"meter":  meterProvider.Shutdown,
		"logs":   logProvider.Shutdown,
	} {
		if err := shutdown(shutdownCtx); err != nil {
			log.Warn("Failed to flush telemetry", zap.String("provider", name), zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}

// newEngine builds the gin engine: global middleware, health routes, documentation
// and the versioned API.
func newEngine(cfg *config.Config, app *application, db *persistence.Database, backends *cache.Backends, meter metric.Meter, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
		_ = engine.SetTrustedProxies(nil)
	}

	// Order matters: the request ID must exist before the access log and
	// the recovery handler read it.
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORS(corsConfig))

	secureConfig := middleware.DefaultSecurityConfig()
	secureConfig.HSTSEnabled = cfg.IsProduction()
	engine.Use(middleware.Secure(secureConfig))

	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
	}
	engine.Use(middleware.HTTPMetrics(meter, log))
	engine.Use(middleware.Profiling(cfg.Telemetry.ProfilingEnabled))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	jwtConfig := middleware.DefaultJWTConfig(app.jwtService)
	jwtConfig.RevocationStore = app.revocations
	jwtConfig.Logger = log
	jwtMiddleware := middleware.JWTAuthMiddlewareWithConfig(jwtConfig)

	systemHandler := handler.NewSystemHandler(version, map[string]handler.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"cache": func(ctx context.Context) error {
			if backends.Client == nil {
				return nil
			}
			return backends.Client.Ping(ctx).Err()
		},
	})
	router.RegisterHealthRoutes(engine, systemHandler)

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, jwtMiddleware),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	protected := []gin.HandlerFunc{
		jwtMiddleware,
		middleware.TenantMiddleware(middleware.TenantMiddlewareConfig{
			Validator: app.artisanService,
			Logger:    log,
		}),
		middleware.SpanAttributes(),
	}
	var public []gin.HandlerFunc
	if cfg.HTTP.RateLimitEnabled {
		limiter := newLimiter(backends, "api", cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		protected = append(protected, middleware.RateLimitByKey(limiter, log, func(c *gin.Context) string {
			return middleware.GetTenantID(c)
		}))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		limiter := newLimiter(backends, "public", cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		public = append(public, middleware.RateLimit(limiter, log))
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.RegisterAPI(r, app.handlers(systemHandler), router.Middlewares{
		Public:    public,
		Protected: protected,
		Owner:     middleware.RequireRole(log, string(identity.UserRoleOwner)),
		Portal: []gin.HandlerFunc{
			middleware.PortalAuth(app.portalService, log),
			middleware.SpanAttributes(),
		},
		Admin: middleware.RequireAdminKey(cfg.App.AdminAPIKey),
	})
	r.Setup()

	return engine
}

// newLimiter shares counters across instances when Redis is reachable
func newLimiter(backends *cache.Backends, prefix string, limit int, window time.Duration) middleware.Limiter {
	if backends.Client != nil {
		return middleware.NewRedisRateLimiter(backends.Client, prefix, limit, window)
	}
	return middleware.NewRateLimiter(limit, window)
}
