// Command server runs the MAIA bookkeeping API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	identityapp "github.com/maia/backend/internal/application/identity"
	ledgerapp "github.com/maia/backend/internal/application/ledger"
	"github.com/maia/backend/internal/domain/ledger"
	"github.com/maia/backend/internal/infrastructure/auth"
	"github.com/maia/backend/internal/infrastructure/config"
	"github.com/maia/backend/internal/infrastructure/logger"
	"github.com/maia/backend/internal/infrastructure/persistence"
	"github.com/maia/backend/internal/infrastructure/telemetry"
	"github.com/maia/backend/internal/interfaces/http/handler"
	"github.com/maia/backend/internal/interfaces/http/middleware"
	"github.com/maia/backend/internal/interfaces/http/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const slowQueryThreshold = 200 * time.Millisecond

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

type shutdownFunc func(context.Context) error

func run(ctx context.Context, cfg *config.Config, baseLog *zap.Logger) error {
	var shutdowns []shutdownFunc
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		for i := len(shutdowns) - 1; i >= 0; i-- {
			if err := shutdowns[i](shutdownCtx); err != nil {
				baseLog.Warn("Shutdown step failed", zap.Error(err))
			}
		}
	}()

	// Telemetry
	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		return err
	}
	shutdowns = append(shutdowns, logsProvider.Shutdown)

	log := baseLog
	if logsProvider.IsEnabled() {
		log = telemetry.NewBridgedLogger(baseLog.Core(), telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: logsProvider,
			Level:          logger.ParseLevel(cfg.Log.Level),
		}), zap.AddCaller())
	}

	log.Info("Starting MAIA backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("tenancy_mode", cfg.Tenancy.Mode),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return err
	}
	shutdowns = append(shutdowns, tracerProvider.Shutdown)

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return err
	}
	shutdowns = append(shutdowns, meterProvider.Shutdown)

	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)
	domainMetrics, err := telemetry.NewDomainMetrics(meter)
	if err != nil {
		return err
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), slowQueryThreshold)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		return err
	}
	shutdowns = append(shutdowns, func(context.Context) error { return db.Close() })
	log.Info("Database connected")

	tracingPlugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: slowQueryThreshold,
		DBName:          cfg.Database.DBName,
	}, log)
	if err := tracingPlugin.Register(db.DB); err != nil {
		return fmt.Errorf("failed to register database tracing: %w", err)
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	poolMetrics, err := telemetry.RegisterPoolMetrics(meter, sqlDB.Stats)
	if err != nil {
		return err
	}
	shutdowns = append(shutdowns, func(context.Context) error { return poolMetrics.Unregister() })

	readiness := []handler.ReadinessCheck{{
		Name:  "database",
		Check: func(ctx context.Context) error { return sqlDB.PingContext(ctx) },
	}}

	// Session revocation
	var blacklist auth.TokenBlacklist
	if cfg.Redis.Enabled {
		client, err := auth.NewRedisClient(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		shutdowns = append(shutdowns, func(context.Context) error { return client.Close() })
		blacklist = auth.NewRedisTokenBlacklist(client)
		readiness = append(readiness, handler.ReadinessCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return client.Ping(ctx).Err() },
		})
		log.Info("Token blacklist backed by Redis", zap.String("addr", cfg.Redis.Addr()))
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		log.Warn("Redis disabled, revoked sessions are kept in process memory")
	}

	// Services
	mode := cfg.TenancyMode()
	jwtService := auth.NewJWTService(cfg.JWT)
	userRepo := persistence.NewGormUserRepository(db.DB)

	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, mode, log).WithMetrics(domainMetrics)
	userService := identityapp.NewUserService(userRepo, blacklist, jwtService.Expiration(), mode, log).WithMetrics(domainMetrics)
	payables := ledgerapp.NewService(persistence.NewGormLedgerRepository(db.DB, ledger.KindPayable), log).WithMetrics(domainMetrics)
	receivables := ledgerapp.NewService(persistence.NewGormLedgerRepository(db.DB, ledger.KindReceivable), log).WithMetrics(domainMetrics)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	deps := router.Dependencies{
		Logger:          log,
		Auth:            authService,
		Users:           userService,
		Payables:        payables,
		Receivables:     receivables,
		ReadinessChecks: readiness,
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		shutdowns = append(shutdowns, func(context.Context) error { limiter.Stop(); return nil })
		deps.LoginLimiter = limiter
	}
	if cfg.Telemetry.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		deps.HTTPMetrics = middleware.NewHTTPMetrics(registry)
		deps.Gatherer = registry
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine, err := router.NewEngine(router.Config{
		Name:           cfg.App.Name,
		Version:        telemetry.ServiceVersion,
		Mode:           mode,
		CORS:           corsCfg,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
	}, deps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("Server exited gracefully")
	return nil
}
