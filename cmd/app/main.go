package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/mo-amir99/coursemarket-server-go/internal/bootstrap"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/auth"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/discount"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/notification"
	"github.com/mo-amir99/coursemarket-server-go/internal/http/routes"
	"github.com/mo-amir99/coursemarket-server-go/internal/realtime"
	"github.com/mo-amir99/coursemarket-server-go/internal/utils/jwt"
	"github.com/mo-amir99/coursemarket-server-go/pkg/cache"
	"github.com/mo-amir99/coursemarket-server-go/pkg/config"
	"github.com/mo-amir99/coursemarket-server-go/pkg/database"
	"github.com/mo-amir99/coursemarket-server-go/pkg/email"
	"github.com/mo-amir99/coursemarket-server-go/pkg/health"
	"github.com/mo-amir99/coursemarket-server-go/pkg/jobs"
	"github.com/mo-amir99/coursemarket-server-go/pkg/logger"
	"github.com/mo-amir99/coursemarket-server-go/pkg/metrics"
	"github.com/mo-amir99/coursemarket-server-go/pkg/middleware"
	"github.com/mo-amir99/coursemarket-server-go/pkg/request"
	"github.com/mo-amir99/coursemarket-server-go/pkg/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tracing, err := telemetry.New(ctx, cfg.Telemetry, health.Version, cfg.Env)
	if err != nil {
		appLogger.Error("telemetry initialization failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	db, err := database.Connect(ctx, cfg.Database, appLogger)
	if err != nil {
		appLogger.Error("database connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := database.Close(db, appLogger); err != nil {
			appLogger.Error("database close failed", slog.String("error", err.Error()))
		}
	}()

	if err := bootstrap.ApplyDatabaseMigrations(db, cfg, appLogger); err != nil {
		appLogger.Error("migrations failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if _, err := bootstrap.EnsureDefaultAdmin(db, cfg.Admin, appLogger); err != nil {
		appLogger.Error("ensure default admin failed", slog.String("error", err.Error()))
	}

	// Redis backs both the cache and the rate limiters; without it both fall back to process memory.
	var (
		cacheClient cache.Client
		redisClient *redis.Client
	)
	if cfg.Redis.Enabled() {
		rc, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		cacheClient, redisClient = rc, rc.Redis()
	} else {
		cacheClient = cache.NewMemoryCache()
		appLogger.Warn("redis not configured, using in-memory cache")
	}
	defer cacheClient.Close()

	tokens := jwt.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTRefreshSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)

	emailClient := email.NewClient(
		cfg.Email.Host,
		cfg.Email.Port,
		cfg.Email.Username,
		cfg.Email.Password,
		cfg.Email.From,
		appLogger,
	)

	realtimeServer := realtime.NewServer(db, tokens, appLogger)
	defer realtimeServer.Close()
	metrics.ObserveRealtimeConnections(realtimeServer.Connections)

	dispatcher := notification.NewDispatcher(db, cacheClient, realtimeServer, appLogger)

	if cfg.Jobs.Enabled {
		scheduler := jobs.NewScheduler(appLogger)
		scheduler.AddJob(discount.ExpirySweepJob(db, appLogger), cfg.Jobs.DiscountSweepInterval)
		scheduler.AddJob(notification.RetentionJob(db, cfg.Jobs.NotificationRetentionDays, appLogger), cfg.Jobs.NotificationPruneInterval)
		scheduler.AddJob(auth.OTPCleanupJob(db, time.Hour, appLogger), time.Hour)
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	router := gin.New()

	// Socket.IO gets only recovery and CORS; the rest of the stack would break long-polling.
	router.Use(middleware.Recovery(appLogger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	router.GET("/socket.io/*any", gin.WrapH(realtimeServer.Handler()))
	router.POST("/socket.io/*any", gin.WrapH(realtimeServer.Handler()))

	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(appLogger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestSizeLimit(10 * 1024 * 1024)) // 10MB limit
	router.Use(telemetry.Middleware(cfg.Telemetry.ServiceName))
	router.Use(metrics.Middleware())
	router.Use(request.Handler(appLogger))

	globalLimiter := middleware.NewRateLimiter("global", redisClient, middleware.PerMinute(cfg.RateLimit.PerMinute), appLogger)
	router.Use(globalLimiter.Middleware())

	routes.Register(router, routes.Dependencies{
		Config:     cfg,
		DB:         db,
		Logger:     appLogger,
		Cache:      cacheClient,
		Redis:      redisClient,
		Tokens:     tokens,
		Mailer:     emailClient,
		Dispatcher: dispatcher,
		LogDir:     logger.DefaultDir,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		appLogger.Info("server starting",
			slog.String("addr", cfg.ServerAddress()),
			slog.String("env", cfg.Env),
			slog.String("log_level", cfg.LogLevel),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("server listen failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("server shutdown failed", slog.String("error", err.Error()))
	} else {
		appLogger.Info("server stopped gracefully")
	}
}
