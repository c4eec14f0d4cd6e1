package routes

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/admin"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/auth"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/course"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/discount"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/enrollment"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/lesson"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/notification"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/progress"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/review"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/internal/middleware"
	"github.com/mo-amir99/coursemarket-server-go/internal/utils/jwt"
	"github.com/mo-amir99/coursemarket-server-go/pkg/cache"
	"github.com/mo-amir99/coursemarket-server-go/pkg/config"
	"github.com/mo-amir99/coursemarket-server-go/pkg/database"
	"github.com/mo-amir99/coursemarket-server-go/pkg/email"
	"github.com/mo-amir99/coursemarket-server-go/pkg/health"
	pkgmiddleware "github.com/mo-amir99/coursemarket-server-go/pkg/middleware"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

// Dependencies carries the shared services the feature handlers are built from.
type Dependencies struct {
	Config     *config.Config
	DB         *gorm.DB
	Logger     *slog.Logger
	Cache      cache.Client
	Redis      *redis.Client
	Tokens     *jwt.Issuer
	Mailer     email.Sender
	Dispatcher *notification.Dispatcher
	LogDir     string
}

// Register wires all feature routes onto the engine.
func Register(engine *gin.Engine, deps Dependencies) {
	cfg, db, logger := deps.Config, deps.DB, deps.Logger

	// Health check endpoints (no /api prefix for Kubernetes probes)
	checks := map[string]health.Pinger{
		"database": health.PingFunc(func(ctx context.Context) error { return database.Ping(ctx, db) }),
	}
	if deps.Cache != nil {
		checks["cache"] = deps.Cache
	}
	healthHandler := health.NewHandler(db, logger, checks)
	engine.GET("/health", healthHandler.Health)
	engine.GET("/ready", healthHandler.Ready)
	engine.GET("/version", healthHandler.Version)

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if !cfg.IsProduction() {
		engine.GET("/debug/db-stats", healthHandler.DBStats)
	}

	api := engine.Group("/api")

	authn := middleware.NewAuthenticator(db, deps.Tokens, logger)
	authenticated := authn.Authenticate()
	optionalAuth := authn.OptionalAuth()
	customerOnly := authn.RequireRoles(types.RoleCustomer)
	providerOnly := authn.RequireRoles(types.RoleProvider)
	adminOnly := authn.RequireRoles(types.RoleAdmin)

	authLimiter := pkgmiddleware.NewRateLimiter("auth", deps.Redis, pkgmiddleware.PerMinute(cfg.RateLimit.AuthPerMinute), logger)
	discountLimiter := pkgmiddleware.NewRateLimiter("discount-validate", deps.Redis, pkgmiddleware.PerMinute(cfg.RateLimit.AuthPerMinute), logger)

	authService := auth.NewService(db, deps.Tokens, deps.Mailer, cfg.Auth.OTPTTL, cfg.Auth.ResetTokenTTL, logger)
	auth.RegisterRoutes(api, auth.NewHandler(authService, logger), authenticated, authLimiter.Middleware())

	user.RegisterRoutes(api, user.NewHandler(db, logger), authenticated)

	course.RegisterRoutes(api, course.NewHandler(db, logger), optionalAuth, providerOnly)
	lesson.RegisterRoutes(api, lesson.NewHandler(db, logger), providerOnly)

	enrollmentService := enrollment.NewService(db, deps.Dispatcher, logger)
	enrollment.RegisterRoutes(api, enrollment.NewHandler(enrollmentService, logger), customerOnly)

	progress.RegisterRoutes(api, progress.NewHandler(db, logger), authenticated)

	reviewService := review.NewService(db, deps.Dispatcher, logger)
	review.RegisterRoutes(api, review.NewHandler(reviewService, logger), authenticated, customerOnly)

	discount.RegisterRoutes(api, discount.NewHandler(db, logger), providerOnly, discountLimiter.Middleware())

	notification.RegisterRoutes(api, notification.NewHandler(db, deps.Dispatcher, logger), authenticated)

	adminService := admin.NewService(db, deps.Dispatcher, deps.Cache, logger)
	admin.RegisterRoutes(api, admin.NewHandler(adminService, db, deps.LogDir, logger), adminOnly)
}
