package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/vitalog/config"
	"github.com/cppla/vitalog/controllers"
	"github.com/cppla/vitalog/middleware"
	"github.com/cppla/vitalog/services"
	"github.com/cppla/vitalog/utils"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Config    config.AppConfig
	Logger    *zap.Logger
	Auth      *services.AuthService
	Checkins  *services.CheckinService
	Analytics *services.AnalyticsService
	Tokens    middleware.TokenValidator
	Revoked   middleware.RevocationChecker
	DB        controllers.Pinger
	Metrics   *middleware.Metrics
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.Trace())

	// Access log goes to its own rolling file when configured.
	accessLogger := logger
	if cfg.GinPath != "" {
		gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
		if err != nil {
			logger.Warn("gin access log disabled", zap.Error(err))
		} else {
			accessLogger = gl
		}
	}
	r.Use(utils.Ginzap(accessLogger, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(logger, true))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
		r.GET("/metrics", gin.WrapH(deps.Metrics.Exporter()))
	}

	healthController := controllers.NewHealthController(deps.DB, logger, cfg.AppVersion)
	authController := controllers.NewAuthController(deps.Auth, logger, cfg.AppVersion)
	checkinController := controllers.NewCheckinController(deps.Checkins, logger)
	analyticsController := controllers.NewAnalyticsController(deps.Analytics, logger)

	r.GET("/health", healthController.Health)

	authRequired := middleware.AuthRequired(deps.Tokens, deps.Revoked)
	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.NewRateLimiter(cfg.RateLimitPerMinute).Handler())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/health", authController.Health)
	authGroup.GET("/exists", authController.Exists)
	authGroup.GET("/me", authRequired, authController.Me)
	authGroup.PUT("/profile", authRequired, authController.UpdateProfile)
	authGroup.POST("/logout", authRequired, authController.Logout)

	checkins := api.Group("/checkin")
	checkins.Use(authRequired)
	checkins.POST("", checkinController.Upsert)
	checkins.POST("/create", checkinController.Create)
	checkins.GET("/recent", checkinController.Recent)
	checkins.GET("/id/:id", checkinController.GetByID)
	checkins.GET("/date/:date", checkinController.GetByDate)
	checkins.GET("/date/:date/all", checkinController.GetAllByDate)
	checkins.GET("/date/:date/latest", checkinController.GetLatestByDate)
	checkins.GET("/:date", checkinController.GetByDate)
	checkins.PUT("/:id", checkinController.Update)
	checkins.DELETE("/:id", checkinController.Delete)

	analytics := api.Group("/analytics")
	analytics.Use(authRequired)
	analytics.GET("/summary", analyticsController.Summary)
	analytics.GET("/weekly", analyticsController.Weekly)
	analytics.GET("/dashboard", analyticsController.Dashboard)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, "route not found")
	})
	r.NoMethod(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
