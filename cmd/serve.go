package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cppla/vitalog/config"
	"github.com/cppla/vitalog/middleware"
	"github.com/cppla/vitalog/models"
	"github.com/cppla/vitalog/routes"
	"github.com/cppla/vitalog/services"
	"github.com/cppla/vitalog/store"
	"github.com/cppla/vitalog/utils"
)

var runMigrations bool

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		loc, err := time.LoadLocation(cfg.TimeZone)
		if err != nil {
			return fmt.Errorf("invalid time zone %q: %w", cfg.TimeZone, err)
		}

		logger, err := utils.NewLogger(cfg)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		db, err := config.OpenDatabase(cfg)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		if runMigrations {
			if err := config.AutoMigrate(db, models.All()...); err != nil {
				return err
			}
		}

		rc, err := utils.NewRedis(cfg)
		if err != nil {
			logger.Warn("redis unavailable, continuing without cache", zap.Error(err))
			if rc != nil {
				_ = rc.Close()
			}
			rc = nil
		}
		if rc != nil {
			defer rc.Close()
		}

		cache := utils.NewJSONCache(rc, logger)
		blacklist := utils.NewTokenBlacklist(rc)
		jwtm := utils.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience,
			time.Duration(cfg.JWTExpiryMinutes)*time.Minute, nil)

		checkins := services.NewCheckinService(store.NewCheckinStore(db), loc, nil, cache)
		router := routes.SetupRouter(routes.Dependencies{
			Config:    cfg,
			Logger:    logger,
			Auth:      services.NewAuthService(store.NewUserStore(db), utils.NewBcryptHasher(0), jwtm, blacklist),
			Checkins:  checkins,
			Analytics: services.NewAnalyticsService(checkins, cache),
			Tokens:    jwtm,
			Revoked:   blacklist,
			DB:        sqlDB,
			Metrics:   middleware.NewMetrics(),
		})

		logger.Info("starting server",
			zap.String("port", cfg.AppPort),
			zap.String("version", cfg.AppVersion),
			zap.String("time_zone", loc.String()),
		)
		return utils.GraceServer(cmd.Context(), ":"+cfg.AppPort, router, logger)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&runMigrations, "migrate", false, "run schema auto-migration before serving")
	rootCmd.AddCommand(serveCmd)
}
