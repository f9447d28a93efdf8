package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cppla/vitalog/config"
	"github.com/cppla/vitalog/models"
	"github.com/cppla/vitalog/utils"
)

// migrateCmd represents the migrate command.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or extend database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
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
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		if err := config.AutoMigrate(db, models.All()...); err != nil {
			return err
		}
		logger.Info("migration complete", zap.Int("models", len(models.All())))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
