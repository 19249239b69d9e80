package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/payetonkawa/catalog-service/internal/platform/config"
	"github.com/payetonkawa/catalog-service/internal/platform/database"
	"github.com/payetonkawa/catalog-service/internal/platform/logger"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags(), *configFile)
			if err != nil {
				return oops.Code("CONFIG_INVALID").Wrap(err)
			}
			if err := logger.Init(cfg.Log); err != nil {
				return oops.Code("CONFIG_INVALID").Wrap(err)
			}
			defer logger.Sync()

			cmd.Println("Running migrations...")
			if err := database.Migrate(cfg.DB); err != nil {
				return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
			}
			cmd.Println("Migrations completed successfully")
			return nil
		},
	}
}
