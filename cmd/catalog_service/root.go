package main

import (
	"github.com/spf13/cobra"

	"github.com/payetonkawa/catalog-service/internal/platform/config"
)

// NewRootCmd creates the root command. Without a subcommand it serves HTTP.
func NewRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "catalog_service",
		Short: "Product catalog API with token-gated reads",
		Long: `catalog_service serves the product catalog together with account
registration and authentication. Catalog reads require the bearer token
e-mailed to the account owner at registration.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", config.GetEnv("CONFIG_FILE", ""), "YAML config file path")
	config.RegisterFlags(cmd.PersistentFlags())

	serve := NewServeCmd(&configFile)
	cmd.RunE = serve.RunE
	cmd.AddCommand(serve)
	cmd.AddCommand(NewMigrateCmd(&configFile))

	return cmd
}
