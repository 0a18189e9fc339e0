package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/GTDGit/shopizi/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "shopizi",
	Short: "Izipay and Shopify credential store with connectivity probes",
	Long: `shopizi stores the Izipay payment gateway and Shopify Admin API
credentials of a storefront, serves them over a REST API and probes
whether the active credentials can reach their provider.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		setupLogger(cfg.Env)
		log.Debug().Str("env", cfg.Env).Str("command", cmd.Name()).Msg("configuration loaded")
		return nil
	},
}
