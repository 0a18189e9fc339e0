package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GTDGit/shopizi/internal/database"
	"github.com/GTDGit/shopizi/internal/models"
	"github.com/GTDGit/shopizi/internal/repository"
	"github.com/GTDGit/shopizi/internal/service"
	"github.com/GTDGit/shopizi/pkg/outbound"
)

var probeFlags struct {
	provider string
	testType string
	configID int
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Run one connectivity probe and print the result as JSON",
	Long: `Run one connectivity probe against the stored configuration of a
provider. Without --config-id the active configuration is probed.
A failed probe is still printed; the command only fails when no
configuration could be resolved.`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().StringVar(&probeFlags.provider, "provider", string(models.ProviderIzipay), "provider to probe (izipay or shopify)")
	probeCmd.Flags().StringVar(&probeFlags.testType, "type", string(models.TestTypeSimple), "probe mode (simple or full)")
	probeCmd.Flags().IntVar(&probeFlags.configID, "config-id", 0, "configuration to probe instead of the active one")
}

func runProbe(cmd *cobra.Command, args []string) error {
	provider := models.Provider(probeFlags.provider)
	if !provider.Valid() {
		return fmt.Errorf("unknown provider %q", probeFlags.provider)
	}
	testType := models.TestType(probeFlags.testType)
	if testType != models.TestTypeSimple && testType != models.TestTypeFull {
		return fmt.Errorf("unknown probe type %q", probeFlags.testType)
	}

	db, err := database.Connect(&cfg.DB)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	izipaySvc := service.NewIzipayConfigService(repository.NewIzipayConfigRepository(db))
	shopifySvc := service.NewShopifyConfigService(repository.NewShopifyConfigRepository(db))
	client := outbound.NewClient(outbound.Options{
		MaxRedirects:    cfg.Probe.MaxRedirects,
		MaxConnsPerHost: cfg.Probe.MaxConnsPerHost,
	})
	probes := service.NewProbeService(izipaySvc, shopifySvc, client, cfg.Probe, nil)

	req := models.ProbeRequest{TestType: testType}
	if probeFlags.configID > 0 {
		req.ConfigID = &probeFlags.configID
	}

	result, err := probes.Run(cmd.Context(), provider, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
