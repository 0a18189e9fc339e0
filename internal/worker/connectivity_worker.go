package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/shopizi/internal/metrics"
	"github.com/GTDGit/shopizi/internal/models"
	"github.com/GTDGit/shopizi/internal/service"
	"github.com/GTDGit/shopizi/internal/utils"
)

// ConnectivityWorker periodically runs a simple probe of each provider's
// active configuration and publishes the outcome as a gauge.
type ConnectivityWorker struct {
	probes   *service.ProbeService
	metrics  *metrics.Metrics
	interval time.Duration
}

// NewConnectivityWorker constructs a ConnectivityWorker.
func NewConnectivityWorker(probes *service.ProbeService, m *metrics.Metrics, interval time.Duration) *ConnectivityWorker {
	return &ConnectivityWorker{
		probes:   probes,
		metrics:  m,
		interval: interval,
	}
}

// Start begins the periodic probe loop and listens for context cancellation.
func (w *ConnectivityWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting connectivity worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Connectivity worker stopped")
			return
		}
	}
}

func (w *ConnectivityWorker) run(ctx context.Context) {
	for _, provider := range models.Providers {
		if ctx.Err() != nil {
			return
		}
		w.check(ctx, provider)
	}
}

func (w *ConnectivityWorker) check(ctx context.Context, provider models.Provider) {
	result, err := w.probes.Run(ctx, provider, models.ProbeRequest{TestType: models.TestTypeSimple})
	if errors.Is(err, utils.ErrNoActiveConfig) {
		log.Debug().Str("provider", string(provider)).Msg("No active configuration to probe")
		w.metrics.ClearProviderUp(string(provider))
		return
	}
	if err != nil {
		log.Error().Err(err).Str("provider", string(provider)).Msg("Scheduled probe failed")
		return
	}

	w.metrics.SetProviderUp(string(provider), result.Success)
	if !result.Success {
		log.Warn().
			Str("provider", string(provider)).
			Int("response_status", result.ResponseStatus).
			Str("error", result.Error).
			Str("message", result.Message).
			Msg("Provider unreachable")
	}
}
