package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/GTDGit/shopizi/internal/cache"
	"github.com/GTDGit/shopizi/internal/database"
	"github.com/GTDGit/shopizi/internal/handler"
	"github.com/GTDGit/shopizi/internal/metrics"
	"github.com/GTDGit/shopizi/internal/middleware"
	"github.com/GTDGit/shopizi/internal/repository"
	"github.com/GTDGit/shopizi/internal/service"
	"github.com/GTDGit/shopizi/internal/utils"
	"github.com/GTDGit/shopizi/internal/worker"
	"github.com/GTDGit/shopizi/pkg/outbound"
)

// Failed JWT attempts allowed per client IP per window.
const (
	authFailureLimit  = 10
	authFailureWindow = time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations and start the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	// A bare invocation serves.
	rootCmd.RunE = runServe
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.RequireJWT(); err != nil {
		return err
	}
	log.Info().Str("env", cfg.Env).Msg("starting shopizi api")

	// 1. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	// 1a. Run migrations
	if err := database.Migrate(db); err != nil {
		log.Error().Err(err).Msg("migration failed")
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Info().Msg("migrations completed successfully")

	// 2. Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Redis (optional) backs the probe throttle
	var (
		redisClient *cache.RedisClient
		probeLimit  middleware.Limiter
	)
	if cfg.Redis.Enabled() {
		redisClient, err = cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Error().Err(err).Msg("redis connection failed")
			return err
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected successfully")
		probeLimit = cache.NewProbeThrottle(redisClient, cfg.Probe.RateLimit, cfg.Probe.RateWindow)
	} else {
		log.Info().Msg("redis disabled, using in-memory probe throttle")
		probeLimit = middleware.NewMemoryLimiter(ctx, cfg.Probe.RateLimit, cfg.Probe.RateWindow)
	}

	// 4. Repositories and services
	izipaySvc := service.NewIzipayConfigService(repository.NewIzipayConfigRepository(db))
	shopifySvc := service.NewShopifyConfigService(repository.NewShopifyConfigRepository(db))
	client := outbound.NewClient(outbound.Options{
		MaxRedirects:    cfg.Probe.MaxRedirects,
		MaxConnsPerHost: cfg.Probe.MaxConnsPerHost,
	})
	m := metrics.New()
	probeSvc := service.NewProbeService(izipaySvc, shopifySvc, client, cfg.Probe, m)

	// 5. Handlers and middleware
	handlers := &handler.Handlers{
		Health:  handler.NewHealthHandler(db, redisClient),
		Izipay:  handler.NewIzipayConfigHandler(izipaySvc, probeSvc),
		Shopify: handler.NewShopifyConfigHandler(shopifySvc, probeSvc),
		Metrics: m.Handler(),
	}
	jwtMw := middleware.NewJWTMiddleware(cfg.JWTSecret, middleware.NewMemoryLimiter(ctx, authFailureLimit, authFailureWindow))

	// 6. Router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	utils.RegisterJSONTagNames()
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowedHosts))
	router.Use(middleware.LoggingMiddleware())
	handler.RegisterRoutes(router, handlers, jwtMw.Handle(), middleware.RateLimit(probeLimit))

	// 7. Workers
	if cfg.Worker.ConnectivityInterval > 0 {
		go worker.NewConnectivityWorker(probeSvc, m, cfg.Worker.ConnectivityInterval).Start(ctx)
	}

	// 8. HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 9. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 10. Stop workers, then drain the server
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
	return nil
}
