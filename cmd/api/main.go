package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/woodsxwu/WalkInNow/internal/adapters/cache"
	"github.com/woodsxwu/WalkInNow/internal/adapters/database"
	"github.com/woodsxwu/WalkInNow/internal/adapters/providers/booking"
	"github.com/woodsxwu/WalkInNow/internal/api/handlers"
	"github.com/woodsxwu/WalkInNow/internal/api/middleware"
	"github.com/woodsxwu/WalkInNow/internal/api/routes"
	"github.com/woodsxwu/WalkInNow/internal/application/services"
	"github.com/woodsxwu/WalkInNow/internal/infrastructure/clients/postgres"
	"github.com/woodsxwu/WalkInNow/internal/infrastructure/clients/redis"
	"github.com/woodsxwu/WalkInNow/internal/infrastructure/observability"
	"github.com/woodsxwu/WalkInNow/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	// Redis only backs the directory response cache; the API works without it.
	var cacheMiddleware *middleware.CacheMiddleware
	if cfg.Cache.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, response cache disabled")
		} else {
			defer redisClient.Close()
			cacheMiddleware = middleware.NewCacheMiddleware(
				cache.NewRedisAdapter(redisClient, "walkinnow:"),
				metrics,
				middleware.ClinicRecordRule(cfg.Cache.TTL),
			)
			log.Info().Dur("ttl", cfg.Cache.TTL).Msg("response cache enabled")
		}
	}

	registry := booking.NewDefaultRegistry(cfg, metrics)
	log.Info().Strs("providers", registry.Names()).Msg("booking adapters registered")

	clinicRepo := database.NewClinicAdapter(pgClient, metrics)
	availabilityService := services.NewAvailabilityService(registry, services.AvailabilitySettingsFromConfig(cfg.Booking))
	directoryService := services.NewClinicDirectoryService(clinicRepo, availabilityService)

	router := routes.NewRouter(
		handlers.NewClinicHandler(directoryService, handlers.CalendarLimits{
			DefaultDays: cfg.Booking.CalendarDays,
			MaxDays:     cfg.Booking.MaxCalendarDays,
		}),
		handlers.NewAvailabilityHandler(directoryService),
		handlers.NewProviderHandler(registry),
		directoryService,
		cacheMiddleware,
		metrics,
		cfg.App.AllowedOrigins,
	).WithRequestDeadline(cfg.Server.RequestDeadline)

	server := &http.Server{
		Addr:         cfg.Server.ServerAddr(),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Server.WriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("server shutting down")
	case err := <-errCh:
		log.Error().Err(err).Msg("server failed")
		stop()
		pgClient.Close()
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}
	log.Info().Msg("server stopped")
}
