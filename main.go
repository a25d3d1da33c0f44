package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/machine-monitor-be/internal/api"
	"github.com/isdelr/machine-monitor-be/internal/auth"
	"github.com/isdelr/machine-monitor-be/internal/config"
	"github.com/isdelr/machine-monitor-be/internal/database"
	"github.com/isdelr/machine-monitor-be/internal/logger"
	"github.com/isdelr/machine-monitor-be/internal/monitoring"
	"github.com/isdelr/machine-monitor-be/internal/services"
	"github.com/isdelr/machine-monitor-be/internal/supervisor"
	"github.com/isdelr/machine-monitor-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.App.LogLevel, cfg.IsProduction())

	// Set up database
	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up services
	userService := services.NewUserService(services.NewSQLUserStore(db), cfg.Auth.BcryptCost)
	eventService := services.NewEventService(db)
	predictionService := services.NewPredictionService(nil)
	healthService := services.NewHealthService(nil)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	hub := websocket.NewHub()

	router := api.NewRouter(cfg, api.Dependencies{
		UserService:       userService,
		EventService:      eventService,
		PredictionService: predictionService,
		HealthService:     healthService,
		Tokens:            tokens,
		Hub:               hub,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree := supervisor.NewTree(supervisor.TreeConfig{ShutdownTimeout: cfg.Server.ShutdownTimeout * 2})
	tree.AddMessagingService(hub)
	if cfg.Feed.Enabled {
		feed, err := monitoring.NewFeed(predictionService, hub, cfg.Feed.Schedule)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to configure prediction feed")
		}
		tree.AddMessagingService(feed)
	}
	tree.AddAPIService(supervisor.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Int("port", cfg.Server.Port).Str("env", cfg.App.Env).Msg("Server starting")
	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("Supervisor stopped unexpectedly")
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		log.Warn().Int("count", len(report)).Msg("Services did not stop within the shutdown timeout")
	}
	log.Info().Msg("Server exiting")
}
