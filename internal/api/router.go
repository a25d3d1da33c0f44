package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/isdelr/machine-monitor-be/internal/api/handlers"
	"github.com/isdelr/machine-monitor-be/internal/auth"
	"github.com/isdelr/machine-monitor-be/internal/config"
	"github.com/isdelr/machine-monitor-be/internal/services"
	"github.com/isdelr/machine-monitor-be/internal/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// Dependencies bundles the services the router wires into handlers.
type Dependencies struct {
	UserService       services.UserServiceProvider
	EventService      services.EventServiceProvider
	PredictionService services.PredictionServiceProvider
	HealthService     services.HealthServiceProvider
	Tokens            *auth.TokenManager
	Hub               *websocket.Hub
}

// NewRouter creates and configures a new Chi router.
func NewRouter(cfg *config.Config, deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(requestIDLogger)
	r.Use(accessLog())
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(deps.UserService, deps.EventService, deps.Tokens, cfg.IsProduction(), cfg.Auth.AccessTokenTTL)
	predictionHandler := handlers.NewPredictionHandler(deps.PredictionService)
	eventHandler := handlers.NewEventHandler(deps.EventService)
	healthHandler := handlers.NewHealthHandler(deps.HealthService)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.PredictionService, cfg.AllowedOrigins())

	authLimit := passthrough
	if cfg.Server.RateLimitRequests > 0 {
		authLimit = httprate.LimitByIP(cfg.Server.RateLimitRequests, cfg.Server.RateLimitWindow)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Get)

		// Public routes
		r.Group(func(r chi.Router) {
			r.Use(authLimit)
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.Post("/token/refresh", userHandler.Refresh)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(deps.Tokens))
			r.Get("/predict", predictionHandler.Predict)
			r.Get("/me", userHandler.GetMe)
			r.Get("/events", eventHandler.GetRecent)
			r.Get("/ws/predict", wsHandler.Serve)
		})
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
