package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"github.com/mcoot/scorekeeper/internal/api/apierr"
	"github.com/mcoot/scorekeeper/internal/api/events"
	"github.com/mcoot/scorekeeper/internal/api/handler"
	"github.com/mcoot/scorekeeper/internal/api/middleware"
	"github.com/mcoot/scorekeeper/internal/health"
	"github.com/mcoot/scorekeeper/internal/metrics"
	"github.com/mcoot/scorekeeper/internal/services/auth"
	"github.com/mcoot/scorekeeper/internal/services/games"
	"github.com/mcoot/scorekeeper/internal/services/ledger"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	GameController *games.Controller
	Ledger         *ledger.Service
	HubManager     *events.HubManager
	Monitor        *health.Monitor

	// Metrics may be nil, in which case /metrics is not served
	Metrics *metrics.Recorder

	// AllowedOrigins lists the browser origins allowed to call the API
	AllowedOrigins []string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewNotFoundError())
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewMethodNotAllowedError())
	})

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	gameHandler := handler.NewGameHandler(cfg.GameController, cfg.HubManager, cfg.Metrics)
	playerHandler := handler.NewPlayerHandler(cfg.Ledger)
	scoreHandler := handler.NewScoreHandler(cfg.Ledger)
	healthHandler := handler.NewHealthHandler(cfg.Monitor)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	storeMiddleware := middleware.RequireStore(cfg.Monitor)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger, cfg.Metrics)

	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Health check endpoint (no auth, answers while the store is down)
	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)

	// Account routes (register and login are public)
	authRoutes := api.PathPrefix("/auth").Subrouter()
	authRoutes.Use(storeMiddleware)
	authRoutes.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	authRoutes.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	authRoutes.Handle("/me", authMiddleware(http.HandlerFunc(authHandler.GetMe))).Methods(http.MethodGet)
	authRoutes.Handle("/me", authMiddleware(http.HandlerFunc(authHandler.UpdateMe))).Methods(http.MethodPatch)

	// Game routes (all require auth)
	gameRoutes := api.PathPrefix("/games").Subrouter()
	gameRoutes.Use(storeMiddleware)
	gameRoutes.Use(authMiddleware)
	gameRoutes.HandleFunc("", gameHandler.Create).Methods(http.MethodPost)
	gameRoutes.HandleFunc("", gameHandler.List).Methods(http.MethodGet)
	gameRoutes.HandleFunc("/join/{code}", gameHandler.Join).Methods(http.MethodPost)
	gameRoutes.HandleFunc("/{ref}", gameHandler.Get).Methods(http.MethodGet)
	gameRoutes.HandleFunc("/{id}", gameHandler.Update).Methods(http.MethodPatch)
	gameRoutes.HandleFunc("/{id}", gameHandler.Delete).Methods(http.MethodDelete)
	gameRoutes.HandleFunc("/{id}/leave", gameHandler.Leave).Methods(http.MethodPost)
	gameRoutes.HandleFunc("/{id}/events", gameHandler.Events).Methods(http.MethodGet)

	// Roster routes
	gameRoutes.HandleFunc("/{id}/roster", gameHandler.AddRosterEntry).Methods(http.MethodPost)
	gameRoutes.HandleFunc("/{id}/roster/{entry}/score", gameHandler.SetRosterScore).Methods(http.MethodPut)
	gameRoutes.HandleFunc("/{id}/roster/{entry}", gameHandler.RemoveRosterEntry).Methods(http.MethodDelete)

	// Ledger player routes (all require auth)
	playerRoutes := api.PathPrefix("/players").Subrouter()
	playerRoutes.Use(storeMiddleware)
	playerRoutes.Use(authMiddleware)
	playerRoutes.HandleFunc("", playerHandler.Create).Methods(http.MethodPost)
	playerRoutes.HandleFunc("", playerHandler.List).Methods(http.MethodGet)
	playerRoutes.HandleFunc("/{id}", playerHandler.Get).Methods(http.MethodGet)
	playerRoutes.HandleFunc("/{id}", playerHandler.Rename).Methods(http.MethodPatch)
	playerRoutes.HandleFunc("/{id}", playerHandler.Delete).Methods(http.MethodDelete)

	// Ledger score routes (all require auth)
	scoreRoutes := api.PathPrefix("/scores").Subrouter()
	scoreRoutes.Use(storeMiddleware)
	scoreRoutes.Use(authMiddleware)
	scoreRoutes.HandleFunc("", scoreHandler.Add).Methods(http.MethodPost)
	scoreRoutes.HandleFunc("/game/{gameID}", scoreHandler.ListForGame).Methods(http.MethodGet)
	scoreRoutes.HandleFunc("/player/{playerID}", scoreHandler.ListForPlayer).Methods(http.MethodGet)
	scoreRoutes.HandleFunc("/total/{gameID}/{playerID}", scoreHandler.Total).Methods(http.MethodGet)
	scoreRoutes.HandleFunc("/{id}", scoreHandler.Update).Methods(http.MethodPut)
	scoreRoutes.HandleFunc("/{id}", scoreHandler.Delete).Methods(http.MethodDelete)

	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})(r)
}
