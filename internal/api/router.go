package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/killergame/internal/api/handler"
	"github.com/mcoot/killergame/internal/api/middleware"
	"github.com/mcoot/killergame/internal/events"
	"github.com/mcoot/killergame/internal/services/auth"
	"github.com/mcoot/killergame/internal/services/directory"
	"github.com/mcoot/killergame/internal/services/game"
	"github.com/mcoot/killergame/internal/services/standings"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger           *slog.Logger
	AuthService      *auth.Service
	GameController   *game.Controller
	StandingsService *standings.Service
	Directory        *directory.Service
	Events           *events.Hub

	// PublicURL is encoded in the invite QR code
	PublicURL     string
	SecureCookies bool
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	playerHandler := handler.NewPlayerHandler(cfg.AuthService, cfg.GameController, cfg.SecureCookies, cfg.Logger)
	gameHandler := handler.NewGameHandler(cfg.GameController)
	standingsHandler := handler.NewStandingsHandler(cfg.StandingsService)
	adminHandler := handler.NewAdminHandler(cfg.GameController, cfg.Logger)
	systemHandler := handler.NewSystemHandler(cfg.Directory, cfg.PublicURL, cfg.Logger)

	authMiddleware := middleware.Auth(cfg.AuthService)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.RequestID)
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Public routes
	api.HandleFunc("/login", playerHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/leaderboard", standingsHandler.Leaderboard).Methods(http.MethodGet)
	api.HandleFunc("/podium", standingsHandler.Podium).Methods(http.MethodGet)
	api.HandleFunc("/podium/kills", standingsHandler.KillsPodium).Methods(http.MethodGet)
	api.HandleFunc("/health", systemHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/invite.png", systemHandler.Invite).Methods(http.MethodGet)
	if cfg.Events != nil {
		api.Handle("/events", events.NewHandler(cfg.Events, "")).Methods(http.MethodGet)
	}

	// Roster reveals more to admins
	api.Handle("/roster", optionalAuthMiddleware(http.HandlerFunc(standingsHandler.Roster))).Methods(http.MethodGet)

	// Player routes
	withAuth := func(h http.HandlerFunc) http.Handler { return authMiddleware(h) }
	api.Handle("/logout", withAuth(playerHandler.Logout)).Methods(http.MethodPost)
	api.Handle("/me", withAuth(playerHandler.GetMe)).Methods(http.MethodGet)
	api.Handle("/kill", withAuth(gameHandler.Kill)).Methods(http.MethodPost)
	api.Handle("/killed", withAuth(gameHandler.Killed)).Methods(http.MethodPost)
	api.Handle("/giveup", withAuth(gameHandler.GiveUp)).Methods(http.MethodPost)

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(authMiddleware)
	admin.Use(middleware.AdminOnly)
	admin.HandleFunc("/players", adminHandler.Players).Methods(http.MethodGet)
	admin.HandleFunc("/chain", adminHandler.Chain).Methods(http.MethodGet)
	admin.HandleFunc("/chain/seed", adminHandler.SeedChain).Methods(http.MethodPost)
	admin.HandleFunc("/cache/invalidate", adminHandler.InvalidateCache).Methods(http.MethodPost)

	return r
}
