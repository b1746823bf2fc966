package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dkaymak/roomchat/internal/api/handler"
	apimiddleware "github.com/dkaymak/roomchat/internal/api/middleware"
	"github.com/dkaymak/roomchat/internal/middleware"
	"github.com/dkaymak/roomchat/internal/services/auth"
	"github.com/dkaymak/roomchat/internal/services/message"
	"github.com/dkaymak/roomchat/internal/services/room"
	"github.com/dkaymak/roomchat/internal/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	RoomController *room.Controller
	MessageService *message.Service
	HubManager     *ws.HubManager
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	roomHandler := handler.NewRoomHandler(cfg.RoomController)
	messageHandler := handler.NewMessageHandler(cfg.MessageService)
	wsHandler := ws.NewHandler(cfg.AuthService, cfg.RoomController, cfg.HubManager, cfg.Logger)

	// Create middleware
	authMiddleware := apimiddleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Auth routes (no auth required for registering/logging in)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(authMiddleware)
	authProtected.HandleFunc("/me", authHandler.GetMe).Methods(http.MethodGet)

	// Room routes (all require auth)
	rooms := api.PathPrefix("/rooms").Subrouter()
	rooms.Use(authMiddleware)
	rooms.HandleFunc("/create", roomHandler.Create).Methods(http.MethodPost)
	rooms.HandleFunc("/join", roomHandler.Join).Methods(http.MethodPost)
	rooms.HandleFunc("/generate-code", roomHandler.GenerateCode).Methods(http.MethodGet)
	rooms.HandleFunc("/{code}", roomHandler.Get).Methods(http.MethodGet)

	// Message history (requires auth)
	messages := api.PathPrefix("/messages").Subrouter()
	messages.Use(authMiddleware)
	messages.HandleFunc("/{roomCode}", messageHandler.GetPage).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Websocket endpoint; the handler does its own token auth since browser
	// websocket clients cannot set headers
	r.Handle("/ws", wsHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
