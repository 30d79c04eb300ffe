package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/projectr/roomserver/internal/api/handler"
	"github.com/projectr/roomserver/internal/api/middleware"
	"github.com/projectr/roomserver/internal/api/response"
	"github.com/projectr/roomserver/internal/api/ws"
	"github.com/projectr/roomserver/internal/dependencies/random"
	"github.com/projectr/roomserver/internal/room"
	"github.com/projectr/roomserver/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger   *slog.Logger
	Registry *room.Registry
	Storage  storage.Storage
	Random   random.Random
}

// NewRouter creates the API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(cfg.Registry, cfg.Storage, cfg.Random, cfg.Logger)
	wsHandler := ws.NewHandler(cfg.Registry, cfg.Logger)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	api.HandleFunc("/rooms", roomHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{code}/join", roomHandler.Join).Methods(http.MethodPost)

	// The stream endpoint sits outside the versioned prefix; its URL is
	// handed out verbatim in room creation responses
	r.Handle("/ws", recoveryMiddleware(loggingMiddleware(wsHandler))).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.HealthResponse{Status: "ok"})
}
