package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/projectr/roomserver/internal/api/apierr"
	"github.com/projectr/roomserver/internal/api/request"
	"github.com/projectr/roomserver/internal/api/response"
	"github.com/projectr/roomserver/internal/dependencies/random"
	"github.com/projectr/roomserver/internal/model"
	"github.com/projectr/roomserver/internal/room"
	"github.com/projectr/roomserver/internal/rules"
	"github.com/projectr/roomserver/internal/storage"
)

// codeAllocAttempts bounds retries when a generated code is already taken
const codeAllocAttempts = 5

// RoomHandler handles room lifecycle endpoints
type RoomHandler struct {
	registry *room.Registry
	store    storage.Storage
	random   random.Random
	logger   *slog.Logger
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(registry *room.Registry, store storage.Storage, rnd random.Random, logger *slog.Logger) *RoomHandler {
	return &RoomHandler{
		registry: registry,
		store:    store,
		random:   rnd,
		logger:   logger,
	}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Empty body means default nickname
		req = request.CreateRoomRequest{}
	}

	code, err := h.allocateCode(r)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	actor := h.registry.GetOrCreate(code)
	if err := actor.Init(r.Context()); err != nil {
		apierr.WriteError(w, err)
		return
	}

	token := h.random.Token()
	side, err := actor.Join(r.Context(), token, req.Nickname)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	h.logger.Info("room created", slog.String("room", string(code)))
	response.JSON(w, http.StatusCreated, response.RoomResponse{
		OK:       true,
		RoomCode: string(code),
		Token:    token,
		Side:     string(side),
		WSURL:    StreamURL(code, token),
	})
}

// Join handles POST /api/v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := rules.NormalizeRoomCode(mux.Vars(r)["code"])
	if !rules.IsValidRoomCode(code) {
		apierr.WriteError(w, model.ErrInvalidRoomCode)
		return
	}

	var req request.JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = request.JoinRoomRequest{}
	}

	// A join must target a room that was actually created; a live actor
	// counts even if its first persist has not landed yet
	if h.registry.Get(code) == nil {
		exists, err := h.store.RoomExists(r.Context(), code)
		if err != nil {
			apierr.WriteError(w, err)
			return
		}
		if !exists {
			apierr.WriteError(w, model.ErrRoomNotFound)
			return
		}
	}

	actor := h.registry.GetOrCreate(code)
	token := h.random.Token()
	side, err := actor.Join(r.Context(), token, req.Nickname)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	h.logger.Info("player joined room",
		slog.String("room", string(code)),
		slog.String("side", string(side)),
	)
	response.JSON(w, http.StatusOK, response.RoomResponse{
		OK:       true,
		RoomCode: string(code),
		Token:    token,
		Side:     string(side),
		WSURL:    StreamURL(code, token),
	})
}

// allocateCode generates an unused room code
func (h *RoomHandler) allocateCode(r *http.Request) (model.RoomCode, error) {
	for i := 0; i < codeAllocAttempts; i++ {
		code := model.RoomCode(h.random.String(rules.RoomCodeLength, rules.RoomCodeAlphabet))

		if h.registry.Get(code) != nil {
			continue
		}
		exists, err := h.store.RoomExists(r.Context(), code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", apierr.NewInternalError()
}

// StreamURL builds the relative websocket URL for a room session
func StreamURL(code model.RoomCode, token string) string {
	q := url.Values{}
	q.Set("code", string(code))
	q.Set("token", token)
	return "/ws?" + q.Encode()
}
