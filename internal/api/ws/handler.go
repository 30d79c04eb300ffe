// Package ws upgrades HTTP requests to websocket sessions and bridges them
// to room actors. Each accepted connection becomes one room.Session; the
// actor never touches the socket directly.
package ws

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/projectr/roomserver/internal/api/apierr"
	"github.com/projectr/roomserver/internal/model"
	"github.com/projectr/roomserver/internal/room"
	"github.com/projectr/roomserver/internal/rules"
)

// Handler handles GET /ws?code=&token=
type Handler struct {
	registry *room.Registry
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a websocket handler backed by the given actor registry
func NewHandler(registry *room.Registry, logger *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Room access is already guarded by the token; cross-origin
			// browser clients are expected
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

// ServeHTTP validates the query parameters, upgrades the connection, and
// runs the session pumps until the connection dies
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	code := rules.NormalizeRoomCode(r.URL.Query().Get("code"))
	token := r.URL.Query().Get("token")

	if !rules.IsValidRoomCode(code) || token == "" {
		http.Error(w, "missing or invalid code/token", http.StatusBadRequest)
		return
	}

	actor := h.registry.GetOrCreate(code)

	// Reject before accepting the socket; the in-stream error path below
	// only covers a record removed between this check and the attach
	known, err := actor.HasPlayer(r.Context(), token)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	if !known {
		apierr.WriteError(w, model.ErrUnknownToken)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.logger.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	sess := newSession(conn, actor, token, h.logger)
	go sess.writePump()

	if err := actor.Attach(r.Context(), token, sess); err != nil {
		// The actor already sent the error event and closed the session;
		// the write pump flushes both before dropping the socket
		if !errors.Is(err, model.ErrUnknownToken) {
			h.logger.Warn("attach failed",
				slog.String("room", string(code)),
				slog.String("error", err.Error()),
			)
			sess.Close("attach failed")
		}
		return
	}

	sess.readPump()
}
