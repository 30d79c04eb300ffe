package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/projectr/roomserver/internal/protocol"
	"github.com/projectr/roomserver/internal/room"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Outbound buffer per connection. A peer that cannot drain this fast
	// loses messages rather than stalling the room.
	sendBufferSize = 256
)

// session bridges one websocket connection to a room actor. It implements
// room.Session: Send never blocks the actor and Close is idempotent.
type session struct {
	conn   *websocket.Conn
	actor  *room.Actor
	token  string
	logger *slog.Logger

	send chan []byte

	mu          sync.Mutex
	closed      bool
	closeReason string
	done        chan struct{}
}

func newSession(conn *websocket.Conn, actor *room.Actor, token string, logger *slog.Logger) *session {
	return &session{
		conn:   conn,
		actor:  actor,
		token:  token,
		logger: logger,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// Send queues an encoded message for the write pump, dropping it if the
// peer's buffer is full
func (s *session) Send(msg *protocol.ServerMessage) {
	data, err := msg.Encode()
	if err != nil {
		s.logger.Error("failed to encode stream message", slog.String("error", err.Error()))
		return
	}

	select {
	case s.send <- data:
	case <-s.done:
	default:
		s.logger.Warn("dropping message for slow peer", slog.String("type", msg.Type))
	}
}

// Close signals the write pump to flush and close the connection
func (s *session) Close(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.closeReason = reason
	close(s.done)
}

func (s *session) reason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeReason
}

// writePump moves queued messages onto the wire and keeps the connection
// alive with pings. It owns all writes to the socket.
func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case data := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.Close("write failed")
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close("ping failed")
				return
			}

		case <-s.done:
			// Flush anything already queued, then say goodbye
			for {
				select {
				case data := <-s.send:
					_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
					_ = s.conn.WriteMessage(websocket.TextMessage, data)
				default:
					msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, s.reason())
					_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
					_ = s.conn.WriteMessage(websocket.CloseMessage, msg)
					return
				}
			}
		}
	}
}

// readPump feeds inbound frames to the actor until the connection dies,
// then routes the drop through the actor's disconnect policy
func (s *session) readPump() {
	defer func() {
		s.Close("connection closed")
		s.actor.Disconnect(s.token, s)
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read error", slog.String("error", err.Error()))
			}
			return
		}
		s.actor.HandleMessage(s.token, data)
	}
}
