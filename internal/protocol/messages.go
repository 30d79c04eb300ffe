// Package protocol defines the JSON messages exchanged over a room's
// bidirectional stream. Shapes are kept flat and explicit so the wire
// format never depends on internal state layout.
package protocol

import (
	"encoding/json"
	"errors"

	"github.com/projectr/roomserver/internal/model"
)

// Client message types
const (
	TypeHello     = "hello"
	TypeChat      = "chat"
	TypeStartGame = "start_game"
	TypeLeaveRoom = "leave_room"

	// Gameplay placeholders: accepted and shape-checked, but not yet
	// authoritatively resolved
	TypeSubmitPlacement  = "submit_placement"
	TypeConfirmRevealAck = "confirm_reveal_ack"
	TypeSubmitCardSelect = "submit_card_select"
	TypeSubmitTurn       = "submit_turn"
)

// Server message types
const (
	TypeHelloOK    = "hello_ok"
	TypeSnapshot   = "snapshot"
	TypeError      = "error"
	TypeRoomClosed = "room_closed"
	// TypeChat is shared by both directions
)

// Error codes surfaced to clients on the stream
const (
	CodeBadJSON         = "bad_json"
	CodeUnknownMessage  = "unknown_message"
	CodeNotHost         = "not_host"
	CodeBadPhase        = "bad_phase"
	CodeNeedTwoPlayers  = "need_two_players"
	CodeChatInvalid     = "chat_invalid"
	CodeChatRateLimited = "chat_rate_limited"
	CodeUnknownToken    = "unknown_token"
	CodeNotImplemented  = "not_implemented"
)

// SystemSide is the fromSide value for server-originated chat notices
const SystemSide = "system"

// ErrMalformed indicates a client message that could not be decoded
var ErrMalformed = errors.New("malformed client message")

// ClientMessage is a decoded client->server stream message.
// Gameplay payloads are carried opaquely; their shape is validated by the
// phase handlers once those are implemented.
type ClientMessage struct {
	Type     string `json:"type"`
	Nickname string `json:"nickname,omitempty"`
	Text     string `json:"text,omitempty"`

	Placements json.RawMessage `json:"placements,omitempty"`
	Selected   json.RawMessage `json:"selected,omitempty"`
	Turn       json.RawMessage `json:"turn,omitempty"`
}

// DecodeClientMessage parses raw stream text into a ClientMessage.
// Returns ErrMalformed for non-JSON input or a missing type discriminant.
func DecodeClientMessage(raw []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, ErrMalformed
	}
	if msg.Type == "" {
		return nil, ErrMalformed
	}
	return &msg, nil
}

// ServerMessage is a server->client stream message. Exactly the fields for
// the message's type are populated; the rest are omitted from the wire.
type ServerMessage struct {
	Type string `json:"type"`

	// hello_ok / snapshot
	Snapshot  *model.Snapshot  `json:"snapshot,omitempty"`
	YourSide  model.PlayerSide `json:"yourSide,omitempty"`
	YourToken string           `json:"yourToken,omitempty"`

	// chat
	FromSide     string `json:"fromSide,omitempty"`
	Text         string `json:"text,omitempty"`
	ServerTimeMs int64  `json:"serverTimeMs,omitempty"`

	// error
	Code string `json:"code,omitempty"`

	// error / room_closed
	Message string `json:"message,omitempty"`

	// room_closed
	Reason model.EndReason `json:"reason,omitempty"`
}

// Encode serializes a server message for the wire
func (m *ServerMessage) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// HelloOK builds the one-time greeting sent immediately after attach
func HelloOK(snapshot model.Snapshot, side model.PlayerSide, token string) *ServerMessage {
	return &ServerMessage{
		Type:      TypeHelloOK,
		Snapshot:  &snapshot,
		YourSide:  side,
		YourToken: token,
	}
}

// SnapshotMessage builds a snapshot broadcast
func SnapshotMessage(snapshot model.Snapshot) *ServerMessage {
	return &ServerMessage{Type: TypeSnapshot, Snapshot: &snapshot}
}

// ChatMessage builds a relayed chat message tagged with the sender's side
func ChatMessage(fromSide model.PlayerSide, text string, serverTimeMs int64) *ServerMessage {
	return &ServerMessage{
		Type:         TypeChat,
		FromSide:     string(fromSide),
		Text:         text,
		ServerTimeMs: serverTimeMs,
	}
}

// SystemChat builds a server-originated chat notice
func SystemChat(text string, serverTimeMs int64) *ServerMessage {
	return &ServerMessage{
		Type:         TypeChat,
		FromSide:     SystemSide,
		Text:         text,
		ServerTimeMs: serverTimeMs,
	}
}

// ErrorMessage builds a stream-level error reply
func ErrorMessage(code, message string) *ServerMessage {
	return &ServerMessage{Type: TypeError, Code: code, Message: message}
}

// RoomClosed builds the terminal notice sent before sessions are closed
func RoomClosed(reason model.EndReason, message string) *ServerMessage {
	return &ServerMessage{Type: TypeRoomClosed, Reason: reason, Message: message}
}
