package room

import "github.com/projectr/roomserver/internal/protocol"

// Session is a live connection handle bound to a token. It has no durable
// form: on actor restart every session is gone and players are reconciled
// to disconnected until they re-attach.
//
// Implementations must make Send non-blocking (buffer and drop rather than
// stall the actor on a slow peer) and Close idempotent.
type Session interface {
	Send(msg *protocol.ServerMessage)
	Close(reason string)
}
