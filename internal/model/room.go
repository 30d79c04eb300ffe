package model

// RoomCode is a short human-shareable identifier for joining rooms
type RoomCode string

// PlayerSide identifies which seat a player holds within a room
type PlayerSide string

const (
	SideP1 PlayerSide = "p1" // host
	SideP2 PlayerSide = "p2" // guest
)

// Other returns the opposing side
func (s PlayerSide) Other() PlayerSide {
	if s == SideP1 {
		return SideP2
	}
	return SideP1
}

// Phase represents the current stage of a room's lifecycle
type Phase string

const (
	PhaseWaiting    Phase = "waiting"
	PhasePlacing    Phase = "placing"
	PhaseReveal     Phase = "reveal"
	PhaseCardSelect Phase = "card_select"
	PhasePlaying    Phase = "playing"
	PhaseResult     Phase = "result"
)

// InGame reports whether the phase is part of active game flow
// (anything past waiting and before result)
func (p Phase) InGame() bool {
	switch p {
	case PhasePlacing, PhaseReveal, PhaseCardSelect, PhasePlaying:
		return true
	}
	return false
}

// EndReason explains why a room reached its result
type EndReason string

const (
	EndReasonNormal   EndReason = "normal"
	EndReasonForfeit  EndReason = "forfeit"
	EndReasonHostLeft EndReason = "host_left"
	EndReasonError    EndReason = "error"
)

// PlayerRecord is the durable per-player record within a room.
// The token is the player's re-attach secret; it is persisted with the
// room but must never appear in any outbound snapshot.
type PlayerRecord struct {
	Side        PlayerSide `json:"side"`
	Token       string     `json:"token"`
	Nickname    string     `json:"nickname"`
	IsHost      bool       `json:"isHost"`
	IsConnected bool       `json:"isConnected"`
	LastSeenMs  int64      `json:"lastSeenMs"`

	// Fixed-window chat rate limiter state
	ChatWindowStartMs int64 `json:"chatWindowStartMs"`
	ChatCountInWindow int   `json:"chatCountInWindow"`
}

// RoomResult records the outcome of a finished room
type RoomResult struct {
	WinnerSide *PlayerSide `json:"winnerSide,omitempty"`
	Reason     EndReason   `json:"reason"`
}

// RoomState is the authoritative, durable record for one room.
// It is owned exclusively by the room actor and persisted as a single unit.
type RoomState struct {
	RoomCode    RoomCode       `json:"roomCode"`
	Phase       Phase          `json:"phase"`
	CreatedAtMs int64          `json:"createdAtMs"`
	Players     []PlayerRecord `json:"players"`
	Result      *RoomResult    `json:"result,omitempty"`
}

// NewRoomState creates a fresh waiting room for the given code
func NewRoomState(code RoomCode, nowMs int64) *RoomState {
	return &RoomState{
		RoomCode:    code,
		Phase:       PhaseWaiting,
		CreatedAtMs: nowMs,
		Players:     []PlayerRecord{},
	}
}

// FindPlayer returns the player record for the given token, or nil
func (r *RoomState) FindPlayer(token string) *PlayerRecord {
	for i := range r.Players {
		if r.Players[i].Token == token {
			return &r.Players[i]
		}
	}
	return nil
}

// Host returns the host player record, or nil if no host has joined
func (r *RoomState) Host() *PlayerRecord {
	for i := range r.Players {
		if r.Players[i].IsHost {
			return &r.Players[i]
		}
	}
	return nil
}

// OpponentOf returns the player record whose token differs from the given
// token, or nil if no such player exists
func (r *RoomState) OpponentOf(token string) *PlayerRecord {
	for i := range r.Players {
		if r.Players[i].Token != token {
			return &r.Players[i]
		}
	}
	return nil
}

// RemovePlayer deletes the record for the given token, freeing its slot
func (r *RoomState) RemovePlayer(token string) {
	for i := range r.Players {
		if r.Players[i].Token == token {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return
		}
	}
}

// PlayerPublic is the token-free view of a player used in snapshots
type PlayerPublic struct {
	Side        PlayerSide `json:"side"`
	Nickname    string     `json:"nickname"`
	IsHost      bool       `json:"isHost"`
	IsConnected bool       `json:"isConnected"`
}

// Snapshot is the full read-model of room state broadcast to sessions.
// It is derived purely from RoomState; tokens never appear in it.
type Snapshot struct {
	RoomCode     RoomCode       `json:"roomCode"`
	Phase        Phase          `json:"phase"`
	Players      []PlayerPublic `json:"players"`
	ServerTimeMs int64          `json:"serverTimeMs"`
	Result       *RoomResult    `json:"result,omitempty"`
}

// NewSnapshot builds the broadcast view of a room at the given server time
func NewSnapshot(state *RoomState, nowMs int64) Snapshot {
	players := make([]PlayerPublic, len(state.Players))
	for i, p := range state.Players {
		players[i] = PlayerPublic{
			Side:        p.Side,
			Nickname:    p.Nickname,
			IsHost:      p.IsHost,
			IsConnected: p.IsConnected,
		}
	}

	var result *RoomResult
	if state.Result != nil {
		r := *state.Result
		result = &r
	}

	return Snapshot{
		RoomCode:     state.RoomCode,
		Phase:        state.Phase,
		Players:      players,
		ServerTimeMs: nowMs,
		Result:       result,
	}
}
