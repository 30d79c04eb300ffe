package request

// CreateRoomRequest is the request body for creating a room.
// An empty body is allowed; the nickname then defaults server-side.
type CreateRoomRequest struct {
	Nickname string `json:"nickname,omitempty"`
}

// JoinRoomRequest is the request body for joining an existing room
type JoinRoomRequest struct {
	Nickname string `json:"nickname,omitempty"`
}
