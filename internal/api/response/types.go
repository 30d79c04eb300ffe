package response

// RoomResponse is the body returned by room creation and join
type RoomResponse struct {
	OK       bool   `json:"ok"`
	RoomCode string `json:"roomCode"`
	Token    string `json:"token"`
	Side     string `json:"side"`
	WSURL    string `json:"wsUrl"`
}

// HealthResponse is the body returned by the health endpoint
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body returned for any failed request
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
