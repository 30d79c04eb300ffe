package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrInvalidRoomCode = errors.New("invalid room code")

	// Player/session errors
	ErrUnknownToken = errors.New("unknown token")
	ErrEmptyToken   = errors.New("token must not be empty")

	// Actor errors
	ErrActorClosed = errors.New("room actor is closed")
)
