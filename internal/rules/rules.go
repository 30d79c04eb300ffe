// Package rules holds the static room policy: capacity, code format,
// chat limits and the phase-independent validation helpers. Everything
// here is pure; the room actor is the only consumer of these values.
package rules

import (
	"strings"
	"time"

	"github.com/projectr/roomserver/internal/model"
)

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 5
	// RoomCodeAlphabet is the characters allowed in room codes
	RoomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// MaxPlayers is the room capacity
	MaxPlayers = 2

	// ChatRateLimitWindow is the fixed window for the per-player chat quota
	ChatRateLimitWindow = 6 * time.Second
	// ChatRateLimitMaxCount is the number of chat messages allowed per window
	ChatRateLimitMaxCount = 3
	// ChatTextMaxLen is the maximum chat message length in runes
	ChatTextMaxLen = 120

	// HeartbeatInterval is how often the room actor's liveness tick fires
	HeartbeatInterval = 15 * time.Second
)

// NormalizeRoomCode trims and upper-cases a room code arriving over the wire
func NormalizeRoomCode(input string) model.RoomCode {
	return model.RoomCode(strings.ToUpper(strings.TrimSpace(input)))
}

// IsValidRoomCode reports whether the code has the expected length and
// contains only characters from the room code alphabet
func IsValidRoomCode(code model.RoomCode) bool {
	if len(code) != RoomCodeLength {
		return false
	}
	for _, c := range code {
		if !strings.ContainsRune(RoomCodeAlphabet, c) {
			return false
		}
	}
	return true
}

// IsValidChatText reports whether text is non-empty after trimming and
// within the length bound
func IsValidChatText(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	return len([]rune(trimmed)) <= ChatTextMaxLen
}

// DefaultNickname returns the display name used when a joiner provides none
func DefaultNickname(side model.PlayerSide) string {
	if side == model.SideP1 {
		return "Player 1"
	}
	return "Player 2"
}
