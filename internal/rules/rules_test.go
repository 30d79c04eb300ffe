package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/projectr/roomserver/internal/model"
)

func TestNormalizeRoomCode(t *testing.T) {
	assert.Equal(t, model.RoomCode("ABC12"), NormalizeRoomCode("abc12"))
	assert.Equal(t, model.RoomCode("ABC12"), NormalizeRoomCode("  AbC12\n"))
	assert.Equal(t, model.RoomCode(""), NormalizeRoomCode("   "))
}

func TestIsValidRoomCode(t *testing.T) {
	assert.True(t, IsValidRoomCode("ABC12"))
	assert.True(t, IsValidRoomCode("ZZZZZ"))
	assert.True(t, IsValidRoomCode("00000"))

	assert.False(t, IsValidRoomCode(""), "empty code")
	assert.False(t, IsValidRoomCode("ABCD"), "too short")
	assert.False(t, IsValidRoomCode("ABCDEF"), "too long")
	assert.False(t, IsValidRoomCode("abc12"), "lowercase not in alphabet")
	assert.False(t, IsValidRoomCode("AB-12"), "punctuation not in alphabet")
}

func TestIsValidChatText(t *testing.T) {
	assert.True(t, IsValidChatText("hello"))
	assert.True(t, IsValidChatText("  padded  "))
	assert.True(t, IsValidChatText(strings.Repeat("a", ChatTextMaxLen)))

	assert.False(t, IsValidChatText(""))
	assert.False(t, IsValidChatText("   \t\n"))
	assert.False(t, IsValidChatText(strings.Repeat("a", ChatTextMaxLen+1)))
}

func TestIsValidChatTextCountsRunes(t *testing.T) {
	// Multi-byte characters count as single runes
	assert.True(t, IsValidChatText(strings.Repeat("☃", ChatTextMaxLen)))
	assert.False(t, IsValidChatText(strings.Repeat("☃", ChatTextMaxLen+1)))
}

func TestDefaultNickname(t *testing.T) {
	assert.Equal(t, "Player 1", DefaultNickname(model.SideP1))
	assert.Equal(t, "Player 2", DefaultNickname(model.SideP2))
}
