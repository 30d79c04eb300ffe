package redis

import (
	"fmt"

	"github.com/projectr/roomserver/internal/model"
)

// Key prefix for all room server data
const keyPrefix = "roomsrv"

// roomKey returns the Redis key for a room's durable state
func roomKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, code)
}
