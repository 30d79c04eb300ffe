package storage

import (
	"context"

	"github.com/projectr/roomserver/internal/model"
)

// Storage defines the interface for durable room state.
// Each room is read and written as a single atomic record keyed by its code;
// there are no partial-field updates.
type Storage interface {
	SaveRoom(ctx context.Context, state *model.RoomState) error
	GetRoom(ctx context.Context, code model.RoomCode) (*model.RoomState, error)
	DeleteRoom(ctx context.Context, code model.RoomCode) error
	RoomExists(ctx context.Context, code model.RoomCode) (bool, error)
}
