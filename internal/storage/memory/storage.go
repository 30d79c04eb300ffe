package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/projectr/roomserver/internal/model"
	"github.com/projectr/roomserver/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are stored as serialized JSON so reads return independent copies;
// a room actor's live state must never alias the stored record.
type Storage struct {
	mu    sync.RWMutex
	rooms map[model.RoomCode][]byte
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		rooms: make(map[model.RoomCode][]byte),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveRoom(ctx context.Context, state *model.RoomState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[state.RoomCode] = data
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.RoomState, error) {
	s.mu.RLock()
	data, ok := s.rooms[code]
	s.mu.RUnlock()

	if !ok {
		return nil, model.ErrRoomNotFound
	}

	var state model.RoomState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, code model.RoomCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
	return nil
}

func (s *Storage) RoomExists(ctx context.Context, code model.RoomCode) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[code]
	return ok, nil
}
