package room

import (
	"log/slog"
	"sync"

	"github.com/projectr/roomserver/internal/dependencies/clock"
	"github.com/projectr/roomserver/internal/model"
	"github.com/projectr/roomserver/internal/storage"
)

// Registry maps room codes to their single live actor. It is the
// process-local implementation of the routing contract the state machine
// depends on: at any moment the same code resolves to the same actor, and
// at most one actor owns a room's state.
type Registry struct {
	mu     sync.Mutex
	actors map[model.RoomCode]*Actor

	store  storage.Storage
	clock  clock.Clock
	cfg    Config
	logger *slog.Logger
}

// NewRegistry creates a new actor registry
func NewRegistry(store storage.Storage, clk clock.Clock, cfg Config, logger *slog.Logger) *Registry {
	return &Registry{
		actors: make(map[model.RoomCode]*Actor),
		store:  store,
		clock:  clk,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "room")),
	}
}

// GetOrCreate returns the actor for code, starting one if none is live
func (r *Registry) GetOrCreate(code model.RoomCode) *Actor {
	r.mu.Lock()
	defer r.mu.Unlock()

	if actor, ok := r.actors[code]; ok {
		return actor
	}

	actor := NewActor(code, r.store, r.clock, r.cfg, r.logger)
	r.actors[code] = actor
	go actor.Run()
	r.logger.Info("room actor created", slog.String("room", string(code)))
	return actor
}

// Get returns the live actor for code, or nil if none exists
func (r *Registry) Get(code model.RoomCode) *Actor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.actors[code]
}

// Remove shuts down and forgets the actor for code
func (r *Registry) Remove(code model.RoomCode) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if actor, ok := r.actors[code]; ok {
		actor.Shutdown()
		delete(r.actors, code)
		r.logger.Info("room actor removed", slog.String("room", string(code)))
	}
}

// CloseAll shuts down every live actor (used on server shutdown)
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for code, actor := range r.actors {
		actor.Shutdown()
		delete(r.actors, code)
	}
}

// Len returns the number of live actors
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.actors)
}
