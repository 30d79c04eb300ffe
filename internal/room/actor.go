package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/projectr/roomserver/internal/dependencies/clock"
	"github.com/projectr/roomserver/internal/model"
	"github.com/projectr/roomserver/internal/protocol"
	"github.com/projectr/roomserver/internal/rules"
	"github.com/projectr/roomserver/internal/storage"
)

// Config holds per-actor behavior settings
type Config struct {
	// HeartbeatInterval is how often the liveness tick fires
	HeartbeatInterval time.Duration

	// IdleTimeout, when non-zero, closes connections whose player has not
	// been seen within the timeout. Zero disables enforcement; the tick
	// then only refreshes liveness for connected players.
	IdleTimeout time.Duration

	// StorageTimeout bounds each storage read/write
	StorageTimeout time.Duration
}

// DefaultConfig returns sensible defaults for actor configuration
func DefaultConfig() Config {
	return Config{
		HeartbeatInterval: rules.HeartbeatInterval,
		IdleTimeout:       0,
		StorageTimeout:    5 * time.Second,
	}
}

// Actor is the single authoritative owner of one room's state.
//
// All operations are posted to a command channel and executed one at a time
// by the Run loop, so handlers may read-modify-persist RoomState without
// locks and every session observes a total order of state changes. Two
// actors for different codes share nothing and run fully concurrently.
type Actor struct {
	code   model.RoomCode
	store  storage.Storage
	clock  clock.Clock
	cfg    Config
	logger *slog.Logger

	commands chan func()
	done     chan struct{}

	// Owned exclusively by the Run loop
	state    *model.RoomState
	sessions map[string]Session
}

// NewActor creates an actor for the given room code. The caller must start
// its event loop with go actor.Run().
func NewActor(code model.RoomCode, store storage.Storage, clk clock.Clock, cfg Config, logger *slog.Logger) *Actor {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = rules.HeartbeatInterval
	}
	if cfg.StorageTimeout <= 0 {
		cfg.StorageTimeout = 5 * time.Second
	}
	return &Actor{
		code:     code,
		store:    store,
		clock:    clk,
		cfg:      cfg,
		logger:   logger.With(slog.String("room", string(code))),
		commands: make(chan func(), 64),
		done:     make(chan struct{}),
		sessions: make(map[string]Session),
	}
}

// Code returns the room code this actor owns
func (a *Actor) Code() model.RoomCode {
	return a.code
}

// Run executes the actor's event loop until Shutdown is called.
// It is the only goroutine that touches state and sessions.
func (a *Actor) Run() {
	ticker := time.NewTicker(a.cfg.HeartbeatInterval)
	defer ticker.Stop()

	a.logger.Debug("room actor started")
	for {
		select {
		case cmd := <-a.commands:
			cmd()
		case <-ticker.C:
			a.tick()
		case <-a.done:
			for token, sess := range a.sessions {
				sess.Close("server shutting down")
				delete(a.sessions, token)
			}
			a.logger.Debug("room actor stopped")
			return
		}
	}
}

// Shutdown stops the event loop and closes all sessions. Safe to call once;
// the registry is the only caller.
func (a *Actor) Shutdown() {
	close(a.done)
}

// do posts fn to the event loop and waits for it to complete
func (a *Actor) do(ctx context.Context, fn func()) error {
	executed := make(chan struct{})
	wrapped := func() {
		fn()
		close(executed)
	}

	select {
	case a.commands <- wrapped:
	case <-a.done:
		return model.ErrActorClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-executed:
		return nil
	case <-a.done:
		return model.ErrActorClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Init ensures durable state exists for this room. Idempotent: repeated
// calls neither recreate nor mutate an existing room.
func (a *Actor) Init(ctx context.Context) error {
	if !rules.IsValidRoomCode(a.code) {
		return model.ErrInvalidRoomCode
	}
	return a.do(ctx, func() {
		a.ensureLoaded()
		a.persist()
	})
}

// Join ensures a player record exists for token and returns its side.
// An existing token re-joins its original side (optionally updating the
// nickname); a new token takes the next free side, or fails with
// ErrRoomFull at capacity. Join may be called before any connection is
// attached.
func (a *Actor) Join(ctx context.Context, token, nickname string) (model.PlayerSide, error) {
	if token == "" {
		return "", model.ErrEmptyToken
	}

	var side model.PlayerSide
	var joinErr error
	err := a.do(ctx, func() {
		a.ensureLoaded()
		side, joinErr = a.ensurePlayer(token, nickname)
		if joinErr == nil {
			a.persist()
		}
	})
	if err != nil {
		return "", err
	}
	return side, joinErr
}

// HasPlayer reports whether token has a player record in this room. It runs
// through the command loop so the answer is ordered against joins and
// disconnect policy; the transport uses it to reject an upgrade before
// accepting the socket.
func (a *Actor) HasPlayer(ctx context.Context, token string) (bool, error) {
	var known bool
	err := a.do(ctx, func() {
		a.ensureLoaded()
		known = a.state.FindPlayer(token) != nil
	})
	if err != nil {
		return false, err
	}
	return known, nil
}

// Attach binds a live session to token after a successful upgrade. A second
// attach for the same token evicts the previous session (last-writer-wins)
// without touching the durable record. Unknown tokens get an explanatory
// error event, a close, and ErrUnknownToken.
func (a *Actor) Attach(ctx context.Context, token string, sess Session) error {
	var attachErr error
	err := a.do(ctx, func() {
		a.ensureLoaded()

		player := a.state.FindPlayer(token)
		if player == nil {
			sess.Send(protocol.ErrorMessage(protocol.CodeUnknownToken, "unknown token"))
			sess.Close("unknown token")
			attachErr = model.ErrUnknownToken
			return
		}

		if prev, ok := a.sessions[token]; ok {
			prev.Close("replaced by a newer connection")
		}
		a.sessions[token] = sess

		now := a.clock.NowMs()
		player.IsConnected = true
		player.LastSeenMs = now

		sess.Send(protocol.HelloOK(model.NewSnapshot(a.state, now), player.Side, token))
		a.broadcastSnapshot()
		a.broadcastSystem(fmt.Sprintf("%s connected.", player.Nickname))
		a.persist()
	})
	if err != nil {
		return err
	}
	return attachErr
}

// HandleMessage processes one inbound stream message for token. Malformed
// or unknown input yields an error event to the sender only; it never
// mutates state or crashes the actor.
func (a *Actor) HandleMessage(token string, raw []byte) {
	_ = a.do(context.Background(), func() {
		a.ensureLoaded()

		player := a.state.FindPlayer(token)
		if player == nil {
			// Session outlived its record (e.g. slot was reopened)
			return
		}

		msg, err := protocol.DecodeClientMessage(raw)
		if err != nil {
			a.sendTo(token, protocol.ErrorMessage(protocol.CodeBadJSON, "malformed message"))
			return
		}

		switch msg.Type {
		case protocol.TypeHello:
			player.LastSeenMs = a.clock.NowMs()
			a.handleHello(player, msg)
		case protocol.TypeChat:
			player.LastSeenMs = a.clock.NowMs()
			a.handleChat(player, msg.Text)
		case protocol.TypeStartGame:
			player.LastSeenMs = a.clock.NowMs()
			a.handleStartGame(player)
		case protocol.TypeLeaveRoom:
			player.LastSeenMs = a.clock.NowMs()
			a.handleLeave(player)
		case protocol.TypeSubmitPlacement,
			protocol.TypeConfirmRevealAck,
			protocol.TypeSubmitCardSelect,
			protocol.TypeSubmitTurn:
			// Extension point: phase resolution plugs in here
			player.LastSeenMs = a.clock.NowMs()
			a.sendTo(token, protocol.ErrorMessage(protocol.CodeNotImplemented, "not implemented yet"))
		default:
			a.sendTo(token, protocol.ErrorMessage(protocol.CodeUnknownMessage, "unknown message type"))
		}
	})
}

// Disconnect handles the close of a session's underlying connection. The
// session handle is passed so a stale close from an evicted connection
// cannot tear down its replacement.
func (a *Actor) Disconnect(token string, sess Session) {
	_ = a.do(context.Background(), func() {
		current, ok := a.sessions[token]
		if !ok || current != sess {
			return
		}
		delete(a.sessions, token)

		a.ensureLoaded()
		player := a.state.FindPlayer(token)
		if player == nil {
			return
		}

		player.IsConnected = false
		player.LastSeenMs = a.clock.NowMs()

		a.applyDisconnectPolicy(*player)
		a.persist()
		a.broadcastSnapshot()
	})
}

// --- handlers, all executed on the Run loop ---

func (a *Actor) handleHello(player *model.PlayerRecord, msg *protocol.ClientMessage) {
	if nickname := strings.TrimSpace(msg.Nickname); nickname != "" {
		player.Nickname = nickname
	}
	a.sendTo(player.Token, protocol.SnapshotMessage(model.NewSnapshot(a.state, a.clock.NowMs())))
	a.persist()
}

func (a *Actor) handleChat(player *model.PlayerRecord, text string) {
	if !rules.IsValidChatText(text) {
		a.sendTo(player.Token, protocol.ErrorMessage(protocol.CodeChatInvalid, "chat text is empty or too long"))
		return
	}

	if !a.tryConsumeChatQuota(player) {
		a.sendTo(player.Token, protocol.ErrorMessage(protocol.CodeChatRateLimited, "sending too fast, try again shortly"))
		return
	}

	a.broadcast(protocol.ChatMessage(player.Side, strings.TrimSpace(text), a.clock.NowMs()))
	a.persist()
}

func (a *Actor) handleStartGame(player *model.PlayerRecord) {
	if !player.IsHost {
		a.sendTo(player.Token, protocol.ErrorMessage(protocol.CodeNotHost, "only the host can start the game"))
		return
	}
	if a.state.Phase != model.PhaseWaiting {
		a.sendTo(player.Token, protocol.ErrorMessage(protocol.CodeBadPhase, "cannot start from the current phase"))
		return
	}
	if len(a.state.Players) < rules.MaxPlayers {
		a.sendTo(player.Token, protocol.ErrorMessage(protocol.CodeNeedTwoPlayers, "waiting for a second player"))
		return
	}

	a.state.Phase = model.PhasePlacing
	a.broadcastSystem("Game starting. Moving to placement.")
	a.broadcastSnapshot()
	a.persist()
}

func (a *Actor) handleLeave(player *model.PlayerRecord) {
	if sess, ok := a.sessions[player.Token]; ok {
		sess.Close("leave_room")
		delete(a.sessions, player.Token)
	}
	player.IsConnected = false

	a.applyDisconnectPolicy(*player)
	a.persist()
	a.broadcastSnapshot()
}

// applyDisconnectPolicy runs the phase-sensitive rules for a player that
// left or dropped. The record is passed by value: the waiting-phase branches
// mutate the player list and would invalidate a pointer into it.
func (a *Actor) applyDisconnectPolicy(player model.PlayerRecord) {
	switch {
	case a.state.Phase == model.PhaseWaiting && player.IsHost:
		// Host leaving before start closes the room. The code stays usable:
		// durable state is wiped and a fresh waiting room takes its place.
		a.broadcast(protocol.RoomClosed(model.EndReasonHostLeft, "The host left, so the room was closed."))
		for token, sess := range a.sessions {
			sess.Close("room_closed")
			delete(a.sessions, token)
		}
		a.deleteDurable()
		a.state = model.NewRoomState(a.code, a.clock.NowMs())

	case a.state.Phase == model.PhaseWaiting:
		// Non-host leaving in waiting reopens the slot
		a.state.RemovePlayer(player.Token)
		a.broadcastSystem("Your opponent left. A new player can join.")

	case a.state.Phase != model.PhaseResult:
		// Leaving during game flow forfeits
		var winner *model.PlayerSide
		if opponent := a.state.OpponentOf(player.Token); opponent != nil {
			side := opponent.Side
			winner = &side
		}
		a.state.Phase = model.PhaseResult
		a.state.Result = &model.RoomResult{
			WinnerSide: winner,
			Reason:     model.EndReasonForfeit,
		}
		a.broadcastSystem("Forfeit. Moving to the result screen.")
	}
}

// ensurePlayer finds or creates the record for token, per the join rules
func (a *Actor) ensurePlayer(token, nickname string) (model.PlayerSide, error) {
	nickname = strings.TrimSpace(nickname)

	if existing := a.state.FindPlayer(token); existing != nil {
		if nickname != "" {
			existing.Nickname = nickname
		}
		return existing.Side, nil
	}

	if len(a.state.Players) >= rules.MaxPlayers {
		return "", model.ErrRoomFull
	}

	side := model.SideP2
	if a.state.Host() == nil {
		side = model.SideP1
	}
	if nickname == "" {
		nickname = rules.DefaultNickname(side)
	}

	a.state.Players = append(a.state.Players, model.PlayerRecord{
		Side:       side,
		Token:      token,
		Nickname:   nickname,
		IsHost:     side == model.SideP1,
		LastSeenMs: a.clock.NowMs(),
	})
	return side, nil
}

// tryConsumeChatQuota applies the fixed-window rate limiter to player
func (a *Actor) tryConsumeChatQuota(player *model.PlayerRecord) bool {
	now := a.clock.NowMs()
	windowMs := rules.ChatRateLimitWindow.Milliseconds()

	if player.ChatWindowStartMs == 0 || now-player.ChatWindowStartMs > windowMs {
		player.ChatWindowStartMs = now
		player.ChatCountInWindow = 0
	}

	if player.ChatCountInWindow >= rules.ChatRateLimitMaxCount {
		return false
	}

	player.ChatCountInWindow++
	return true
}

// tick is the periodic liveness hook. With IdleTimeout unset it only
// refreshes liveness for connected players; actual disconnect enforcement
// stays off unless explicitly configured.
func (a *Actor) tick() {
	if a.state == nil {
		return
	}
	now := a.clock.NowMs()

	if a.cfg.IdleTimeout > 0 {
		limit := a.cfg.IdleTimeout.Milliseconds()
		for token, sess := range a.sessions {
			player := a.state.FindPlayer(token)
			if player != nil && now-player.LastSeenMs > limit {
				// Closing the transport routes the drop through the normal
				// disconnect policy via the connection's close callback
				sess.Close("idle timeout")
			}
		}
		return
	}

	for i := range a.state.Players {
		if a.state.Players[i].IsConnected {
			a.state.Players[i].LastSeenMs = now
		}
	}
}

// --- state and session plumbing, all executed on the Run loop ---

// ensureLoaded lazily reads durable state, falling back to a fresh waiting
// room when nothing (or something unreadable) is stored. Loaded players are
// reconciled to disconnected: sessions never survive a restart.
func (a *Actor) ensureLoaded() {
	if a.state != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.StorageTimeout)
	defer cancel()

	saved, err := a.store.GetRoom(ctx, a.code)
	if err == nil && saved.RoomCode == a.code {
		for i := range saved.Players {
			saved.Players[i].IsConnected = false
		}
		a.state = saved
		return
	}
	if err != nil && !errors.Is(err, model.ErrRoomNotFound) {
		a.logger.Warn("could not load stored room state, starting fresh",
			slog.String("error", err.Error()))
	}

	a.state = model.NewRoomState(a.code, a.clock.NowMs())
}

func (a *Actor) persist() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.StorageTimeout)
	defer cancel()

	if err := a.store.SaveRoom(ctx, a.state); err != nil {
		a.logger.Error("failed to persist room state", slog.String("error", err.Error()))
	}
}

func (a *Actor) deleteDurable() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.StorageTimeout)
	defer cancel()

	if err := a.store.DeleteRoom(ctx, a.code); err != nil {
		a.logger.Error("failed to delete room state", slog.String("error", err.Error()))
	}
}

func (a *Actor) sendTo(token string, msg *protocol.ServerMessage) {
	if sess, ok := a.sessions[token]; ok {
		sess.Send(msg)
	}
}

func (a *Actor) broadcast(msg *protocol.ServerMessage) {
	for _, sess := range a.sessions {
		sess.Send(msg)
	}
}

func (a *Actor) broadcastSnapshot() {
	a.broadcast(protocol.SnapshotMessage(model.NewSnapshot(a.state, a.clock.NowMs())))
}

func (a *Actor) broadcastSystem(text string) {
	a.broadcast(protocol.SystemChat(text, a.clock.NowMs()))
}
