// Package engine implements the session lifecycle and the turn protocol on
// top of the session, roster and game-state repositories.
//
// Every mutating operation for a session runs while holding that session's
// lock, and the resulting snapshot is broadcast before the lock is released,
// so watchers observe mutations in the order they were applied.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"yacht-dice/internal/broadcast"
	"yacht-dice/internal/game"

	"github.com/google/uuid"
)

const defaultJoinCodeAttempts = 5

// Broadcaster delivers a payload to everyone watching a session.
type Broadcaster interface {
	Broadcast(sessionID string, payload any)
}

// Options tunes an Engine. Zero values select defaults.
type Options struct {
	JoinCodeAttempts int
	// Roll returns one die face in 1..6.
	Roll   func() int
	NewID  func() string
	Logger *slog.Logger
}

type Engine struct {
	sessions         game.SessionRepository
	players          game.PlayerRepository
	states           game.GameStateRepository
	hub              Broadcaster
	locks            *sessionLocks
	roll             func() int
	newID            func() string
	joinCodeAttempts int
	logger           *slog.Logger
}

func New(sessions game.SessionRepository, players game.PlayerRepository, states game.GameStateRepository, hub Broadcaster, opts Options) *Engine {
	e := &Engine{
		sessions:         sessions,
		players:          players,
		states:           states,
		hub:              hub,
		locks:            newSessionLocks(),
		roll:             opts.Roll,
		newID:            opts.NewID,
		joinCodeAttempts: opts.JoinCodeAttempts,
		logger:           opts.Logger,
	}
	if e.roll == nil {
		e.roll = rollDie
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	if e.joinCodeAttempts <= 0 {
		e.joinCodeAttempts = defaultJoinCodeAttempts
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

func rollDie() int {
	return rand.IntN(6) + 1
}

// View loads the full snapshot of a session.
func (e *Engine) View(ctx context.Context, sessionID string) (*game.View, error) {
	session, err := e.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return e.viewOf(ctx, session)
}

func (e *Engine) viewOf(ctx context.Context, session *game.Session) (*game.View, error) {
	players, err := e.players.FindBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	view := &game.View{Session: *session, Players: players}
	if session.Status == game.StatusWaiting {
		return view, nil
	}
	state, err := e.states.FindBySession(ctx, session.ID)
	if err != nil && !errors.Is(err, game.ErrNotFound) {
		return nil, fmt.Errorf("load game state: %w", err)
	}
	view.State = state
	return view, nil
}

// publish reloads the session and pushes it to watchers. Must be called
// with the session lock held.
func (e *Engine) publish(ctx context.Context, sessionID string) (*game.View, error) {
	session, err := e.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	view, err := e.viewOf(ctx, session)
	if err != nil {
		return nil, err
	}
	if e.hub == nil {
		return view, nil
	}
	e.hub.Broadcast(sessionID, broadcast.Envelope{Type: broadcast.TypeState, Payload: view})
	if session.Status == game.StatusFinished {
		e.hub.Broadcast(sessionID, broadcast.Envelope{Type: broadcast.TypeGameOver, Payload: view})
	}
	return view, nil
}

func (e *Engine) loadSession(ctx context.Context, sessionID string) (*game.Session, error) {
	session, err := e.sessions.FindByID(ctx, sessionID)
	if errors.Is(err, game.ErrNotFound) {
		return nil, game.Fail(game.CodeSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return session, nil
}

func (e *Engine) lock(ctx context.Context, sessionID string) (func(), error) {
	unlock, err := e.locks.acquire(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("wait for session lock: %w", err)
	}
	return unlock, nil
}

func requireIdentity(identity game.Identity) error {
	if !identity.Valid() {
		return game.Fail(game.CodeUserOrGuestRequired)
	}
	return nil
}

func findSeat(players []game.Player, identity game.Identity) (game.Player, bool) {
	for _, player := range players {
		if player.Identity == identity {
			return player, true
		}
	}
	return game.Player{}, false
}
