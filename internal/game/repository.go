package game

import "context"

// SessionRepository persists Session aggregates.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, id string) (*Session, error)
	FindByJoinCode(ctx context.Context, code string) (*Session, error)
	FindPublicWaiting(ctx context.Context) ([]Session, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	Delete(ctx context.Context, id string) error
}

// PlayerRepository persists the roster of each session.
type PlayerRepository interface {
	AddPlayer(ctx context.Context, player *Player) error
	FindBySession(ctx context.Context, sessionID string) ([]Player, error)
	RemovePlayer(ctx context.Context, playerID string) error
	FindBySessionAndIdentity(ctx context.Context, sessionID string, identity Identity) (*Player, error)
	CountBySession(ctx context.Context, sessionID string) (int, error)
	FindSessionIDsByIdentity(ctx context.Context, identity Identity) ([]string, error)
	UpdateOrderIndex(ctx context.Context, playerID string, orderIndex int) error
}

// GameStateRepository persists the single mutable state row of a started
// session.
type GameStateRepository interface {
	CreateState(ctx context.Context, state *GameState) error
	FindBySession(ctx context.Context, sessionID string) (*GameState, error)
	UpdateState(ctx context.Context, sessionID string, update GameStateUpdate) error
}
