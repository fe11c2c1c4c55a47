// Package store keeps sessions, rosters and game state in process memory.
// It backs the server when no database is configured and stands in for
// Postgres in tests.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"yacht-dice/internal/game"
)

type Store struct {
	mu       sync.Mutex
	sessions map[string]game.Session
	players  map[string]game.Player
	states   map[string]game.GameState
	now      func() time.Time
}

func New() *Store {
	return &Store{
		sessions: make(map[string]game.Session),
		players:  make(map[string]game.Player),
		states:   make(map[string]game.GameState),
		now:      timeNowUTC,
	}
}

// Sessions, Players and States expose the store under each repository
// contract.
func (s *Store) Sessions() game.SessionRepository { return sessionRepo{s} }

func (s *Store) Players() game.PlayerRepository { return playerRepo{s} }

func (s *Store) States() game.GameStateRepository { return stateRepo{s} }

type sessionRepo struct{ s *Store }

func (r sessionRepo) Create(_ context.Context, session *game.Session) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.sessions {
		if existing.JoinCode == session.JoinCode {
			return game.ErrDuplicateJoinCode
		}
	}
	now := s.now()
	session.CreatedAt = now
	session.UpdatedAt = now
	s.sessions[session.ID] = *session
	return nil
}

func (r sessionRepo) FindByID(_ context.Context, id string) (*game.Session, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, game.ErrNotFound
	}
	return &session, nil
}

func (r sessionRepo) FindByJoinCode(_ context.Context, code string) (*game.Session, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range s.sessions {
		if session.JoinCode == code {
			found := session
			return &found, nil
		}
	}
	return nil, game.ErrNotFound
}

func (r sessionRepo) FindPublicWaiting(_ context.Context) ([]game.Session, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]game.Session, 0)
	for _, session := range s.sessions {
		if session.IsPublic && session.Status == game.StatusWaiting {
			list = append(list, session)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (r sessionRepo) UpdateStatus(_ context.Context, id string, status game.Status) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return game.ErrNotFound
	}
	session.Status = status
	session.UpdatedAt = s.now()
	s.sessions[id] = session
	return nil
}

func (r sessionRepo) Delete(_ context.Context, id string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return game.ErrNotFound
	}
	delete(s.sessions, id)
	delete(s.states, id)
	for playerID, player := range s.players {
		if player.SessionID == id {
			delete(s.players, playerID)
		}
	}
	return nil
}

type playerRepo struct{ s *Store }

func (r playerRepo) AddPlayer(_ context.Context, player *game.Player) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[player.SessionID]; !ok {
		return game.ErrNotFound
	}
	player.CreatedAt = s.now()
	s.players[player.ID] = *player
	return nil
}

func (r playerRepo) FindBySession(_ context.Context, sessionID string) ([]game.Player, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playersIn(sessionID), nil
}

func (r playerRepo) RemovePlayer(_ context.Context, playerID string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[playerID]; !ok {
		return game.ErrNotFound
	}
	delete(s.players, playerID)
	return nil
}

func (r playerRepo) FindBySessionAndIdentity(_ context.Context, sessionID string, identity game.Identity) (*game.Player, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, player := range s.players {
		if player.SessionID == sessionID && player.Identity == identity {
			found := player
			return &found, nil
		}
	}
	return nil, game.ErrNotFound
}

func (r playerRepo) CountBySession(_ context.Context, sessionID string) (int, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.playersIn(sessionID)), nil
}

func (r playerRepo) FindSessionIDsByIdentity(_ context.Context, identity game.Identity) ([]string, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, player := range s.players {
		if player.Identity != identity {
			continue
		}
		if _, ok := seen[player.SessionID]; ok {
			continue
		}
		seen[player.SessionID] = struct{}{}
		ids = append(ids, player.SessionID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r playerRepo) UpdateOrderIndex(_ context.Context, playerID string, orderIndex int) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[playerID]
	if !ok {
		return game.ErrNotFound
	}
	player.OrderIndex = orderIndex
	s.players[playerID] = player
	return nil
}

// playersIn must be called with s.mu held.
func (s *Store) playersIn(sessionID string) []game.Player {
	list := make([]game.Player, 0, game.MaxPlayers)
	for _, player := range s.players {
		if player.SessionID == sessionID {
			list = append(list, player)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].OrderIndex < list[j].OrderIndex
	})
	return list
}

type stateRepo struct{ s *Store }

func (r stateRepo) CreateState(_ context.Context, state *game.GameState) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[state.SessionID]; !ok {
		return game.ErrNotFound
	}
	state.UpdatedAt = s.now()
	s.states[state.SessionID] = state.Clone()
	return nil
}

func (r stateRepo) FindBySession(_ context.Context, sessionID string) (*game.GameState, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[sessionID]
	if !ok {
		return nil, game.ErrNotFound
	}
	out := state.Clone()
	return &out, nil
}

func (r stateRepo) UpdateState(_ context.Context, sessionID string, update game.GameStateUpdate) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[sessionID]
	if !ok {
		return game.ErrNotFound
	}
	update.Apply(&state)
	state.UpdatedAt = s.now()
	s.states[sessionID] = state.Clone()
	return nil
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}
