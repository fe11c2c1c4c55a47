package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"yacht-dice/internal/game"
	"yacht-dice/internal/scoring"
)

const maxNameLength = 48

type CreateInput struct {
	Name        string
	IsPublic    bool
	DisplayName string
}

// Create opens a WAITING session with the caller seated in slot 1.
func (e *Engine) Create(ctx context.Context, identity game.Identity, input CreateInput) (*game.View, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	displayName, err := normalizeDisplayName(input.DisplayName)
	if err != nil {
		return nil, err
	}
	name := normalizeText(input.Name)
	if name == "" {
		name = displayName + "'s game"
	}
	name = truncate(name, maxNameLength)

	session, err := e.createWithJoinCode(ctx, name, input.IsPublic)
	if err != nil {
		return nil, err
	}
	creator := &game.Player{
		ID:          e.newID(),
		SessionID:   session.ID,
		Slot:        1,
		Identity:    identity,
		DisplayName: displayName,
		OrderIndex:  0,
	}
	if err := e.players.AddPlayer(ctx, creator); err != nil {
		if delErr := e.sessions.Delete(ctx, session.ID); delErr != nil {
			e.logger.Error("cleanup after failed create", "session_id", session.ID, "error", delErr)
		}
		return nil, fmt.Errorf("seat creator: %w", err)
	}
	e.logger.Info("session created", "session_id", session.ID, "join_code", session.JoinCode, "public", session.IsPublic)
	return &game.View{Session: *session, Players: []game.Player{*creator}}, nil
}

func (e *Engine) createWithJoinCode(ctx context.Context, name string, isPublic bool) (*game.Session, error) {
	for attempt := 1; attempt <= e.joinCodeAttempts; attempt++ {
		code, err := game.NewJoinCode()
		if err != nil {
			return nil, fmt.Errorf("generate join code: %w", err)
		}
		if _, err := e.sessions.FindByJoinCode(ctx, code); err == nil {
			continue
		} else if !errors.Is(err, game.ErrNotFound) {
			return nil, fmt.Errorf("check join code: %w", err)
		}
		session := &game.Session{
			ID:       e.newID(),
			Name:     name,
			JoinCode: code,
			IsPublic: isPublic,
			Status:   game.StatusWaiting,
		}
		err = e.sessions.Create(ctx, session)
		if errors.Is(err, game.ErrDuplicateJoinCode) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		return session, nil
	}
	return nil, fmt.Errorf("no free join code after %d attempts", e.joinCodeAttempts)
}

// Join seats the caller in the lowest free slot of a WAITING session.
func (e *Engine) Join(ctx context.Context, sessionID string, identity game.Identity, displayName string) (*game.View, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	displayName, err := normalizeDisplayName(displayName)
	if err != nil {
		return nil, err
	}
	unlock, err := e.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := e.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != game.StatusWaiting {
		return nil, game.Fail(game.CodeSessionNotWaiting)
	}
	players, err := e.players.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	if len(players) >= game.MaxPlayers {
		return nil, game.Fail(game.CodeSessionFull)
	}
	if _, seated := findSeat(players, identity); seated {
		return nil, game.Fail(game.CodeAlreadyInSession)
	}
	player := &game.Player{
		ID:          e.newID(),
		SessionID:   sessionID,
		Slot:        lowestFreeSlot(players),
		Identity:    identity,
		DisplayName: displayName,
		OrderIndex:  len(players),
	}
	if err := e.players.AddPlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("add player: %w", err)
	}
	e.logger.Info("player joined", "session_id", sessionID, "slot", player.Slot, "identity", identity.Kind().String())
	return e.publish(ctx, sessionID)
}

// JoinByCode resolves a join code and then behaves like Join.
func (e *Engine) JoinByCode(ctx context.Context, joinCode string, identity game.Identity, displayName string) (*game.View, error) {
	session, err := e.FindByJoinCode(ctx, joinCode)
	if err != nil {
		return nil, err
	}
	return e.Join(ctx, session.ID, identity, displayName)
}

// Leave removes the caller from a WAITING session. The session is deleted
// when its last player leaves; otherwise turn order is compacted so the
// earliest remaining player becomes the creator.
func (e *Engine) Leave(ctx context.Context, sessionID string, identity game.Identity) error {
	if err := requireIdentity(identity); err != nil {
		return err
	}
	unlock, err := e.lock(ctx, sessionID)
	if err != nil {
		return err
	}
	defer unlock()

	session, err := e.loadSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Status != game.StatusWaiting {
		return game.Fail(game.CodeCannotLeaveStarted)
	}
	players, err := e.players.FindBySession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load players: %w", err)
	}
	seat, seated := findSeat(players, identity)
	if !seated {
		return game.Fail(game.CodeNotInSession)
	}
	if err := e.players.RemovePlayer(ctx, seat.ID); err != nil {
		return fmt.Errorf("remove player: %w", err)
	}
	remaining := make([]game.Player, 0, len(players))
	for _, player := range players {
		if player.ID != seat.ID {
			remaining = append(remaining, player)
		}
	}
	if len(remaining) == 0 {
		if err := e.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, game.ErrNotFound) {
			return fmt.Errorf("delete empty session: %w", err)
		}
		e.logger.Info("session deleted", "session_id", sessionID, "reason", "empty")
		return nil
	}
	for index, player := range remaining {
		if player.OrderIndex == index {
			continue
		}
		if err := e.players.UpdateOrderIndex(ctx, player.ID, index); err != nil {
			return fmt.Errorf("reorder players: %w", err)
		}
	}
	e.logger.Info("player left", "session_id", sessionID, "slot", seat.Slot)
	_, err = e.publish(ctx, sessionID)
	return err
}

// Start creates the game state and moves the session to PLAYING. Only the
// creator may start.
func (e *Engine) Start(ctx context.Context, sessionID string, identity game.Identity) (*game.View, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	unlock, err := e.lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := e.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != game.StatusWaiting {
		return nil, game.Fail(game.CodeSessionNotWaiting)
	}
	players, err := e.players.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	if len(players) == 0 {
		return nil, game.Fail(game.CodeMinOnePlayerRequired)
	}
	creator := players[0]
	if !creator.IsCreator() || creator.Identity != identity {
		return nil, game.Fail(game.CodeOnlyCreatorCanStart)
	}

	scores := make(map[int]scoring.PlayerScores, len(players))
	for _, player := range players {
		scores[player.Slot] = scoring.NewPlayerScores()
	}
	state := &game.GameState{
		SessionID:         sessionID,
		CurrentPlayerSlot: creator.Slot,
		RemainingTurns:    game.StartingTurns,
		Dice:              game.FreshDice(),
		TriesLeft:         game.TriesPerTurn,
		Scores:            scores,
	}
	if err := e.states.CreateState(ctx, state); err != nil {
		return nil, fmt.Errorf("create game state: %w", err)
	}
	if err := e.sessions.UpdateStatus(ctx, sessionID, game.StatusPlaying); err != nil {
		return nil, fmt.Errorf("mark session playing: %w", err)
	}
	e.logger.Info("session started", "session_id", sessionID, "players", len(players))
	return e.publish(ctx, sessionID)
}

// FindByJoinCode looks a session up by its (case-insensitive) join code.
func (e *Engine) FindByJoinCode(ctx context.Context, joinCode string) (*game.Session, error) {
	code := game.NormalizeJoinCode(joinCode)
	if !game.ValidJoinCode(code) {
		return nil, game.Fail(game.CodeSessionNotFound)
	}
	session, err := e.sessions.FindByJoinCode(ctx, code)
	if errors.Is(err, game.ErrNotFound) {
		return nil, game.Fail(game.CodeSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find by join code: %w", err)
	}
	return session, nil
}

// ListPublicWaiting returns the joinable public sessions.
func (e *Engine) ListPublicWaiting(ctx context.Context) ([]game.Session, error) {
	sessions, err := e.sessions.FindPublicWaiting(ctx)
	if err != nil {
		return nil, fmt.Errorf("list public sessions: %w", err)
	}
	return sessions, nil
}

// SessionsFor returns the ids of every session the identity is seated in.
func (e *Engine) SessionsFor(ctx context.Context, identity game.Identity) ([]string, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	ids, err := e.players.FindSessionIDsByIdentity(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("list sessions for identity: %w", err)
	}
	return ids, nil
}

// Seat returns the caller's player row in a session.
func (e *Engine) Seat(ctx context.Context, sessionID string, identity game.Identity) (*game.Player, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	player, err := e.players.FindBySessionAndIdentity(ctx, sessionID, identity)
	if errors.Is(err, game.ErrNotFound) {
		return nil, game.Fail(game.CodeNotInSession)
	}
	if err != nil {
		return nil, fmt.Errorf("find seat: %w", err)
	}
	return player, nil
}

func lowestFreeSlot(players []game.Player) int {
	taken := make(map[int]bool, len(players))
	for _, player := range players {
		taken[player.Slot] = true
	}
	for slot := 1; slot <= game.MaxPlayers; slot++ {
		if !taken[slot] {
			return slot
		}
	}
	return 0
}

func normalizeDisplayName(raw string) (string, error) {
	name := normalizeText(raw)
	if name == "" {
		return "", game.Fail(game.CodeDisplayNameRequired)
	}
	return truncate(name, maxNameLength), nil
}

func normalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
