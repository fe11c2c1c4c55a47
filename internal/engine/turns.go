package engine

import (
	"context"
	"errors"
	"fmt"

	"yacht-dice/internal/game"
	"yacht-dice/internal/scoring"
)

// turn is everything a turn operation needs once its preconditions hold.
type turn struct {
	session *game.Session
	players []game.Player
	seat    game.Player
	state   *game.GameState
}

// beginTurn takes the session lock and checks that it is the caller's turn
// in a PLAYING session. The caller must invoke the returned unlock.
func (e *Engine) beginTurn(ctx context.Context, sessionID string, identity game.Identity) (*turn, func(), error) {
	if err := requireIdentity(identity); err != nil {
		return nil, nil, err
	}
	unlock, err := e.lock(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	t, err := e.loadTurn(ctx, sessionID, identity)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	return t, unlock, nil
}

func (e *Engine) loadTurn(ctx context.Context, sessionID string, identity game.Identity) (*turn, error) {
	session, err := e.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != game.StatusPlaying {
		return nil, game.Fail(game.CodeSessionNotPlaying)
	}
	players, err := e.players.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	seat, seated := findSeat(players, identity)
	if !seated {
		return nil, game.Fail(game.CodeNotInSession)
	}
	state, err := e.states.FindBySession(ctx, sessionID)
	if errors.Is(err, game.ErrNotFound) {
		return nil, game.Fail(game.CodeNoGameState)
	}
	if err != nil {
		return nil, fmt.Errorf("load game state: %w", err)
	}
	if state.CurrentPlayerSlot != seat.Slot {
		return nil, game.Fail(game.CodeNotYourTurn)
	}
	return &turn{session: session, players: players, seat: seat, state: state}, nil
}

// Roll rerolls every unlocked die and spends one try.
func (e *Engine) Roll(ctx context.Context, sessionID string, identity game.Identity) (*game.View, error) {
	t, unlock, err := e.beginTurn(ctx, sessionID, identity)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if t.state.TriesLeft <= 0 {
		return nil, game.Fail(game.CodeNoTriesLeft)
	}
	dice := t.state.Dice
	for i := range dice {
		if !dice[i].Locked {
			dice[i].Face = e.roll()
		}
	}
	tries := t.state.TriesLeft - 1
	if err := e.states.UpdateState(ctx, sessionID, game.GameStateUpdate{Dice: &dice, TriesLeft: &tries}); err != nil {
		return nil, fmt.Errorf("save roll: %w", err)
	}
	e.logger.Debug("dice rolled", "session_id", sessionID, "slot", t.seat.Slot, "faces", dice.Faces(), "tries_left", tries)
	return e.publish(ctx, sessionID)
}

// ToggleLock flips whether the die at diceIndex survives the next roll.
func (e *Engine) ToggleLock(ctx context.Context, sessionID string, identity game.Identity, diceIndex int) (*game.View, error) {
	t, unlock, err := e.beginTurn(ctx, sessionID, identity)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if diceIndex < 0 || diceIndex >= len(t.state.Dice) {
		return nil, game.Fail(game.CodeInvalidDiceIndex)
	}
	dice := t.state.Dice
	dice[diceIndex].Locked = !dice[diceIndex].Locked
	if err := e.states.UpdateState(ctx, sessionID, game.GameStateUpdate{Dice: &dice}); err != nil {
		return nil, fmt.Errorf("save lock: %w", err)
	}
	return e.publish(ctx, sessionID)
}

// ChooseScore books the current dice into category, hands the turn to the
// next player and finishes the game once every round is played.
func (e *Engine) ChooseScore(ctx context.Context, sessionID string, identity game.Identity, category string) (*game.View, error) {
	t, unlock, err := e.beginTurn(ctx, sessionID, identity)
	if err != nil {
		return nil, err
	}
	defer unlock()

	key, ok := scoring.ParseCategory(category)
	if !ok {
		return nil, game.Fail(game.CodeInvalidScoreKey)
	}
	sheet, ok := t.state.Scores[t.seat.Slot]
	if !ok {
		return nil, game.Fail(game.CodeNoScoresForPlayer)
	}
	if _, filled := sheet.Get(key); filled {
		return nil, game.Fail(game.CodeScoreAlreadySet)
	}
	sheet = sheet.Clone()
	if err := sheet.Set(key, scoring.ScoreFor(key, t.state.Dice.Faces())); err != nil {
		return nil, game.Fail(game.CodeScoreAlreadySet)
	}
	scores := t.state.Clone().Scores
	scores[t.seat.Slot] = sheet

	next, wrapped := nextPlayer(t.players, t.seat)
	remaining := t.state.RemainingTurns
	if wrapped {
		remaining--
	}
	dice := game.FreshDice()
	tries := game.TriesPerTurn
	update := game.GameStateUpdate{
		CurrentPlayerSlot: &next.Slot,
		RemainingTurns:    &remaining,
		Dice:              &dice,
		TriesLeft:         &tries,
		Scores:            scores,
	}
	if err := e.states.UpdateState(ctx, sessionID, update); err != nil {
		return nil, fmt.Errorf("save score: %w", err)
	}
	if remaining <= 0 {
		if err := e.sessions.UpdateStatus(ctx, sessionID, game.StatusFinished); err != nil {
			return nil, fmt.Errorf("mark session finished: %w", err)
		}
		e.logger.Info("session finished", "session_id", sessionID)
	}
	return e.publish(ctx, sessionID)
}

// nextPlayer returns the seat after current in turn order and whether the
// rotation wrapped back to the first seat.
func nextPlayer(players []game.Player, current game.Player) (game.Player, bool) {
	for i, player := range players {
		if player.ID != current.ID {
			continue
		}
		nextIndex := (i + 1) % len(players)
		return players[nextIndex], nextIndex == 0
	}
	return players[0], true
}
