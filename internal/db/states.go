package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"yacht-dice/internal/game"
	"yacht-dice/internal/scoring"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// States is the Postgres GameStateRepository. Dice and score sheets are
// stored as jsonb.
type States struct {
	db *gorm.DB
}

func NewStates(conn *gorm.DB) *States {
	return &States{db: conn}
}

func (r *States) CreateState(ctx context.Context, state *game.GameState) error {
	dice, err := json.Marshal(state.Dice)
	if err != nil {
		return fmt.Errorf("encode dice: %w", err)
	}
	scores, err := json.Marshal(state.Scores)
	if err != nil {
		return fmt.Errorf("encode scores: %w", err)
	}
	record := GameState{
		SessionID:         state.SessionID,
		CurrentPlayerSlot: state.CurrentPlayerSlot,
		RemainingTurns:    state.RemainingTurns,
		Dice:              datatypes.JSON(dice),
		TriesLeft:         state.TriesLeft,
		Scores:            datatypes.JSON(scores),
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return err
	}
	state.UpdatedAt = record.UpdatedAt
	return nil
}

func (r *States) FindBySession(ctx context.Context, sessionID string) (*game.GameState, error) {
	var record GameState
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&record).Error; err != nil {
		return nil, notFound(err)
	}
	state := &game.GameState{
		SessionID:         record.SessionID,
		CurrentPlayerSlot: record.CurrentPlayerSlot,
		RemainingTurns:    record.RemainingTurns,
		TriesLeft:         record.TriesLeft,
		UpdatedAt:         record.UpdatedAt,
	}
	if err := json.Unmarshal(record.Dice, &state.Dice); err != nil {
		return nil, fmt.Errorf("decode dice: %w", err)
	}
	if err := json.Unmarshal(record.Scores, &state.Scores); err != nil {
		return nil, fmt.Errorf("decode scores: %w", err)
	}
	if state.Scores == nil {
		state.Scores = map[int]scoring.PlayerScores{}
	}
	return state, nil
}

// UpdateState writes only the populated fields of update.
func (r *States) UpdateState(ctx context.Context, sessionID string, update game.GameStateUpdate) error {
	columns := map[string]any{"updated_at": time.Now().UTC()}
	if update.CurrentPlayerSlot != nil {
		columns["current_player_slot"] = *update.CurrentPlayerSlot
	}
	if update.RemainingTurns != nil {
		columns["remaining_turns"] = *update.RemainingTurns
	}
	if update.TriesLeft != nil {
		columns["tries_left"] = *update.TriesLeft
	}
	if update.Dice != nil {
		dice, err := json.Marshal(*update.Dice)
		if err != nil {
			return fmt.Errorf("encode dice: %w", err)
		}
		columns["dice"] = datatypes.JSON(dice)
	}
	if update.Scores != nil {
		scores, err := json.Marshal(update.Scores)
		if err != nil {
			return fmt.Errorf("encode scores: %w", err)
		}
		columns["scores"] = datatypes.JSON(scores)
	}
	result := r.db.WithContext(ctx).Model(&GameState{}).Where("session_id = ?", sessionID).Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return game.ErrNotFound
	}
	return nil
}
