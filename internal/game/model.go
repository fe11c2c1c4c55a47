// Package game holds the session aggregate, its repositories' contracts and
// the business error codes shared by every layer.
package game

import (
	"encoding/json"
	"time"

	"yacht-dice/internal/scoring"
)

type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusPlaying  Status = "PLAYING"
	StatusFinished Status = "FINISHED"
)

const (
	MaxPlayers      = 4
	StartingTurns   = 13
	TriesPerTurn    = 3
	DefaultDieFace  = 1
	JoinCodeLength  = 6
	JoinCodeSymbols = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// CanTransition reports whether a session may move from s to next.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusWaiting:
		return next == StatusPlaying
	case StatusPlaying:
		return next == StatusFinished
	default:
		return false
	}
}

type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	JoinCode  string    `json:"joinCode"`
	IsPublic  bool      `json:"isPublic"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Player struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId"`
	Slot        int       `json:"slot"`
	Identity    Identity  `json:"-"`
	DisplayName string    `json:"displayName"`
	OrderIndex  int       `json:"orderIndex"`
	CreatedAt   time.Time `json:"createdAt"`
}

// IsCreator reports whether p opened the session.
func (p Player) IsCreator() bool {
	return p.OrderIndex == 0
}

type Die struct {
	Face   int  `json:"face"`
	Locked bool `json:"locked"`
}

type Dice [scoring.DiceCount]Die

// Faces returns the face values in die order.
func (d Dice) Faces() []int {
	faces := make([]int, len(d))
	for i, die := range d {
		faces[i] = die.Face
	}
	return faces
}

// FreshDice is the between-turns hand: every die unlocked on face 1.
func FreshDice() Dice {
	var dice Dice
	for i := range dice {
		dice[i] = Die{Face: DefaultDieFace}
	}
	return dice
}

type GameState struct {
	SessionID         string                       `json:"sessionId"`
	CurrentPlayerSlot int                          `json:"currentPlayerSlot"`
	RemainingTurns    int                          `json:"remainingTurns"`
	Dice              Dice                         `json:"dice"`
	TriesLeft         int                          `json:"triesLeft"`
	Scores            map[int]scoring.PlayerScores `json:"scores"`
	UpdatedAt         time.Time                    `json:"updatedAt"`
}

// GameStateUpdate is a partial write; nil fields are left unchanged.
type GameStateUpdate struct {
	CurrentPlayerSlot *int
	RemainingTurns    *int
	Dice              *Dice
	TriesLeft         *int
	Scores            map[int]scoring.PlayerScores
}

// Apply copies the populated fields of u onto state.
func (u GameStateUpdate) Apply(state *GameState) {
	if u.CurrentPlayerSlot != nil {
		state.CurrentPlayerSlot = *u.CurrentPlayerSlot
	}
	if u.RemainingTurns != nil {
		state.RemainingTurns = *u.RemainingTurns
	}
	if u.Dice != nil {
		state.Dice = *u.Dice
	}
	if u.TriesLeft != nil {
		state.TriesLeft = *u.TriesLeft
	}
	if u.Scores != nil {
		state.Scores = u.Scores
	}
}

// View is the full snapshot pushed to clients.
type View struct {
	Session Session    `json:"session"`
	Players []Player   `json:"players"`
	State   *GameState `json:"state"`
}

// Clone returns a copy of s whose score sheets are not shared.
func (s GameState) Clone() GameState {
	out := s
	out.Scores = make(map[int]scoring.PlayerScores, len(s.Scores))
	for slot, sheet := range s.Scores {
		out.Scores[slot] = sheet.Clone()
	}
	return out
}

// MarshalJSON exposes user ids but never guest ids; a guest id doubles as
// the guest's credential.
func (p Player) MarshalJSON() ([]byte, error) {
	type player Player
	return json.Marshal(struct {
		player
		UserID  string `json:"userId,omitempty"`
		IsGuest bool   `json:"isGuest"`
	}{
		player:  player(p),
		UserID:  p.Identity.UserID(),
		IsGuest: p.Identity.Kind() == IdentityGuest,
	})
}
