package db

import (
	"time"

	"gorm.io/datatypes"
)

type Session struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"size:64;not null"`
	JoinCode  string    `gorm:"size:6;uniqueIndex;not null"`
	IsPublic  bool      `gorm:"not null;default:false"`
	Status    string    `gorm:"size:16;not null;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Session) TableName() string { return "game_sessions" }

// Player is one seat. Exactly one of UserID and GuestID is set.
type Player struct {
	ID          string    `gorm:"primaryKey;size:36"`
	SessionID   string    `gorm:"size:36;index;not null"`
	Slot        int       `gorm:"not null"`
	UserID      *string   `gorm:"size:64"`
	GuestID     *string   `gorm:"size:64"`
	DisplayName string    `gorm:"size:64;not null"`
	OrderIndex  int       `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (Player) TableName() string { return "session_players" }

type GameState struct {
	SessionID         string         `gorm:"primaryKey;size:36"`
	CurrentPlayerSlot int            `gorm:"not null"`
	RemainingTurns    int            `gorm:"not null"`
	Dice              datatypes.JSON `gorm:"type:jsonb;not null"`
	TriesLeft         int            `gorm:"not null"`
	Scores            datatypes.JSON `gorm:"type:jsonb;not null"`
	UpdatedAt         time.Time      `gorm:"not null"`
}

func (GameState) TableName() string { return "game_states" }

// User is the read-only slice of the account table this service needs.
type User struct {
	ID          string `gorm:"primaryKey;size:64"`
	DisplayName string `gorm:"size:64;not null"`
}
