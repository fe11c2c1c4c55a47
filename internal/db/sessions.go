package db

import (
	"context"
	"fmt"
	"time"

	"yacht-dice/internal/game"

	"gorm.io/gorm"
)

// Sessions is the Postgres SessionRepository.
type Sessions struct {
	db *gorm.DB
}

func NewSessions(conn *gorm.DB) *Sessions {
	return &Sessions{db: conn}
}

func (r *Sessions) Create(ctx context.Context, session *game.Session) error {
	record := Session{
		ID:       session.ID,
		Name:     session.Name,
		JoinCode: session.JoinCode,
		IsPublic: session.IsPublic,
		Status:   string(session.Status),
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return game.ErrDuplicateJoinCode
		}
		return err
	}
	session.CreatedAt = record.CreatedAt
	session.UpdatedAt = record.UpdatedAt
	return nil
}

func (r *Sessions) FindByID(ctx context.Context, id string) (*game.Session, error) {
	var record Session
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, notFound(err)
	}
	return toSession(record), nil
}

func (r *Sessions) FindByJoinCode(ctx context.Context, code string) (*game.Session, error) {
	var record Session
	if err := r.db.WithContext(ctx).Where("join_code = ?", code).First(&record).Error; err != nil {
		return nil, notFound(err)
	}
	return toSession(record), nil
}

func (r *Sessions) FindPublicWaiting(ctx context.Context) ([]game.Session, error) {
	var records []Session
	err := r.db.WithContext(ctx).
		Where("is_public = ? AND status = ?", true, string(game.StatusWaiting)).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	sessions := make([]game.Session, 0, len(records))
	for _, record := range records {
		sessions = append(sessions, *toSession(record))
	}
	return sessions, nil
}

func (r *Sessions) UpdateStatus(ctx context.Context, id string, status game.Status) error {
	result := r.db.WithContext(ctx).Model(&Session{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return game.ErrNotFound
	}
	return nil
}

// Delete removes the session together with its seats and game state.
func (r *Sessions) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&GameState{}).Error; err != nil {
			return fmt.Errorf("delete game state: %w", err)
		}
		if err := tx.Where("session_id = ?", id).Delete(&Player{}).Error; err != nil {
			return fmt.Errorf("delete players: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&Session{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return game.ErrNotFound
		}
		return nil
	})
}

func toSession(record Session) *game.Session {
	return &game.Session{
		ID:        record.ID,
		Name:      record.Name,
		JoinCode:  record.JoinCode,
		IsPublic:  record.IsPublic,
		Status:    game.Status(record.Status),
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}
