package db

import (
	"context"

	"yacht-dice/internal/game"

	"gorm.io/gorm"
)

// Players is the Postgres PlayerRepository.
type Players struct {
	db *gorm.DB
}

func NewPlayers(conn *gorm.DB) *Players {
	return &Players{db: conn}
}

func (r *Players) AddPlayer(ctx context.Context, player *game.Player) error {
	record := Player{
		ID:          player.ID,
		SessionID:   player.SessionID,
		Slot:        player.Slot,
		DisplayName: player.DisplayName,
		OrderIndex:  player.OrderIndex,
	}
	record.UserID, record.GuestID = identityColumns(player.Identity)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return err
	}
	player.CreatedAt = record.CreatedAt
	return nil
}

func (r *Players) FindBySession(ctx context.Context, sessionID string) ([]game.Player, error) {
	var records []Player
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("order_index ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	players := make([]game.Player, 0, len(records))
	for _, record := range records {
		players = append(players, toPlayer(record))
	}
	return players, nil
}

func (r *Players) RemovePlayer(ctx context.Context, playerID string) error {
	result := r.db.WithContext(ctx).Where("id = ?", playerID).Delete(&Player{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return game.ErrNotFound
	}
	return nil
}

func (r *Players) FindBySessionAndIdentity(ctx context.Context, sessionID string, identity game.Identity) (*game.Player, error) {
	var record Player
	err := whereIdentity(r.db.WithContext(ctx), identity).
		Where("session_id = ?", sessionID).
		First(&record).Error
	if err != nil {
		return nil, notFound(err)
	}
	player := toPlayer(record)
	return &player, nil
}

func (r *Players) CountBySession(ctx context.Context, sessionID string) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Player{}).Where("session_id = ?", sessionID).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *Players) FindSessionIDsByIdentity(ctx context.Context, identity game.Identity) ([]string, error) {
	var ids []string
	err := whereIdentity(r.db.WithContext(ctx).Model(&Player{}), identity).
		Distinct().
		Order("session_id").
		Pluck("session_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *Players) UpdateOrderIndex(ctx context.Context, playerID string, orderIndex int) error {
	result := r.db.WithContext(ctx).Model(&Player{}).Where("id = ?", playerID).Update("order_index", orderIndex)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return game.ErrNotFound
	}
	return nil
}

func whereIdentity(tx *gorm.DB, identity game.Identity) *gorm.DB {
	if identity.Kind() == game.IdentityUser {
		return tx.Where("user_id = ?", identity.ID())
	}
	return tx.Where("guest_id = ?", identity.ID())
}

func identityColumns(identity game.Identity) (*string, *string) {
	id := identity.ID()
	switch identity.Kind() {
	case game.IdentityUser:
		return &id, nil
	case game.IdentityGuest:
		return nil, &id
	default:
		return nil, nil
	}
}

func toPlayer(record Player) game.Player {
	var identity game.Identity
	switch {
	case record.UserID != nil:
		identity = game.User(*record.UserID)
	case record.GuestID != nil:
		identity = game.Guest(*record.GuestID)
	}
	return game.Player{
		ID:          record.ID,
		SessionID:   record.SessionID,
		Slot:        record.Slot,
		Identity:    identity,
		DisplayName: record.DisplayName,
		OrderIndex:  record.OrderIndex,
		CreatedAt:   record.CreatedAt,
	}
}
