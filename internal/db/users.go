package db

import (
	"context"
	"strings"

	"yacht-dice/internal/game"

	"gorm.io/gorm"
)

// UserDirectory resolves display names from the users table.
type UserDirectory struct {
	db *gorm.DB
}

func NewUserDirectory(conn *gorm.DB) *UserDirectory {
	return &UserDirectory{db: conn}
}

func (d *UserDirectory) DisplayName(ctx context.Context, userID string) (string, error) {
	var user User
	if err := d.db.WithContext(ctx).Select("id", "display_name").Where("id = ?", userID).First(&user).Error; err != nil {
		return "", notFound(err)
	}
	name := strings.TrimSpace(user.DisplayName)
	if name == "" {
		return "", game.ErrNotFound
	}
	return name, nil
}
