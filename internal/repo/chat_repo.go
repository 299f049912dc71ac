// Package repo – chat persistence. Thin CRUD over the chats table; the dev
// server exposes chats as read-only to clients, so writes here are only used
// by the seeder.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-chat-client/internal/domain"
)

// CreateChat inserts a new chat with the given name and member user IDs.
func CreateChat(ctx context.Context, db *gorm.DB, name string, userIDs []string) (*domain.Chat, error) {
	c := &domain.Chat{
		ID:        uuid.NewString(),
		Name:      name,
		UserIDs:   userIDs,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// ListChats returns all chats ordered by creation time ascending, so the
// client's list order is stable across reads.
func ListChats(ctx context.Context, db *gorm.DB) ([]domain.Chat, error) {
	var out []domain.Chat
	err := db.WithContext(ctx).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// GetChat fetches a single chat by ID, or ErrNotFound.
func GetChat(ctx context.Context, db *gorm.DB, id string) (*domain.Chat, error) {
	var c domain.Chat
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
