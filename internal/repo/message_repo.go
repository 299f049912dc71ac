// Package repo – message persistence.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-chat-client/internal/domain"
)

// CreateMessage inserts a message for the given chat and author, then reloads
// it with the author preloaded so the handler can return the full wire shape.
func CreateMessage(ctx context.Context, db *gorm.DB, chatID, userID, text string) (*domain.Message, error) {
	m := &domain.Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	var out domain.Message
	if err := db.WithContext(ctx).Preload("User").Where("id = ?", m.ID).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMessages returns a chat's messages oldest-first with authors preloaded.
// The secondary sort on id keeps ties deterministic.
func ListMessages(ctx context.Context, db *gorm.DB, chatID string) ([]domain.Message, error) {
	var out []domain.Message
	err := db.WithContext(ctx).
		Preload("User").
		Where("chat_id = ?", chatID).
		Order("created_at asc, id asc").
		Find(&out).Error
	return out, err
}
