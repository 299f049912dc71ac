// Package repo – issued access token persistence.
//
// Tokens are opaque random identifiers with a server-side expiry; the bearer
// middleware resolves them back to a user on every request.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-chat-client/internal/domain"
)

// CreateAccessToken issues a fresh token for userID, valid for ttl.
func CreateAccessToken(ctx context.Context, db *gorm.DB, userID string, ttl time.Duration) (*domain.AccessToken, error) {
	now := time.Now().UTC()
	t := &domain.AccessToken{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// GetAccessToken resolves a bearer token. Expired tokens are treated as
// missing and deleted opportunistically.
func GetAccessToken(ctx context.Context, db *gorm.DB, token string) (*domain.AccessToken, error) {
	var t domain.AccessToken
	if err := db.WithContext(ctx).Where("token = ?", token).First(&t).Error; err != nil {
		return nil, err
	}
	if time.Now().UTC().After(t.ExpiresAt) {
		db.WithContext(ctx).Where("token = ?", token).Delete(&domain.AccessToken{})
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}
