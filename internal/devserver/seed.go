// Package devserver – demo data seeding.
package devserver

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tbourn/go-chat-client/internal/repo"
)

// demoPassword is the shared password for all seeded demo accounts.
const demoPassword = "password123"

// SeedDemo populates an empty database with two demo users and two chats
// holding a short conversation. A non-empty database is left untouched.
func SeedDemo(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	n, err := repo.CountUsers(ctx, db)
	if err != nil {
		return fmt.Errorf("seed: count users: %w", err)
	}
	if n > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed: hash password: %w", err)
	}

	alice, err := repo.CreateUser(ctx, db, "alice", "alice@example.com", string(hash))
	if err != nil {
		return fmt.Errorf("seed: create alice: %w", err)
	}
	bob, err := repo.CreateUser(ctx, db, "bob", "bob@example.com", string(hash))
	if err != nil {
		return fmt.Errorf("seed: create bob: %w", err)
	}

	general, err := repo.CreateChat(ctx, db, "general", []string{alice.ID, bob.ID})
	if err != nil {
		return fmt.Errorf("seed: create chat: %w", err)
	}
	if _, err := repo.CreateChat(ctx, db, "random", []string{alice.ID, bob.ID}); err != nil {
		return fmt.Errorf("seed: create chat: %w", err)
	}

	for _, m := range []struct {
		userID, text string
	}{
		{alice.ID, "hey bob"},
		{bob.ID, "hey alice, all set up?"},
		{alice.ID, "yep, the dev server is running"},
	} {
		if _, err := repo.CreateMessage(ctx, db, general.ID, m.userID, m.text); err != nil {
			return fmt.Errorf("seed: create message: %w", err)
		}
	}

	log.Info().
		Str("users", "alice, bob").
		Str("password", demoPassword).
		Msg("seeded demo data")
	return nil
}
