// Package services – mutation coordinator.
//
// The Coordinator executes write operations against the backend and performs
// the precise cache invalidation each successful write requires:
//
//   - SendMessage invalidates only the affected chat's message list.
//   - UpdateProfile invalidates only the current-user entry.
//   - Login and Logout reset the whole cache, since every cached read is
//     session-scoped.
//
// Failed mutations never touch the cache or the session; the typed error
// from the api package is returned for the caller to present. No optimistic
// insertion is performed: views observe a write by re-reading the
// invalidated keys.
package services

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-chat-client/internal/api"
	"github.com/tbourn/go-chat-client/internal/cache"
	"github.com/tbourn/go-chat-client/internal/domain"
	"github.com/tbourn/go-chat-client/internal/session"
)

// Coordinator executes mutations and owns their cache-invalidation rules.
type Coordinator struct {
	client   *api.Client
	sessions *session.Store
	queries  *cache.Store
	log      zerolog.Logger
}

// NewCoordinator constructs a Coordinator over the given collaborators.
func NewCoordinator(client *api.Client, sessions *session.Store, queries *cache.Store, log zerolog.Logger) *Coordinator {
	return &Coordinator{client: client, sessions: sessions, queries: queries, log: log}
}

// Login exchanges credentials for a bearer token, establishes the session,
// and resets the cache so no entry from a previous session survives.
func (c *Coordinator) Login(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrMissingCredentials
	}

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	resp, err := c.client.PostForm(ctx, "/auth/token", form)
	if err != nil {
		return err
	}

	var tok domain.Token
	if err := resp.DecodeJSON(&tok); err != nil {
		return err
	}
	if tok.AccessToken == "" {
		return errors.New("token response missing access_token")
	}

	c.sessions.Login(tok)
	c.queries.Clear()
	c.log.Info().Str("username", username).Msg("logged in")
	return nil
}

// Logout tears down the session and resets the cache. It always succeeds.
func (c *Coordinator) Logout() {
	c.sessions.Logout()
	c.queries.Clear()
	c.log.Info().Msg("logged out")
}

// Register creates a new account. On success the caller is expected to
// direct the user to the login flow; no session is established here.
//
// Duplicate username/email rejections surface as api validation errors with
// the offending field populated.
func (c *Coordinator) Register(ctx context.Context, username, email, password string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return ErrIncompleteRegistration
	}

	_, err := c.client.Post(ctx, "/auth/registration", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}
	c.log.Info().Str("username", username).Msg("registered")
	return nil
}

// SendMessage posts text to a chat. Empty or whitespace-only text is
// rejected locally without a network round trip. On success, only that
// chat's message-list entry is invalidated.
func (c *Coordinator) SendMessage(ctx context.Context, chatID, text string) error {
	if chatID == "" {
		return ErrMissingChatID
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	_, err := c.client.Post(ctx, "/chats/"+chatID+"/messages", map[string]string{"text": text})
	if err != nil {
		return err
	}

	c.queries.Invalidate(cache.MessagesKey(chatID))
	return nil
}

// ProfileUpdate names the current-user fields a profile mutation may change.
// Empty fields are left untouched.
type ProfileUpdate struct {
	Username string
	Email    string
}

// UpdateProfile applies the given fields to the current user and invalidates
// the current-user cache entry so the next read observes the change.
func (c *Coordinator) UpdateProfile(ctx context.Context, up ProfileUpdate) error {
	up.Username = strings.TrimSpace(up.Username)
	up.Email = strings.TrimSpace(up.Email)
	if up.Username == "" && up.Email == "" {
		return ErrEmptyProfileUpdate
	}

	body := map[string]string{}
	if up.Username != "" {
		body["username"] = up.Username
	}
	if up.Email != "" {
		body["email"] = up.Email
	}

	_, err := c.client.Put(ctx, "/users/me", body)
	if err != nil {
		return err
	}

	if tok, ok := c.sessions.CurrentToken(); ok {
		c.queries.Invalidate(cache.CurrentUserKey(session.Fingerprint(tok)))
	}
	return nil
}
