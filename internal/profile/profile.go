// Package profile derives the current user's identity from the session token
// via the authorized client, caching it per token.
//
// This is the sole feedback path from the data layer into the session
// lifecycle: when the /users/me read fails with an authentication error, the
// session is forcibly logged out so the access guard can redirect to login.
package profile

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-chat-client/internal/api"
	"github.com/tbourn/go-chat-client/internal/cache"
	"github.com/tbourn/go-chat-client/internal/domain"
	"github.com/tbourn/go-chat-client/internal/session"
)

// ErrLoggedOut is returned by CurrentUser when no session is active.
var ErrLoggedOut = errors.New("no active session")

// Result is the current-user read state surfaced to the UI.
type Result struct {
	User    *domain.User
	Loading bool
	Err     error
}

// Cache reads the current user through the query cache, keyed by the token
// fingerprint so a new login never observes a previous session's user.
type Cache struct {
	client   *api.Client
	sessions *session.Store
	queries  *cache.Store
	log      zerolog.Logger
}

// New constructs a profile cache over the given collaborators.
func New(client *api.Client, sessions *session.Store, queries *cache.Store, log zerolog.Logger) *Cache {
	return &Cache{client: client, sessions: sessions, queries: queries, log: log}
}

// CurrentUser returns the current user's read state. While a session is
// active it reads through the query cache; otherwise it reports ErrLoggedOut
// without touching the network.
//
// An unauthenticated failure from the backend forces a logout before the
// error is surfaced.
func (c *Cache) CurrentUser(ctx context.Context) Result {
	tok, ok := c.sessions.CurrentToken()
	if !ok {
		return Result{Err: ErrLoggedOut}
	}

	key := cache.CurrentUserKey(session.Fingerprint(tok))
	res := c.queries.Read(ctx, key, func(ctx context.Context) (any, error) {
		resp, err := c.client.Get(ctx, "/users/me")
		if err != nil {
			if api.IsUnauthenticated(err) {
				c.log.Info().Msg("current-user fetch rejected, forcing logout")
				c.sessions.Logout()
			}
			return nil, err
		}
		var env domain.UserEnvelope
		if err := resp.DecodeJSON(&env); err != nil {
			return nil, err
		}
		return &env.User, nil
	})

	out := Result{Loading: res.Loading, Err: res.Err}
	if u, ok := res.Data.(*domain.User); ok {
		out.User = u
	}
	return out
}

// Key returns the cache key for the active session's current-user entry,
// when a session exists. The mutation coordinator uses it to invalidate the
// entry after a profile update.
func (c *Cache) Key() (cache.Key, bool) {
	tok, ok := c.sessions.CurrentToken()
	if !ok {
		return cache.Key{}, false
	}
	return cache.CurrentUserKey(session.Fingerprint(tok)), true
}
