// Package session owns the authentication token's lifecycle: acquisition on
// login, persistence across restarts, and unconditional teardown on logout.
//
// Exactly one Store exists per running client. All dependents receive it by
// reference; there is no package-level singleton. State transitions notify
// subscribers so the UI (or a test harness) can re-evaluate routing and
// re-read caches.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-chat-client/internal/domain"
)

// Store holds the current session token. It is safe for concurrent use;
// mutations are last-write-wins under a single mutex, so a logout always
// supersedes any concurrently completing login.
type Store struct {
	mu      sync.Mutex
	token   string
	storage Storage
	persist bool
	log     zerolog.Logger

	subs   map[int]func()
	nextID int
}

// NewStore constructs a Store backed by the given storage and rehydrates any
// previously persisted token so a restart preserves the session. A storage
// read failure is non-fatal: the store degrades to memory-only for the
// lifetime of the process.
func NewStore(storage Storage, log zerolog.Logger) *Store {
	s := &Store{
		storage: storage,
		persist: true,
		log:     log,
		subs:    make(map[int]func()),
	}

	tok, err := storage.Read()
	if err != nil {
		s.log.Warn().Err(err).Msg("token storage unavailable, session is memory-only")
		s.persist = false
		return s
	}
	if tok != "" {
		s.token = tok
		s.log.Debug().Msg("session rehydrated from storage")
	}
	return s
}

// Login extracts the bearer token from a credential-exchange result and makes
// it the current session token, persisting it when storage is available.
// Repeated logins with an identical token are no-ops.
func (s *Store) Login(tok domain.Token) {
	if tok.AccessToken == "" {
		s.log.Warn().Msg("login called with empty access token, ignoring")
		return
	}

	s.mu.Lock()
	if s.token == tok.AccessToken {
		s.mu.Unlock()
		return
	}
	s.token = tok.AccessToken
	if s.persist {
		if err := s.storage.Write(tok.AccessToken); err != nil {
			s.log.Warn().Err(err).Msg("persist token failed, session is memory-only")
			s.persist = false
		}
	}
	s.mu.Unlock()

	s.notify()
}

// Logout clears the in-memory and persisted token unconditionally. It always
// succeeds; storage failures are logged and ignored.
func (s *Store) Logout() {
	s.mu.Lock()
	changed := s.token != ""
	s.token = ""
	if err := s.storage.Clear(); err != nil {
		s.log.Warn().Err(err).Msg("clear persisted token failed")
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// CurrentToken returns the session token and whether one is present.
func (s *Store) CurrentToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

// IsLoggedIn reports whether a session token is present.
func (s *Store) IsLoggedIn() bool {
	_, ok := s.CurrentToken()
	return ok
}

// Subscribe registers fn to run after every session state transition. The
// returned function cancels the subscription.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// notify invokes subscribers outside the lock so they may call back into the
// store.
func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Fingerprint derives a short stable identifier from a token, suitable for
// cache keys and logs where the raw credential must not appear.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:6])
}
