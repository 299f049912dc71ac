package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-chat-client/internal/domain"
)

// failingStorage simulates unavailable storage.
type failingStorage struct {
	readErr  error
	writeErr error
	clearErr error
	wrote    int
}

func (f *failingStorage) Read() (string, error) { return "", f.readErr }
func (f *failingStorage) Write(string) error {
	f.wrote++
	return f.writeErr
}
func (f *failingStorage) Clear() error { return f.clearErr }

func tok(s string) domain.Token {
	return domain.Token{AccessToken: s, TokenType: "bearer"}
}

func TestStore_LoginLogout(t *testing.T) {
	s := NewStore(NewMemoryStorage(), zerolog.Nop())

	if s.IsLoggedIn() {
		t.Fatalf("fresh store must be logged out")
	}

	s.Login(tok("abc"))
	got, ok := s.CurrentToken()
	if !ok || got != "abc" {
		t.Fatalf("expected token abc, got %q %v", got, ok)
	}

	s.Logout()
	if s.IsLoggedIn() {
		t.Fatalf("expected logged out after Logout")
	}
}

func TestStore_EmptyTokenIgnored(t *testing.T) {
	s := NewStore(NewMemoryStorage(), zerolog.Nop())
	s.Login(domain.Token{})
	if s.IsLoggedIn() {
		t.Fatalf("empty access token must not establish a session")
	}
}

func TestStore_PersistAndRehydrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "token")
	storage := NewFileStorage(path)

	s1 := NewStore(storage, zerolog.Nop())
	s1.Login(tok("persisted"))

	// A fresh store over the same file resumes the session.
	s2 := NewStore(NewFileStorage(path), zerolog.Nop())
	got, ok := s2.CurrentToken()
	if !ok || got != "persisted" {
		t.Fatalf("expected rehydrated token, got %q %v", got, ok)
	}

	// Logout removes the file.
	s2.Logout()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected token file removed, got %v", err)
	}
	s3 := NewStore(NewFileStorage(path), zerolog.Nop())
	if s3.IsLoggedIn() {
		t.Fatalf("expected no session after logout")
	}
}

func TestStore_ReadFailureDegradesToMemoryOnly(t *testing.T) {
	storage := &failingStorage{readErr: errors.New("disk gone")}
	s := NewStore(storage, zerolog.Nop())

	// The session still works for the process lifetime.
	s.Login(tok("ephemeral"))
	if !s.IsLoggedIn() {
		t.Fatalf("login must succeed in memory-only mode")
	}
	// Persistence was disabled by the failed read, so no write was attempted.
	if storage.wrote != 0 {
		t.Fatalf("expected no write attempts, got %d", storage.wrote)
	}
}

func TestStore_WriteFailureDisablesPersistence(t *testing.T) {
	storage := &failingStorage{writeErr: errors.New("disk full")}
	s := NewStore(storage, zerolog.Nop())

	s.Login(tok("one"))
	if !s.IsLoggedIn() {
		t.Fatalf("login must survive a persist failure")
	}
	s.Login(tok("two"))
	if storage.wrote != 1 {
		t.Fatalf("expected persistence disabled after first failure, wrote %d times", storage.wrote)
	}
}

func TestStore_LogoutSurvivesClearFailure(t *testing.T) {
	storage := &failingStorage{clearErr: errors.New("denied")}
	s := NewStore(storage, zerolog.Nop())
	s.Login(tok("abc"))
	s.Logout()
	if s.IsLoggedIn() {
		t.Fatalf("logout must clear the in-memory token regardless of storage")
	}
}

func TestStore_Notifications(t *testing.T) {
	s := NewStore(NewMemoryStorage(), zerolog.Nop())

	var events int
	cancel := s.Subscribe(func() { events++ })

	s.Login(tok("a"))  // transition -> notify
	s.Login(tok("a"))  // identical token -> no-op
	s.Login(tok("b"))  // transition -> notify
	s.Logout()         // transition -> notify
	s.Logout()         // already logged out -> no notify
	if events != 3 {
		t.Fatalf("expected 3 notifications, got %d", events)
	}

	cancel()
	s.Login(tok("c"))
	if events != 3 {
		t.Fatalf("expected no notifications after cancel, got %d", events)
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("token-a")
	b := Fingerprint("token-b")
	if a == b {
		t.Fatalf("distinct tokens must have distinct fingerprints")
	}
	if len(a) != 12 {
		t.Fatalf("expected 12 hex chars, got %q", a)
	}
	if a != Fingerprint("token-a") {
		t.Fatalf("fingerprint must be stable")
	}
}

func TestFileStorage_MissingFileReadsEmpty(t *testing.T) {
	st := NewFileStorage(filepath.Join(t.TempDir(), "none"))
	got, err := st.Read()
	if err != nil || got != "" {
		t.Fatalf("missing file must read as empty, got %q %v", got, err)
	}
	if err := st.Clear(); err != nil {
		t.Fatalf("clearing a missing file must succeed, got %v", err)
	}
}
