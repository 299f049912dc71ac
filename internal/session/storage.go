package session

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Storage persists the session token between process runs. Implementations
// report a missing token as ("", nil); errors are reserved for storage that
// is genuinely unavailable.
type Storage interface {
	Read() (string, error)
	Write(token string) error
	Clear() error
}

// fileStorage keeps the token in a single file with owner-only permissions.
type fileStorage struct {
	path string
}

// NewFileStorage returns a Storage backed by the file at path. Parent
// directories are created on first write.
func NewFileStorage(path string) Storage {
	return &fileStorage{path: path}
}

func (f *fileStorage) Read() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (f *fileStorage) Write(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.path, []byte(token+"\n"), 0o600)
}

func (f *fileStorage) Clear() error {
	err := os.Remove(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// memoryStorage holds the token in process memory only. Useful in tests and
// for explicitly ephemeral sessions.
type memoryStorage struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStorage returns a Storage that never touches the filesystem.
func NewMemoryStorage() Storage {
	return &memoryStorage{}
}

func (m *memoryStorage) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memoryStorage) Write(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memoryStorage) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
