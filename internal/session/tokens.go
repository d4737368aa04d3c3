package session

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenStore persists the authority's session token between runs.
// Only the token is stored; the identity is always re-read from the authority.
type TokenStore interface {
	// Load returns the stored token, or "" when there is none
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileTokenStore keeps the token in a file readable only by its owner
type FileTokenStore struct {
	path string
}

// NewFileTokenStore creates a FileTokenStore writing to path
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Path returns the file the token is written to
func (f *FileTokenStore) Path() string {
	return f.path
}

func (f *FileTokenStore) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil // No token file is fine
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (f *FileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return err
	}
	if err := os.WriteFile(f.path, []byte(token), 0600); err != nil {
		return err
	}
	// WriteFile keeps the mode of an existing file
	return os.Chmod(f.path, 0600)
}

func (f *FileTokenStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// MemoryTokenStore keeps the token in process memory
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (m *MemoryTokenStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryTokenStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryTokenStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
