package api

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenStore holds the single opaque admin bearer token. It is pure storage:
// no network calls, no validation. All session state flows through it — the
// Gateway reads it on every request and clears it when the backend reports the
// session expired.
type TokenStore interface {
	Get() (string, bool)
	Set(token string) error
	Clear() error
	IsPresent() bool
}

// FileTokenStore persists the token to a single file so an admin session
// survives a restart. The file is read once at construction; afterwards the
// in-memory copy is authoritative and every mutation is written through.
type FileTokenStore struct {
	mu    sync.RWMutex
	path  string
	token string
}

// NewFileTokenStore creates a store backed by the given path. A missing or
// unreadable file reads as "no token", never as an error.
// PRE: path is non-empty
// POST: Returns a store primed with any previously persisted token
func NewFileTokenStore(path string) *FileTokenStore {
	s := &FileTokenStore{path: path}
	if data, err := os.ReadFile(path); err == nil {
		s.token = strings.TrimSpace(string(data))
	}
	return s
}

// Get returns the current token and whether one is set.
func (s *FileTokenStore) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Set persists the token, overwriting any previous value.
// PRE: token is non-empty
// POST: Token is held in memory and written to disk atomically
func (s *FileTokenStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return writeFileAtomic(s.path, []byte(token))
}

// Clear removes the persisted token.
// POST: Get reports absent; the backing file is gone
func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// IsPresent reports whether a token is set.
func (s *FileTokenStore) IsPresent() bool {
	_, ok := s.Get()
	return ok
}

// writeFileAtomic writes via a temp file and rename so a crash mid-write
// cannot leave a truncated token behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// MemTokenStore is an in-memory TokenStore for tests.
type MemTokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemTokenStore creates an empty in-memory token store.
func NewMemTokenStore() *MemTokenStore {
	return &MemTokenStore{}
}

// Get returns the current token and whether one is set.
func (s *MemTokenStore) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Set stores the token.
func (s *MemTokenStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Clear removes the token.
func (s *MemTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// IsPresent reports whether a token is set.
func (s *MemTokenStore) IsPresent() bool {
	_, ok := s.Get()
	return ok
}
