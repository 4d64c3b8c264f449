// Package token persists the session token between runs.
package token

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileName is the token file inside the config directory.
const FileName = "token"

// Store holds the single session token.
type Store interface {
	Get() (string, bool)
	Set(token string) error
	Remove() error
	Exists() bool
}

// FileStore keeps the token in a 0600 file. A FileStore with an empty path
// has no storage medium: Get reports no token and writes are no-ops.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns ~/.malangee/token.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".malangee", FileName), nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" {
		return "", false
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	tok := strings.TrimSpace(string(data))
	return tok, tok != ""
}

// Set writes token, creating the parent directory with 0700. An empty token
// is treated as Remove.
func (s *FileStore) Set(token string) error {
	if token == "" {
		return s.Remove()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("token: create dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("token: save: %w", err)
	}
	return nil
}

func (s *FileStore) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("token: remove: %w", err)
	}
	return nil
}

func (s *FileStore) Exists() bool {
	_, ok := s.Get()
	return ok
}

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore returns a store seeded with token, which may be empty.
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: strings.TrimSpace(token)}
}

func (s *MemoryStore) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

func (s *MemoryStore) Set(token string) error {
	s.mu.Lock()
	s.token = strings.TrimSpace(token)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Remove() error {
	return s.Set("")
}

func (s *MemoryStore) Exists() bool {
	_, ok := s.Get()
	return ok
}

// Open picks the store for a run: a non-empty env token wins over the file,
// matching the usual env > file precedence.
func Open(envToken, path string) Store {
	if tok := strings.TrimSpace(envToken); tok != "" {
		return NewMemoryStore(tok)
	}
	return NewFileStore(path)
}
