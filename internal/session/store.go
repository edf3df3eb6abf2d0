package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// TokenStore is durable client-side custody of the session token.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileStore keeps the token in a small JSON file under the user's home or a
// caller-chosen path.
type FileStore struct {
	path string
}

type storedToken struct {
	Token string `json:"token"`
}

// NewFileStore builds a store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns the cached token, or "" when none is stored.
func (s *FileStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	var stored storedToken
	if err := json.Unmarshal(data, &stored); err != nil {
		return "", err
	}
	return stored.Token, nil
}

// Save persists the token, creating parent directories as needed.
func (s *FileStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(storedToken{Token: token})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Clear removes the cached token.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// MemoryStore is an in-process store for tests and short-lived tools.
type MemoryStore struct {
	token string
}

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (string, error) { return s.token, nil }

func (s *MemoryStore) Save(token string) error {
	s.token = token
	return nil
}

func (s *MemoryStore) Clear() error {
	s.token = ""
	return nil
}
