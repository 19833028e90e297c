package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// StorageKey is the single key the user is persisted under.
const StorageKey = "user"

// MemoryStore keeps the user in memory.
type MemoryStore struct {
	mu   sync.RWMutex
	user *User
}

// NewMemoryStore returns a store, optionally seeded with a user.
func NewMemoryStore(user ...User) *MemoryStore {
	s := &MemoryStore{}
	if len(user) > 0 {
		u := user[0]
		s.user = &u
	}
	return s
}

// CurrentUser implements Provider.
func (s *MemoryStore) CurrentUser() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Save implements Store.
func (s *MemoryStore) Save(u User) error {
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	return nil
}

// FileStore persists the user as JSON under the "user" key of a file,
// leaving any other keys of the document untouched.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by path. The file is created on the
// first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// CurrentUser implements Provider. Missing or unreadable files mean no user.
func (s *FileStore) CurrentUser() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return User{}, false
	}
	raw, ok := doc[StorageKey]
	if !ok || string(raw) == "null" {
		return User{}, false
	}
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return User{}, false
	}
	return user, true
}

// Save implements Store.
func (s *FileStore) Save(u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		doc = map[string]json.RawMessage{}
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("session: encode user: %w", err)
	}
	doc[StorageKey] = raw
	return s.write(doc)
}

// Clear implements Store.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		doc = map[string]json.RawMessage{}
	}
	delete(doc, StorageKey)
	return s.write(doc)
}

func (s *FileStore) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	doc := map[string]json.RawMessage{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("session: decode %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *FileStore) write(doc map[string]json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("session: create storage dir: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode storage: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("session: write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("session: replace storage: %w", err)
	}
	return nil
}
