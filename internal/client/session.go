package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	apiclient "github.com/splax/notes/pkg/api/client"
)

// Session is the persisted sign-in state of the client.
type Session struct {
	Token      string         `json:"token"`
	User       apiclient.User `json:"user"`
	APIBaseURL string         `json:"api_base_url,omitempty"`
}

// SessionStore persists the session between runs.
type SessionStore interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

// FileStore keeps the session as JSON in a single file.
type FileStore struct {
	Path string
}

// DefaultSessionPath returns the session file location under the user config dir.
func DefaultSessionPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "notes", "session.json"), nil
}

// Load returns an empty session when the file does not exist.
func (f FileStore) Load() (Session, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, nil
		}
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	s.Token = strings.TrimSpace(s.Token)
	return s, nil
}

func (f FileStore) Save(s Session) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, data, 0o600)
}

func (f FileStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// MemoryStore keeps the session in process memory only.
type MemoryStore struct {
	mu      sync.Mutex
	session Session
}

func (m *MemoryStore) Load() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, nil
}

func (m *MemoryStore) Save(s Session) error {
	m.mu.Lock()
	m.session = s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	m.session = Session{}
	m.mu.Unlock()
	return nil
}
