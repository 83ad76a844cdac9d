package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Credentials is the durable form of the bearer credential plus enough
// identity to restore a session at startup.
type Credentials struct {
	AccessToken string    `json:"access_token"`
	UID         string    `json:"uid,omitempty"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

// IsExpired reports whether the stored credential is past its expiry.
func (c *Credentials) IsExpired() bool {
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}

// FileStore keeps credentials in a mode-0600 JSON file under the user config
// directory. An absent file means signed out, not an error.
type FileStore struct {
	path string
}

// NewFileStore creates a store at the given path; empty means the default
// ~/.config/bazaar/credentials.json.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		path = filepath.Join(configDir, "bazaar", "credentials.json")
	}
	return &FileStore{path: path}, nil
}

// Load returns the stored bearer token, or "" when none is stored.
func (f *FileStore) Load() (string, error) {
	creds, err := f.LoadCredentials()
	if err != nil || creds == nil {
		return "", err
	}
	return creds.AccessToken, nil
}

// LoadCredentials reads the full credential record; nil when signed out.
func (f *FileStore) LoadCredentials() (*Credentials, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return &creds, nil
}

// Save writes the bearer token, preserving any stored identity fields.
func (f *FileStore) Save(token string) error {
	creds, err := f.LoadCredentials()
	if err != nil || creds == nil {
		creds = &Credentials{}
	}
	creds.AccessToken = token
	return f.SaveCredentials(creds)
}

// SaveCredentials writes the full record with owner-only permissions.
func (f *FileStore) SaveCredentials(creds *Credentials) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Clear removes the credentials file. Clearing an absent file succeeds.
func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

// MemoryStore is an in-process token store for tests and per-request web use.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
