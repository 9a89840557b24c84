// Package credentials holds the session token that proves the user is
// authenticated. Presence of a token is the only signal of a logged-in
// session; it is never checked for expiry on the client.
package credentials

import (
	"fmt"
	"sync"

	"github.com/existflow/diary/internal/config"
)

// TokenKey is the fixed name the token is persisted under
const TokenKey = "authToken"

// Store is the process-wide holder of the current session token
type Store interface {
	// Token returns the current token and whether one is present.
	Token() (string, bool)
	// SetToken stores the token and persists it.
	SetToken(token string) error
	// ClearToken removes the token. Clearing an empty store is not an error.
	ClearToken() error
}

// Authenticated reports whether a token is present in s
func Authenticated(s Store) bool {
	_, ok := s.Token()
	return ok
}

// Memory is a non-persistent Store, used by tests and as a fallback
type Memory struct {
	mu    sync.RWMutex
	token string
}

// NewMemory returns an empty in-memory store
func NewMemory() *Memory {
	return &Memory{}
}

// Token returns the current token
func (m *Memory) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

// SetToken stores the token
func (m *Memory) SetToken(token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

// ClearToken removes the token
func (m *Memory) ClearToken() error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return nil
}

// Open returns the backend selected by cfg.CredentialStore
func Open(cfg *config.Config) (Store, error) {
	switch cfg.CredentialStore {
	case config.StoreSQLite:
		return OpenSQLite(cfg.DatabaseFile())
	case config.StoreFile, "":
		return OpenFile(cfg.TokenFile())
	default:
		return nil, fmt.Errorf("unknown credential store %q", cfg.CredentialStore)
	}
}

// Close releases resources held by s, if any
func Close(s Store) error {
	if c, ok := s.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
